// internal/channels/sink.go

// Package channels holds the outbound sink contract, one adapter per delivery
// medium, and the router that picks an adapter by channel name. Adapters own
// their transport details; the dispatch engine only sees Sink.
package channels

import (
	"context"

	"notification-engine/internal/models"
)

// Sink is the single outbound contract the orchestrator calls per rendered
// channel message.
type Sink interface {
	Name() string
	Send(ctx context.Context, msg *models.OutboundMessage) (*models.SendResult, error)
}

// textOf picks the best plain-text rendering from a content block, in the
// order channels without rich formatting expect it.
func textOf(c *models.ChannelContent) string {
	if c == nil {
		return ""
	}
	switch {
	case c.Message != "":
		return c.Message
	case c.Text != "":
		return c.Text
	case c.Body != "":
		return c.Body
	default:
		return c.Title
	}
}
