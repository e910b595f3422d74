// internal/models/message.go
package models

// OutboundMessage is what the orchestrator hands to a channel sink: one
// rendered message for one recipient over one channel.
type OutboundMessage struct {
	ID        string                 `json:"id"`
	Channel   string                 `json:"channel"`
	Recipient string                 `json:"recipient"`
	Content   *ChannelContent        `json:"content"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// SendResult is the sink contract's outcome shape.
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Delivery statuses recorded per (listener, channel) send attempt.
const (
	DeliverySuccessful = "successful"
	DeliveryFailed     = "failed"
	DeliverySkipped    = "skipped"
)
