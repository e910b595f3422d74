// internal/channels/router.go
package channels

import (
	"context"

	stderrors "notification-engine/internal/common/errors"
	"notification-engine/internal/common/logger"
	"notification-engine/internal/models"
)

// Router fans messages out to the sink registered for their channel.
type Router struct {
	sinks map[string]Sink
	log   logger.Logger
}

func NewRouter(log logger.Logger) *Router {
	return &Router{
		sinks: map[string]Sink{},
		log:   log.WithFields(map[string]interface{}{"component": "channel-router"}),
	}
}

func (r *Router) Register(s Sink) {
	r.sinks[s.Name()] = s
	r.log.Info("channel sink registered", map[string]interface{}{"channel": s.Name()})
}

// Send routes msg to its channel's sink. An unknown channel is a failed send,
// not a panic: the engine treats it like any other delivery failure.
func (r *Router) Send(ctx context.Context, msg *models.OutboundMessage) (*models.SendResult, error) {
	sink, ok := r.sinks[msg.Channel]
	if !ok {
		err := stderrors.NewChannelUnknownError(msg.Channel)
		return &models.SendResult{Success: false, Error: err.Error()}, err
	}
	return sink.Send(ctx, msg)
}

// Channels returns the registered channel names.
func (r *Router) Channels() []string {
	out := make([]string, 0, len(r.sinks))
	for name := range r.sinks {
		out = append(out, name)
	}
	return out
}

// Healthy reports whether at least one sink is registered.
func (r *Router) Healthy(_ context.Context) bool {
	return len(r.sinks) > 0
}
