// internal/models/channel.go
package models

// Channel names recognized by the engine. Adapters for each live in
// internal/channels; the set of configured channels is owned externally.
const (
	ChannelEmail    = "email"
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"
	ChannelPush     = "push"
	ChannelInApp    = "in_app"
)

// ChannelConfig is external collaborator state: the engine consults it per
// send but never owns or mutates it.
type ChannelConfig struct {
	Name               string `json:"name"`
	Active             bool   `json:"active"`
	Priority           int    `json:"priority"`
	RateLimitPerMinute int    `json:"rateLimitPerMinute"`
}
