// internal/models/template.go
package models

import "time"

// ChannelContent is one channel's content block. Only the fields that make
// sense for the channel are populated: email uses subject/body/html, SMS and
// WhatsApp use message or text, push uses title/body, in-app uses title/message.
// The same shape carries both the raw template text and the rendered output.
type ChannelContent struct {
	Message string `json:"message,omitempty"`
	Subject string `json:"subject,omitempty"`
	Title   string `json:"title,omitempty"`
	Body    string `json:"body,omitempty"`
	HTML    string `json:"html,omitempty"`
	Text    string `json:"text,omitempty"`
}

// Clone returns a shallow copy safe for per-render mutation.
func (c *ChannelContent) Clone() *ChannelContent {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Template holds per-channel content blocks with {{dotted.path}} placeholders
// plus the declared placeholder catalog used by authoring-time validation.
type Template struct {
	ID        string                     `json:"id"`
	Name      string                     `json:"name"` // unique, matches the notification type name
	Category  string                     `json:"category"`
	Channels  map[string]*ChannelContent `json:"channels"`
	Variables []string                   `json:"variables,omitempty"`
	Active    bool                       `json:"active"`
	Version   int                        `json:"version"`
	CreatedAt time.Time                  `json:"createdAt"`
	UpdatedAt time.Time                  `json:"updatedAt"`
}

// TemplateVersion is an immutable snapshot of a template's content. History is
// append-only: creating a version marks the prior one non-current, restoring a
// version creates a new version copying its content.
type TemplateVersion struct {
	ID         string                     `json:"id"`
	TemplateID string                     `json:"templateId"`
	Version    int                        `json:"version"`
	Channels   map[string]*ChannelContent `json:"channels"`
	Variables  []string                   `json:"variables,omitempty"`
	Current    bool                       `json:"current"`
	CreatedBy  string                     `json:"createdBy,omitempty"`
	CreatedAt  time.Time                  `json:"createdAt"`
}
