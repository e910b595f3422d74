// internal/models/event.go
package models

import "time"

// EventType is a named domain occurrence that listeners can bind to.
// The name is globally unique and immutable once created, dot-namespaced
// like "order.created" or "appointment.scheduled".
type EventType struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Category      string                 `json:"category"`
	Description   string                 `json:"description"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	Active        bool                   `json:"active"`
	TriggerCount  int64                  `json:"triggerCount"`
	LastTriggered *time.Time             `json:"lastTriggered,omitempty"`
	Version       int                    `json:"version"`
	Source        string                 `json:"source,omitempty"`
	CreatedBy     string                 `json:"createdBy,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}

// EventDefinition is the seed shape used for bulk event registration.
type EventDefinition struct {
	Name        string                 `json:"name"`
	Category    string                 `json:"category"`
	Description string                 `json:"description"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
