// internal/models/listener.go
package models

import "time"

// Listener binds one event to one notification type. Multiple listeners may
// target the same (event, notification type) pair for different condition
// branches; consolidation at dispatch time guarantees at most one of them
// fires per trigger.
type Listener struct {
	ID               string                 `json:"id"`
	EventName        string                 `json:"eventName"`
	NotificationType string                 `json:"notificationType"`
	Conditions       map[string]interface{} `json:"conditions,omitempty"` // empty = unconditional
	Priority         int                    `json:"priority"`             // lower fires first
	DelaySeconds     int                    `json:"delaySeconds"`
	Channels         []string               `json:"channels,omitempty"` // nil = all channels of the template
	Active           bool                   `json:"active"`
	ExecutionCount   int64                  `json:"executionCount"`
	LastExecuted     *time.Time             `json:"lastExecuted,omitempty"`
}

// NotificationType is a logical outbound message category, associated 1:1
// with a Template by name convention.
type NotificationType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`
}
