// internal/store/listeners.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"notification-engine/internal/models"

	"github.com/lib/pq"
)

// ListenerStore persists listener bindings.
type ListenerStore struct {
	db *sql.DB
}

func NewListenerStore(db *sql.DB) *ListenerStore {
	return &ListenerStore{db: db}
}

// ActiveListeners returns every active listener whose owning event is also
// active, the exact population the listener index serves.
func (s *ListenerStore) ActiveListeners(ctx context.Context) ([]models.Listener, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT l.id, l.event_name, l.notification_type, l.conditions, l.priority,
		        l.delay_seconds, l.channels, l.active, l.execution_count, l.last_executed
		 FROM listeners l
		 JOIN event_types e ON e.name = l.event_name
		 WHERE l.active = true AND e.active = true
		 ORDER BY l.event_name, l.priority`)
	if err != nil {
		return nil, fmt.Errorf("query active listeners: %w", err)
	}
	defer rows.Close()

	var out []models.Listener
	for rows.Next() {
		var l models.Listener
		var conditions []byte
		var channels pq.StringArray
		var lastExecuted sql.NullTime

		err := rows.Scan(
			&l.ID, &l.EventName, &l.NotificationType, &conditions, &l.Priority,
			&l.DelaySeconds, &channels, &l.Active, &l.ExecutionCount, &lastExecuted,
		)
		if err != nil {
			return nil, fmt.Errorf("scan listener: %w", err)
		}

		if len(conditions) > 0 {
			if err := json.Unmarshal(conditions, &l.Conditions); err != nil {
				l.Conditions = map[string]interface{}{}
			}
		}
		if len(channels) > 0 {
			l.Channels = []string(channels)
		}
		if lastExecuted.Valid {
			l.LastExecuted = &lastExecuted.Time
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// IncrementExecution bumps a listener's execution counter and timestamp.
func (s *ListenerStore) IncrementExecution(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE listeners SET execution_count = execution_count + 1, last_executed = $1 WHERE id = $2`,
		at, id,
	)
	if err != nil {
		return fmt.Errorf("increment listener execution: %w", err)
	}
	return nil
}
