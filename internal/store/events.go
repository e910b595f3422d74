// internal/store/events.go

// Package store implements the engine's persistence boundaries on PostgreSQL.
// All operations are find / find-or-create / increment / soft-delete style;
// schema migrations are owned elsewhere.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"notification-engine/internal/models"
)

// EventStore persists event types.
type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

const eventColumns = `id, name, category, description, metadata, active, trigger_count, last_triggered, version, source, created_by, created_at, updated_at`

// FindByName returns (nil, nil) when no event with the given name exists.
func (s *EventStore) FindByName(ctx context.Context, name string) (*models.EventType, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM event_types WHERE name = $1`, name)

	ev, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find event by name: %w", err)
	}
	return ev, nil
}

func (s *EventStore) Insert(ctx context.Context, ev *models.EventType) error {
	metadata, err := json.Marshal(ev.Metadata)
	if err != nil {
		return fmt.Errorf("marshal event metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO event_types (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		ev.ID, ev.Name, ev.Category, ev.Description, metadata, ev.Active,
		ev.TriggerCount, ev.LastTriggered, ev.Version, ev.Source, ev.CreatedBy,
		ev.CreatedAt, ev.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *EventStore) UpdateMetadata(ctx context.Context, name string, metadata map[string]interface{}, version int) error {
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal event metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE event_types SET metadata = $1, version = $2, updated_at = $3 WHERE name = $4`,
		encoded, version, time.Now().UTC(), name,
	)
	if err != nil {
		return fmt.Errorf("update event metadata: %w", err)
	}
	return nil
}

func (s *EventStore) IncrementTrigger(ctx context.Context, name string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE event_types SET trigger_count = trigger_count + 1, last_triggered = $1, updated_at = $1 WHERE name = $2`,
		at, name,
	)
	if err != nil {
		return fmt.Errorf("increment trigger count: %w", err)
	}
	return nil
}

func (s *EventStore) ActiveEvents(ctx context.Context) ([]models.EventType, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM event_types WHERE active = true ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query active events: %w", err)
	}
	defer rows.Close()

	var out []models.EventType
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, *ev)
	}
	return out, rows.Err()
}

func (s *EventStore) CountActive(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_types WHERE active = true`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active events: %w", err)
	}
	return count, nil
}

func (s *EventStore) CountActiveListeners(ctx context.Context, eventName string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM listeners WHERE event_name = $1 AND active = true`, eventName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active listeners: %w", err)
	}
	return count, nil
}

// Deactivate soft-deletes an event. The listener guard lives in the catalog.
func (s *EventStore) Deactivate(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE event_types SET active = false, updated_at = $1 WHERE name = $2`,
		time.Now().UTC(), name,
	)
	if err != nil {
		return fmt.Errorf("deactivate event: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*models.EventType, error) {
	var ev models.EventType
	var metadata []byte
	var lastTriggered sql.NullTime

	err := row.Scan(
		&ev.ID, &ev.Name, &ev.Category, &ev.Description, &metadata, &ev.Active,
		&ev.TriggerCount, &lastTriggered, &ev.Version, &ev.Source, &ev.CreatedBy,
		&ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &ev.Metadata); err != nil {
			ev.Metadata = map[string]interface{}{}
		}
	}
	if lastTriggered.Valid {
		ev.LastTriggered = &lastTriggered.Time
	}
	return &ev, nil
}
