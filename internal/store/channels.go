// internal/store/channels.go
package store

import (
	"context"
	"database/sql"
	"fmt"

	"notification-engine/internal/models"
)

// ChannelStore reads externally owned channel configuration records.
type ChannelStore struct {
	db *sql.DB
}

func NewChannelStore(db *sql.DB) *ChannelStore {
	return &ChannelStore{db: db}
}

func (s *ChannelStore) Channels(ctx context.Context) ([]models.ChannelConfig, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, active, priority, rate_limit_per_minute FROM channel_configs ORDER BY priority`)
	if err != nil {
		return nil, fmt.Errorf("query channel configs: %w", err)
	}
	defer rows.Close()

	var out []models.ChannelConfig
	for rows.Next() {
		var c models.ChannelConfig
		if err := rows.Scan(&c.Name, &c.Active, &c.Priority, &c.RateLimitPerMinute); err != nil {
			return nil, fmt.Errorf("scan channel config: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
