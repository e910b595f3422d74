// internal/channels/status.go
package channels

import (
	"context"
	"fmt"
	"sync/atomic"

	"notification-engine/internal/common/logger"
	"notification-engine/internal/models"
)

// ChannelStore is the persistence boundary for externally owned channel
// configuration records.
type ChannelStore interface {
	Channels(ctx context.Context) ([]models.ChannelConfig, error)
}

// StatusProvider caches channel configuration and answers active/rate-limit
// questions per send. The engine consults it, never mutates it; Reload
// publishes a fresh snapshot atomically.
type StatusProvider struct {
	store    ChannelStore
	log      logger.Logger
	snapshot atomic.Pointer[map[string]models.ChannelConfig]
}

func NewStatusProvider(store ChannelStore, log logger.Logger) *StatusProvider {
	p := &StatusProvider{
		store: store,
		log:   log.WithFields(map[string]interface{}{"component": "channel-status"}),
	}
	empty := map[string]models.ChannelConfig{}
	p.snapshot.Store(&empty)
	return p
}

// Reload rebuilds the snapshot from the store and swaps it in.
func (p *StatusProvider) Reload(ctx context.Context) error {
	configs, err := p.store.Channels(ctx)
	if err != nil {
		return fmt.Errorf("reload channel configs: %w", err)
	}

	fresh := make(map[string]models.ChannelConfig, len(configs))
	for _, c := range configs {
		fresh[c.Name] = c
	}
	p.snapshot.Store(&fresh)

	p.log.Info("channel configuration reloaded", map[string]interface{}{"channels": len(fresh)})
	return nil
}

// IsActive reports whether the channel is configured and active. A channel
// with no configuration record is treated as inactive.
func (p *StatusProvider) IsActive(channel string) bool {
	cfg, ok := (*p.snapshot.Load())[channel]
	return ok && cfg.Active
}

// RateLimit returns the channel's configured per-minute limit, 0 for
// unlimited or unknown.
func (p *StatusProvider) RateLimit(channel string) int {
	cfg, ok := (*p.snapshot.Load())[channel]
	if !ok {
		return 0
	}
	return cfg.RateLimitPerMinute
}

// ActiveCount returns how many channels are currently active.
func (p *StatusProvider) ActiveCount() int {
	count := 0
	for _, cfg := range *p.snapshot.Load() {
		if cfg.Active {
			count++
		}
	}
	return count
}
