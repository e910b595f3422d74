// internal/catalog/catalog.go

// Package catalog maintains the registry of named event types: idempotent
// registration with safe metadata merging, tolerant auto-registration on first
// trigger, and an in-memory snapshot reloaded atomically from the backing store.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	stderrors "notification-engine/internal/common/errors"
	"notification-engine/internal/common/logger"
	"notification-engine/internal/models"

	"github.com/google/uuid"
)

// EventStore is the persistence boundary for event types. FindByName returns
// (nil, nil) when no event with the given name exists.
type EventStore interface {
	FindByName(ctx context.Context, name string) (*models.EventType, error)
	Insert(ctx context.Context, event *models.EventType) error
	UpdateMetadata(ctx context.Context, name string, metadata map[string]interface{}, version int) error
	IncrementTrigger(ctx context.Context, name string, at time.Time) error
	ActiveEvents(ctx context.Context) ([]models.EventType, error)
	CountActive(ctx context.Context) (int, error)
	CountActiveListeners(ctx context.Context, eventName string) (int, error)
	Deactivate(ctx context.Context, name string) error
}

// Catalog is the event type registry. Reads go against an in-memory snapshot;
// writes go through the store and update the snapshot in place.
type Catalog struct {
	store EventStore
	log   logger.Logger

	mu     sync.RWMutex
	events map[string]*models.EventType
}

func New(store EventStore, log logger.Logger) *Catalog {
	return &Catalog{
		store:  store,
		log:    log.WithFields(map[string]interface{}{"component": "event-catalog"}),
		events: map[string]*models.EventType{},
	}
}

// Reload resyncs the snapshot from the store. The fresh map is built off to
// the side and published with a single assignment so concurrent readers see
// either the old or the new complete snapshot.
func (c *Catalog) Reload(ctx context.Context) error {
	active, err := c.store.ActiveEvents(ctx)
	if err != nil {
		return stderrors.NewEventStoreError("reload", err)
	}

	fresh := make(map[string]*models.EventType, len(active))
	for i := range active {
		ev := active[i]
		fresh[ev.Name] = &ev
	}

	c.mu.Lock()
	c.events = fresh
	c.mu.Unlock()

	c.log.Info("event catalog reloaded", map[string]interface{}{"events": len(fresh)})
	return nil
}

// Size returns the number of events in the current snapshot.
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.events)
}

// Get returns the snapshot entry for name, or nil.
func (c *Catalog) Get(name string) *models.EventType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.events[name]
}

// RegisterEvent registers an event type, or safely merges metadata into an
// existing one. Malformed metadata never causes an error: it is sanitized,
// and a merge that produces an invalid document is replaced by a fixed
// fallback with a logged warning.
func (c *Catalog) RegisterEvent(ctx context.Context, name, description, category string, metadata interface{}, source, createdBy string) (*models.EventType, error) {
	ev, _, err := c.FindOrCreateEvent(ctx, name, description, category, metadata, source, createdBy)
	return ev, err
}

// FindOrCreateEvent is RegisterEvent exposing the creation flag. Calling it
// twice with identical arguments leaves version and metadata unchanged on the
// second call and returns created=false.
func (c *Catalog) FindOrCreateEvent(ctx context.Context, name, description, category string, metadata interface{}, source, createdBy string) (*models.EventType, bool, error) {
	existing, err := c.store.FindByName(ctx, name)
	if err != nil {
		return nil, false, fmt.Errorf("find event %q: %w", name, err)
	}

	if existing != nil {
		merged, changed, ok := SafeMerge(existing.Metadata, metadata)
		if !ok {
			c.log.Warn("metadata merge produced invalid document, substituting fallback", map[string]interface{}{
				"event": name,
			})
		}
		if changed {
			existing.Metadata = merged
			existing.Version++
			existing.UpdatedAt = time.Now().UTC()
			if err := c.store.UpdateMetadata(ctx, name, merged, existing.Version); err != nil {
				return nil, false, fmt.Errorf("update event metadata %q: %w", name, err)
			}
		}
		c.put(existing)
		return existing, false, nil
	}

	now := time.Now().UTC()
	sanitized, _, ok := SafeMerge(nil, metadata)
	if !ok {
		c.log.Warn("registration metadata invalid, substituting fallback", map[string]interface{}{
			"event": name,
		})
	}
	ev := &models.EventType{
		ID:          uuid.New().String(),
		Name:        name,
		Category:    category,
		Description: description,
		Metadata:    sanitized,
		Active:      true,
		Version:     1,
		Source:      source,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.store.Insert(ctx, ev); err != nil {
		return nil, false, fmt.Errorf("insert event %q: %w", name, err)
	}

	c.put(ev)
	c.log.Info("event registered", map[string]interface{}{
		"event":    name,
		"category": category,
	})
	return ev, true, nil
}

// EnsureEvent resolves name to an event type, auto-registering unknown names.
// Callers are never penalized for referencing an event that hasn't been
// pre-declared.
func (c *Catalog) EnsureEvent(ctx context.Context, name string) (*models.EventType, bool, error) {
	if ev := c.Get(name); ev != nil {
		return ev, false, nil
	}
	category := inferCategory(name)
	description := synthesizeDescription(name)
	return c.FindOrCreateEvent(ctx, name, description, category, nil, "auto", "system")
}

// RecordTrigger bumps the trigger counter and timestamp for name, in the
// store and in the snapshot.
func (c *Catalog) RecordTrigger(ctx context.Context, name string) error {
	now := time.Now().UTC()
	if err := c.store.IncrementTrigger(ctx, name, now); err != nil {
		return fmt.Errorf("increment trigger %q: %w", name, err)
	}

	c.mu.Lock()
	if ev, ok := c.events[name]; ok {
		ev.TriggerCount++
		ev.LastTriggered = &now
	}
	c.mu.Unlock()
	return nil
}

// Deactivate soft-deletes an event, refusing while active listeners remain
// bound to it.
func (c *Catalog) Deactivate(ctx context.Context, name string) error {
	count, err := c.store.CountActiveListeners(ctx, name)
	if err != nil {
		return fmt.Errorf("count listeners for %q: %w", name, err)
	}
	if count > 0 {
		return stderrors.NewEventHasListenersError(name, count)
	}
	if err := c.store.Deactivate(ctx, name); err != nil {
		return fmt.Errorf("deactivate event %q: %w", name, err)
	}

	c.mu.Lock()
	delete(c.events, name)
	c.mu.Unlock()
	return nil
}

// SeedEvents bulk-registers event definitions, returning how many were newly
// created. Existing events get the usual metadata merge.
func (c *Catalog) SeedEvents(ctx context.Context, defs []models.EventDefinition) (int, error) {
	created := 0
	for _, def := range defs {
		_, wasCreated, err := c.FindOrCreateEvent(ctx, def.Name, def.Description, def.Category, def.Metadata, "seed", "system")
		if err != nil {
			return created, err
		}
		if wasCreated {
			created++
		}
	}
	return created, nil
}

// Healthy reports whether the catalog has at least one active event reachable
// through the store.
func (c *Catalog) Healthy(ctx context.Context) bool {
	count, err := c.store.CountActive(ctx)
	return err == nil && count > 0
}

func (c *Catalog) put(ev *models.EventType) {
	if !ev.Active {
		return
	}
	c.mu.Lock()
	c.events[ev.Name] = ev
	c.mu.Unlock()
}

// inferCategory takes the leading dot-segment: "order.created" -> "order".
func inferCategory(name string) string {
	if i := strings.Index(name, "."); i > 0 {
		return name[:i]
	}
	return "general"
}

// synthesizeDescription builds a readable description from the segments after
// the category: "appointment.reminder_due" -> "Appointment reminder due".
func synthesizeDescription(name string) string {
	parts := strings.Split(name, ".")
	words := parts
	if len(parts) > 1 {
		words = parts[1:]
	}
	text := strings.Join(words, " ")
	text = strings.ReplaceAll(text, "_", " ")
	if text == "" {
		return name
	}
	category := inferCategory(name)
	return strings.ToUpper(category[:1]) + category[1:] + " " + text
}
