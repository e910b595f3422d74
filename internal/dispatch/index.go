// internal/dispatch/index.go
package dispatch

import (
	"context"
	"sync/atomic"
	"time"

	stderrors "notification-engine/internal/common/errors"
	"notification-engine/internal/common/logger"
	"notification-engine/internal/models"
)

// ListenerStore is the persistence boundary the index loads from.
// ActiveListeners must return only active listeners whose owning event is
// also active.
type ListenerStore interface {
	ActiveListeners(ctx context.Context) ([]models.Listener, error)
	IncrementExecution(ctx context.Context, id string, at time.Time) error
}

// ListenerIndex holds the per-event listener bindings in memory. Reload is
// explicit, never automatic: a fresh map is built off to the side and
// published with a single pointer swap, so a trigger running concurrently
// with a reload observes either the old or the new complete map.
type ListenerIndex struct {
	store    ListenerStore
	log      logger.Logger
	snapshot atomic.Pointer[map[string][]models.Listener]
}

func NewListenerIndex(store ListenerStore, log logger.Logger) *ListenerIndex {
	idx := &ListenerIndex{
		store: store,
		log:   log.WithFields(map[string]interface{}{"component": "listener-index"}),
	}
	empty := map[string][]models.Listener{}
	idx.snapshot.Store(&empty)
	return idx
}

// Reload rebuilds the index from the store.
func (i *ListenerIndex) Reload(ctx context.Context) error {
	listeners, err := i.store.ActiveListeners(ctx)
	if err != nil {
		return stderrors.NewListenerLoadError(err)
	}

	fresh := make(map[string][]models.Listener)
	for _, l := range listeners {
		fresh[l.EventName] = append(fresh[l.EventName], l)
	}
	i.snapshot.Store(&fresh)

	i.log.Info("listener index reloaded", map[string]interface{}{
		"events":    len(fresh),
		"listeners": len(listeners),
	})
	return nil
}

// ListenersFor returns a copy of the listeners bound to eventName, safe for
// the caller to sort.
func (i *ListenerIndex) ListenersFor(eventName string) []models.Listener {
	bound := (*i.snapshot.Load())[eventName]
	if len(bound) == 0 {
		return nil
	}
	out := make([]models.Listener, len(bound))
	copy(out, bound)
	return out
}

// Size returns the total number of indexed listeners.
func (i *ListenerIndex) Size() int {
	total := 0
	for _, bound := range *i.snapshot.Load() {
		total += len(bound)
	}
	return total
}
