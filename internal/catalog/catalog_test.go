// internal/catalog/catalog_test.go
package catalog

import (
	"context"
	"testing"
	"time"

	"notification-engine/internal/common/logger"
	"notification-engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEventStore is an in-memory EventStore.
type fakeEventStore struct {
	events map[string]*models.EventType

	inserts         int
	metadataUpdates int
	listenerCounts  map[string]int
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{
		events:         map[string]*models.EventType{},
		listenerCounts: map[string]int{},
	}
}

func (f *fakeEventStore) FindByName(_ context.Context, name string) (*models.EventType, error) {
	ev, ok := f.events[name]
	if !ok {
		return nil, nil
	}
	cp := *ev
	return &cp, nil
}

func (f *fakeEventStore) Insert(_ context.Context, ev *models.EventType) error {
	f.inserts++
	cp := *ev
	f.events[ev.Name] = &cp
	return nil
}

func (f *fakeEventStore) UpdateMetadata(_ context.Context, name string, metadata map[string]interface{}, version int) error {
	f.metadataUpdates++
	ev := f.events[name]
	ev.Metadata = metadata
	ev.Version = version
	return nil
}

func (f *fakeEventStore) IncrementTrigger(_ context.Context, name string, at time.Time) error {
	ev := f.events[name]
	ev.TriggerCount++
	ev.LastTriggered = &at
	return nil
}

func (f *fakeEventStore) ActiveEvents(_ context.Context) ([]models.EventType, error) {
	var out []models.EventType
	for _, ev := range f.events {
		if ev.Active {
			out = append(out, *ev)
		}
	}
	return out, nil
}

func (f *fakeEventStore) CountActive(_ context.Context) (int, error) {
	count := 0
	for _, ev := range f.events {
		if ev.Active {
			count++
		}
	}
	return count, nil
}

func (f *fakeEventStore) CountActiveListeners(_ context.Context, eventName string) (int, error) {
	return f.listenerCounts[eventName], nil
}

func (f *fakeEventStore) Deactivate(_ context.Context, name string) error {
	f.events[name].Active = false
	return nil
}

func newTestCatalog(t *testing.T) (*Catalog, *fakeEventStore) {
	store := newFakeEventStore()
	return New(store, logger.NewTestLogger(t)), store
}

func TestRegisterEventIdempotent(t *testing.T) {
	cat, store := newTestCatalog(t)
	ctx := context.Background()
	metadata := map[string]interface{}{"priority": "high"}

	first, err := cat.RegisterEvent(ctx, "order.created", "Order created", "order", metadata, "api", "tester")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)
	assert.Equal(t, metadata, first.Metadata)

	second, err := cat.RegisterEvent(ctx, "order.created", "Order created", "order", metadata, "api", "tester")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, second.Version, "identical re-registration must not bump the version")
	assert.Equal(t, 1, store.inserts)
	assert.Equal(t, 0, store.metadataUpdates)
}

func TestRegisterEventMergesNewMetadata(t *testing.T) {
	cat, store := newTestCatalog(t)
	ctx := context.Background()

	_, err := cat.RegisterEvent(ctx, "order.created", "Order created", "order",
		map[string]interface{}{"priority": "high"}, "api", "tester")
	require.NoError(t, err)

	ev, err := cat.RegisterEvent(ctx, "order.created", "Order created", "order",
		map[string]interface{}{"owner": "sales"}, "api", "tester")
	require.NoError(t, err)

	assert.Equal(t, 2, ev.Version)
	assert.Equal(t, "high", ev.Metadata["priority"])
	assert.Equal(t, "sales", ev.Metadata["owner"])
	assert.Equal(t, 1, store.metadataUpdates)
}

func TestRegisterEventToleratesGarbageMetadata(t *testing.T) {
	cat, _ := newTestCatalog(t)

	ev, err := cat.RegisterEvent(context.Background(), "order.created", "Order created", "order",
		"}{ definitely not a document", "api", "tester")

	require.NoError(t, err)
	assert.NotNil(t, ev.Metadata)
	assert.Empty(t, ev.Metadata)
}

func TestEnsureEventAutoRegisters(t *testing.T) {
	cat, _ := newTestCatalog(t)
	ctx := context.Background()

	ev, created, err := cat.EnsureEvent(ctx, "appointment.reminder_due")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "appointment", ev.Category)
	assert.Equal(t, "Appointment reminder due", ev.Description)
	assert.Equal(t, "auto", ev.Source)

	_, createdAgain, err := cat.EnsureEvent(ctx, "appointment.reminder_due")
	require.NoError(t, err)
	assert.False(t, createdAgain)
	assert.Equal(t, 1, cat.Size())
}

func TestEnsureEventDefaultsCategory(t *testing.T) {
	cat, _ := newTestCatalog(t)

	ev, _, err := cat.EnsureEvent(context.Background(), "heartbeat")
	require.NoError(t, err)
	assert.Equal(t, "general", ev.Category)
}

func TestReloadSwapsSnapshot(t *testing.T) {
	cat, store := newTestCatalog(t)
	ctx := context.Background()

	store.events["order.created"] = &models.EventType{Name: "order.created", Active: true}
	store.events["order.cancelled"] = &models.EventType{Name: "order.cancelled", Active: true}
	store.events["legacy.event"] = &models.EventType{Name: "legacy.event", Active: false}

	require.NoError(t, cat.Reload(ctx))

	assert.Equal(t, 2, cat.Size())
	assert.NotNil(t, cat.Get("order.created"))
	assert.Nil(t, cat.Get("legacy.event"))
}

func TestRecordTrigger(t *testing.T) {
	cat, store := newTestCatalog(t)
	ctx := context.Background()

	_, err := cat.RegisterEvent(ctx, "order.created", "", "order", nil, "api", "tester")
	require.NoError(t, err)

	require.NoError(t, cat.RecordTrigger(ctx, "order.created"))

	assert.Equal(t, int64(1), store.events["order.created"].TriggerCount)
	assert.Equal(t, int64(1), cat.Get("order.created").TriggerCount)
	assert.NotNil(t, cat.Get("order.created").LastTriggered)
}

func TestDeactivateRefusesWithBoundListeners(t *testing.T) {
	cat, store := newTestCatalog(t)
	ctx := context.Background()

	_, err := cat.RegisterEvent(ctx, "order.created", "", "order", nil, "api", "tester")
	require.NoError(t, err)
	store.listenerCounts["order.created"] = 2

	err = cat.Deactivate(ctx, "order.created")
	require.Error(t, err)
	assert.True(t, store.events["order.created"].Active)

	store.listenerCounts["order.created"] = 0
	require.NoError(t, cat.Deactivate(ctx, "order.created"))
	assert.False(t, store.events["order.created"].Active)
	assert.Nil(t, cat.Get("order.created"))
}

func TestSeedEvents(t *testing.T) {
	cat, _ := newTestCatalog(t)
	ctx := context.Background()

	defs := []models.EventDefinition{
		{Name: "order.created", Category: "order", Description: "Order created"},
		{Name: "order.cancelled", Category: "order", Description: "Order cancelled"},
	}

	created, err := cat.SeedEvents(ctx, defs)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = cat.SeedEvents(ctx, defs)
	require.NoError(t, err)
	assert.Equal(t, 0, created, "seeding is idempotent")
}
