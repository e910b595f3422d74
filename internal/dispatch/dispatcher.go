// internal/dispatch/dispatcher.go

// Package dispatch is the delivery orchestrator: it consumes the listener
// index, condition evaluator, and template renderer, consolidates listeners
// per trigger, fans rendered content out to channel sinks, and tracks
// statistics. One failing listener or send never aborts its siblings.
package dispatch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"notification-engine/internal/catalog"
	stderrors "notification-engine/internal/common/errors"
	"notification-engine/internal/common/logger"
	"notification-engine/internal/common/metrics"
	"notification-engine/internal/conditions"
	"notification-engine/internal/deliverylog"
	"notification-engine/internal/models"
	"notification-engine/internal/template"

	"github.com/google/uuid"
)

// TemplateStore is the persistence boundary for template resolution.
// FindByName returns (nil, nil) when no active template exists.
type TemplateStore interface {
	FindByName(ctx context.Context, name string) (*models.Template, error)
	CountActive(ctx context.Context) (int, error)
}

// ChannelStatus is the external collaborator consulted per send.
type ChannelStatus interface {
	IsActive(channel string) bool
	ActiveCount() int
}

// NotificationSink is the outbound boundary, satisfied by channels.Router.
type NotificationSink interface {
	Send(ctx context.Context, msg *models.OutboundMessage) (*models.SendResult, error)
	Healthy(ctx context.Context) bool
}

// Recorder receives per-send outcomes for the searchable delivery log.
type Recorder interface {
	Record(ctx context.Context, entry *deliverylog.Entry)
}

// DeliveryDetail is one (listener, channel) outcome within a ProcessResult.
type DeliveryDetail struct {
	ListenerID       string `json:"listenerId"`
	NotificationType string `json:"notificationType"`
	Channel          string `json:"channel,omitempty"`
	Status           string `json:"status"`
	MessageID        string `json:"messageId,omitempty"`
	Error            string `json:"error,omitempty"`
}

// ProcessResult is the outcome of one event dispatch. Partial success is a
// first-class outcome; ProcessEvent never fails because a send did.
type ProcessResult struct {
	Event              string           `json:"event"`
	ProcessedListeners int              `json:"processedListeners"`
	SentCount          int              `json:"sentCount"`
	Successful         int              `json:"successful"`
	Failed             int              `json:"failed"`
	Skipped            int              `json:"skipped"`
	Details            []DeliveryDetail `json:"details,omitempty"`
}

// EngineStats is the running-counter snapshot returned by GetStats.
type EngineStats struct {
	TotalNotifications   int64      `json:"totalNotifications"`
	SuccessfulDeliveries int64      `json:"successfulDeliveries"`
	FailedDeliveries     int64      `json:"failedDeliveries"`
	SkippedChannels      int64      `json:"skippedChannels"`
	EventsProcessed      int64      `json:"eventsProcessed"`
	LastProcessed        *time.Time `json:"lastProcessed,omitempty"`
	SuccessRate          float64    `json:"successRate"`
	TemplateCacheSize    int        `json:"templateCacheSize"`
	ListenerIndexSize    int        `json:"listenerIndexSize"`
}

// SystemHealth is the result of TestSystem: four independent subsystem checks
// ANDed into one flag.
type SystemHealth struct {
	EventCatalog  bool `json:"eventCatalog"`
	TemplateStore bool `json:"templateStore"`
	Channels      bool `json:"channels"`
	Sink          bool `json:"sink"`
	Healthy       bool `json:"healthy"`
}

type Dispatcher struct {
	catalog   *catalog.Catalog
	index     *ListenerIndex
	listeners ListenerStore
	evaluator *conditions.Evaluator
	templates TemplateStore
	sink      NotificationSink
	status    ChannelStatus
	recorder  Recorder
	log       logger.Logger

	maxDelay time.Duration

	statsMu sync.Mutex
	stats   EngineStats

	cacheMu sync.RWMutex
	cache   map[string]*models.Template
}

func NewDispatcher(
	cat *catalog.Catalog,
	index *ListenerIndex,
	listeners ListenerStore,
	evaluator *conditions.Evaluator,
	templates TemplateStore,
	sink NotificationSink,
	status ChannelStatus,
	recorder Recorder,
	maxDelay time.Duration,
	log logger.Logger,
) *Dispatcher {
	return &Dispatcher{
		catalog:   cat,
		index:     index,
		listeners: listeners,
		evaluator: evaluator,
		templates: templates,
		sink:      sink,
		status:    status,
		recorder:  recorder,
		maxDelay:  maxDelay,
		log:       log.WithFields(map[string]interface{}{"component": "dispatcher"}),
		cache:     map[string]*models.Template{},
	}
}

// TriggerEvent is the primary inbound boundary: it resolves the event
// (auto-registering unknown names), bumps its trigger counters, and runs the
// dispatch pipeline. It returns false only when the catalog itself failed;
// delivery failures are reported through statistics, not here.
func (d *Dispatcher) TriggerEvent(ctx context.Context, name string, data, evCtx map[string]interface{}) bool {
	ev, created, err := d.catalog.EnsureEvent(ctx, name)
	if err != nil {
		d.log.Error("event resolution failed", map[string]interface{}{
			"event": name,
			"error": err,
		})
		return false
	}
	if created {
		d.log.Info("event auto-registered on first trigger", map[string]interface{}{
			"event":    name,
			"category": ev.Category,
		})
	}

	if err := d.catalog.RecordTrigger(ctx, name); err != nil {
		d.log.Error("trigger count update failed", map[string]interface{}{
			"event": name,
			"error": err,
		})
		return false
	}

	metrics.EventsTriggered.WithLabelValues(ev.Category).Inc()

	start := time.Now()
	d.ProcessEvent(ctx, name, data, evCtx)
	metrics.DispatchDuration.WithLabelValues(ev.Category).Observe(time.Since(start).Seconds())

	return true
}

// ProcessEvent runs the full dispatch pipeline for one event occurrence.
// Zero bound listeners is a success with zero counts, not an error.
func (d *Dispatcher) ProcessEvent(ctx context.Context, eventName string, data, evCtx map[string]interface{}) *ProcessResult {
	result := &ProcessResult{Event: eventName}

	bound := d.index.ListenersFor(eventName)
	if len(bound) == 0 {
		d.log.Info("no listeners bound to event", map[string]interface{}{"event": eventName})
		d.finishEvent(result)
		return result
	}

	sort.SliceStable(bound, func(a, b int) bool {
		return bound[a].Priority < bound[b].Priority
	})

	// Consolidate: in priority order, at most one listener per notification
	// type is accepted. A listener rejected by its own conditions does not
	// block a lower-priority listener for the same type.
	accepted := make([]models.Listener, 0, len(bound))
	taken := map[string]bool{}
	for _, l := range bound {
		metrics.ListenersEvaluated.Inc()
		if taken[l.NotificationType] {
			continue
		}
		if !d.evaluator.Evaluate(ctx, l.Conditions, data, evCtx) {
			continue
		}
		taken[l.NotificationType] = true
		accepted = append(accepted, l)
	}

	for _, l := range accepted {
		d.processListener(ctx, &l, eventName, data, evCtx, result)
	}
	result.ProcessedListeners = len(accepted)

	d.finishEvent(result)
	return result
}

// processListener renders and dispatches one accepted listener across its
// target channels. Failures are recorded in the result and never propagate.
func (d *Dispatcher) processListener(ctx context.Context, l *models.Listener, eventName string, data, evCtx map[string]interface{}, result *ProcessResult) {
	if l.DelaySeconds > 0 {
		if err := d.wait(ctx, time.Duration(l.DelaySeconds)*time.Second); err != nil {
			d.log.Warn("listener delay interrupted", map[string]interface{}{
				"listenerId": l.ID,
				"error":      err,
			})
			return
		}
	}

	tmpl, err := d.template(ctx, l.NotificationType)
	if err != nil || tmpl == nil {
		if err == nil {
			err = stderrors.NewTemplateNotFoundError(l.NotificationType)
		}
		detail := DeliveryDetail{
			ListenerID:       l.ID,
			NotificationType: l.NotificationType,
			Status:           models.DeliveryFailed,
			Error:            err.Error(),
		}
		d.log.Error("template resolution failed", map[string]interface{}{
			"listenerId":       l.ID,
			"notificationType": l.NotificationType,
			"error":            detail.Error,
		})
		result.Details = append(result.Details, detail)
		result.Failed++
		d.bumpExecution(ctx, l)
		return
	}

	targets := l.Channels
	if len(targets) == 0 {
		targets = make([]string, 0, len(tmpl.Channels))
		for name := range tmpl.Channels {
			targets = append(targets, name)
		}
		sort.Strings(targets)
	}

	for _, channel := range targets {
		d.dispatchChannel(ctx, l, tmpl, channel, eventName, data, evCtx, result)
	}

	d.bumpExecution(ctx, l)
}

func (d *Dispatcher) dispatchChannel(ctx context.Context, l *models.Listener, tmpl *models.Template, channel, eventName string, data, evCtx map[string]interface{}, result *ProcessResult) {
	detail := DeliveryDetail{
		ListenerID:       l.ID,
		NotificationType: l.NotificationType,
		Channel:          channel,
	}

	recipient := ""
	record := func() {
		result.Details = append(result.Details, detail)
		metrics.NotificationsSent.WithLabelValues(channel, detail.Status).Inc()
		if d.recorder != nil {
			d.recorder.Record(ctx, &deliverylog.Entry{
				Event:            eventName,
				ListenerID:       l.ID,
				NotificationType: l.NotificationType,
				Channel:          channel,
				Recipient:        recipient,
				Status:           detail.Status,
				MessageID:        detail.MessageID,
				Error:            detail.Error,
			})
		}
	}

	// An inactive channel is "listener processed, zero sends": neither a
	// failure nor a silent success.
	if !d.status.IsActive(channel) {
		detail.Status = models.DeliverySkipped
		detail.Error = "channel inactive"
		result.Skipped++
		d.addSkipped()
		record()
		return
	}

	content := template.RenderByChannel(tmpl, data, channel)
	if content == nil {
		detail.Status = models.DeliverySkipped
		detail.Error = "template has no content block for channel"
		result.Skipped++
		d.addSkipped()
		record()
		return
	}

	recipient = recipientFor(channel, data, evCtx)
	if recipient == "" {
		detail.Status = models.DeliveryFailed
		detail.Error = stderrors.NewNoRecipientError(channel).Error()
		result.Failed++
		d.addOutcome(false)
		record()
		return
	}

	msg := &models.OutboundMessage{
		ID:        uuid.New().String(),
		Channel:   channel,
		Recipient: recipient,
		Content:   content,
		Metadata: map[string]interface{}{
			"event":            eventName,
			"listenerId":       l.ID,
			"notificationType": l.NotificationType,
		},
	}

	res, err := d.sink.Send(ctx, msg)
	if err != nil || res == nil || !res.Success {
		detail.Status = models.DeliveryFailed
		switch {
		case err != nil:
			detail.Error = err.Error()
		case res != nil:
			detail.Error = res.Error
		default:
			detail.Error = "sink returned no result"
		}
		d.log.Error("notification send failed", map[string]interface{}{
			"listenerId": l.ID,
			"channel":    channel,
			"error":      detail.Error,
		})
		result.Failed++
		d.addOutcome(false)
		record()
		return
	}

	detail.Status = models.DeliverySuccessful
	detail.MessageID = res.MessageID
	result.Successful++
	result.SentCount++
	d.addOutcome(true)
	record()
}

// template resolves a template through the lazily populated cache.
func (d *Dispatcher) template(ctx context.Context, name string) (*models.Template, error) {
	d.cacheMu.RLock()
	cached, ok := d.cache[name]
	d.cacheMu.RUnlock()
	if ok {
		metrics.TemplateCacheHits.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.TemplateCacheHits.WithLabelValues("miss").Inc()

	tmpl, err := d.templates.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolve template %q: %w", name, err)
	}
	if tmpl == nil {
		return nil, nil
	}

	d.cacheMu.Lock()
	d.cache[name] = tmpl
	d.cacheMu.Unlock()
	return tmpl, nil
}

// ClearCache drops the template cache by swapping in a fresh map.
func (d *Dispatcher) ClearCache() {
	d.cacheMu.Lock()
	d.cache = map[string]*models.Template{}
	d.cacheMu.Unlock()
	d.log.Info("template cache cleared", nil)
}

// ReloadListeners forces the listener index to resync from the store.
func (d *Dispatcher) ReloadListeners(ctx context.Context) error {
	return d.index.Reload(ctx)
}

// ReloadEvents forces the event catalog to resync from the store.
func (d *Dispatcher) ReloadEvents(ctx context.Context) error {
	return d.catalog.Reload(ctx)
}

// GetStats returns the running counters plus derived rate and cache sizes.
func (d *Dispatcher) GetStats() EngineStats {
	d.statsMu.Lock()
	snapshot := d.stats
	d.statsMu.Unlock()

	if snapshot.TotalNotifications > 0 {
		snapshot.SuccessRate = float64(snapshot.SuccessfulDeliveries) / float64(snapshot.TotalNotifications) * 100
	}

	d.cacheMu.RLock()
	snapshot.TemplateCacheSize = len(d.cache)
	d.cacheMu.RUnlock()
	snapshot.ListenerIndexSize = d.index.Size()

	return snapshot
}

// TestSystem independently checks each collaborating subsystem and ANDs the
// results. No individual failure raises.
func (d *Dispatcher) TestSystem(ctx context.Context) SystemHealth {
	health := SystemHealth{
		EventCatalog: d.catalog.Healthy(ctx),
		Channels:     d.status.ActiveCount() > 0,
		Sink:         d.sink.Healthy(ctx),
	}

	count, err := d.templates.CountActive(ctx)
	health.TemplateStore = err == nil && count > 0

	health.Healthy = health.EventCatalog && health.TemplateStore && health.Channels && health.Sink
	return health
}

// wait blocks for the listener's configured delay, capped by maxDelay.
// Delays are deliberately sequential within a trigger so consolidation and
// priority outcomes stay deterministic.
func (d *Dispatcher) wait(ctx context.Context, delay time.Duration) error {
	if d.maxDelay > 0 && delay > d.maxDelay {
		delay = d.maxDelay
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) bumpExecution(ctx context.Context, l *models.Listener) {
	if err := d.listeners.IncrementExecution(ctx, l.ID, time.Now().UTC()); err != nil {
		d.log.Warn("listener execution counter update failed", map[string]interface{}{
			"listenerId": l.ID,
			"error":      err,
		})
	}
}

func (d *Dispatcher) addOutcome(success bool) {
	d.statsMu.Lock()
	d.stats.TotalNotifications++
	if success {
		d.stats.SuccessfulDeliveries++
	} else {
		d.stats.FailedDeliveries++
	}
	d.statsMu.Unlock()
}

func (d *Dispatcher) addSkipped() {
	d.statsMu.Lock()
	d.stats.SkippedChannels++
	d.statsMu.Unlock()
}

func (d *Dispatcher) finishEvent(result *ProcessResult) {
	now := time.Now().UTC()
	d.statsMu.Lock()
	d.stats.EventsProcessed++
	d.stats.LastProcessed = &now
	d.statsMu.Unlock()

	d.log.Debug("event dispatch finished", map[string]interface{}{
		"event":      result.Event,
		"processed":  result.ProcessedListeners,
		"successful": result.Successful,
		"failed":     result.Failed,
		"skipped":    result.Skipped,
	})
}
