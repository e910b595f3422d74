// internal/deliverylog/recorder.go

// Package deliverylog indexes per-send outcomes into Elasticsearch so
// operators can search delivery history. Recording is best-effort: a failed
// index write is logged and never affects the dispatch outcome.
package deliverylog

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"notification-engine/internal/common/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Entry is one delivery attempt document.
type Entry struct {
	Event            string    `json:"event"`
	ListenerID       string    `json:"listenerId"`
	NotificationType string    `json:"notificationType"`
	Channel          string    `json:"channel"`
	Recipient        string    `json:"recipient,omitempty"`
	Status           string    `json:"status"`
	MessageID        string    `json:"messageId,omitempty"`
	Error            string    `json:"error,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

type Recorder struct {
	es    *elasticsearch.Client
	index string
	log   logger.Logger
}

func NewRecorder(es *elasticsearch.Client, index string, log logger.Logger) *Recorder {
	return &Recorder{
		es:    es,
		index: index,
		log:   log.WithFields(map[string]interface{}{"component": "delivery-log"}),
	}
}

// Record indexes one entry. Errors are swallowed after logging; the delivery
// log is an observability aid, not part of the dispatch contract.
func (r *Recorder) Record(ctx context.Context, entry *Entry) {
	if r == nil || r.es == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(entry)
	if err != nil {
		r.log.Warn("delivery log marshal failed", map[string]interface{}{"error": err})
		return
	}

	req := esapi.IndexRequest{
		Index: r.index,
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, r.es)
	if err != nil {
		r.log.Warn("delivery log index failed", map[string]interface{}{"error": err})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		r.log.Warn("delivery log index rejected", map[string]interface{}{
			"status": res.Status(),
		})
	}
}
