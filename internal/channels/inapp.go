// internal/channels/inapp.go
package channels

import (
	"context"
	"encoding/json"
	"time"

	"notification-engine/internal/common/logger"
	"notification-engine/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	inboxKeyPrefix   = "inbox:"
	inboxChannelPfx  = "notifications:"
	defaultInboxSize = 500
)

// InAppSink stores messages in a per-recipient Redis inbox list and publishes
// a pub/sub event so connected clients can pick them up. Real-time transport
// semantics beyond the publish are owned by whatever consumes the channel.
type InAppSink struct {
	rdb        redis.Cmdable
	inboxLimit int
	ttl        time.Duration
	log        logger.Logger
}

func NewInAppSink(rdb redis.Cmdable, inboxLimit int, ttl time.Duration, log logger.Logger) *InAppSink {
	if inboxLimit <= 0 {
		inboxLimit = defaultInboxSize
	}
	return &InAppSink{
		rdb:        rdb,
		inboxLimit: inboxLimit,
		ttl:        ttl,
		log:        log.WithFields(map[string]interface{}{"channel": models.ChannelInApp}),
	}
}

func (s *InAppSink) Name() string { return models.ChannelInApp }

type InboxEntry struct {
	ID        string                 `json:"id"`
	Title     string                 `json:"title,omitempty"`
	Message   string                 `json:"message"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt string                 `json:"createdAt"`
}

func (s *InAppSink) Send(ctx context.Context, msg *models.OutboundMessage) (*models.SendResult, error) {
	entry := InboxEntry{
		ID:        uuid.New().String(),
		Title:     msg.Content.Title,
		Message:   textOf(msg.Content),
		Metadata:  msg.Metadata,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return &models.SendResult{Success: false, Error: err.Error()}, err
	}

	key := inboxKeyPrefix + msg.Recipient
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, int64(s.inboxLimit-1))
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Error("in-app inbox write failed", map[string]interface{}{
			"recipient": msg.Recipient,
			"error":     err,
		})
		return &models.SendResult{Success: false, Error: err.Error()}, err
	}

	// Fanout is best-effort: a failed publish does not undo the inbox write.
	if err := s.rdb.Publish(ctx, inboxChannelPfx+msg.Recipient, payload).Err(); err != nil {
		s.log.Warn("in-app publish failed", map[string]interface{}{
			"recipient": msg.Recipient,
			"error":     err,
		})
	}

	return &models.SendResult{Success: true, MessageID: entry.ID}, nil
}

// Inbox returns the most recent entries for a recipient, newest first.
func (s *InAppSink) Inbox(ctx context.Context, recipient string, limit int) ([]InboxEntry, error) {
	if limit <= 0 || limit > s.inboxLimit {
		limit = s.inboxLimit
	}
	raw, err := s.rdb.LRange(ctx, inboxKeyPrefix+recipient, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	out := make([]InboxEntry, 0, len(raw))
	for _, item := range raw {
		var entry InboxEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}
