// internal/channels/inapp_test.go
package channels

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"notification-engine/internal/common/logger"
	"notification-engine/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInAppFixture(t *testing.T, limit int, ttl time.Duration) (*InAppSink, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewInAppSink(rdb, limit, ttl, logger.NewTestLogger(t)), mr
}

func TestInAppSinkSend(t *testing.T) {
	sink, mr := newInAppFixture(t, 10, time.Hour)
	ctx := context.Background()

	res, err := sink.Send(ctx, &models.OutboundMessage{
		Recipient: "u-1",
		Content:   &models.ChannelContent{Title: "Order update", Message: "Order 1042 shipped"},
		Metadata:  map[string]interface{}{"event": "order.shipped"},
	})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.MessageID)

	items, err := mr.List("inbox:u-1")
	require.NoError(t, err)
	require.Len(t, items, 1)

	var entry InboxEntry
	require.NoError(t, json.Unmarshal([]byte(items[0]), &entry))
	assert.Equal(t, res.MessageID, entry.ID)
	assert.Equal(t, "Order update", entry.Title)
	assert.Equal(t, "Order 1042 shipped", entry.Message)
	assert.Equal(t, "order.shipped", entry.Metadata["event"])

	ttl := mr.TTL("inbox:u-1")
	assert.Equal(t, time.Hour, ttl)
}

func TestInAppSinkTrimsInbox(t *testing.T) {
	sink, mr := newInAppFixture(t, 3, 0)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := sink.Send(ctx, &models.OutboundMessage{
			Recipient: "u-1",
			Content:   &models.ChannelContent{Message: "msg"},
		})
		require.NoError(t, err)
	}

	items, err := mr.List("inbox:u-1")
	require.NoError(t, err)
	assert.Len(t, items, 3, "inbox is capped at the configured limit")
}

func TestInAppSinkInbox(t *testing.T) {
	sink, _ := newInAppFixture(t, 10, 0)
	ctx := context.Background()

	_, err := sink.Send(ctx, &models.OutboundMessage{
		Recipient: "u-1",
		Content:   &models.ChannelContent{Message: "first"},
	})
	require.NoError(t, err)
	_, err = sink.Send(ctx, &models.OutboundMessage{
		Recipient: "u-1",
		Content:   &models.ChannelContent{Message: "second"},
	})
	require.NoError(t, err)

	entries, err := sink.Inbox(ctx, "u-1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Message, "newest first")
	assert.Equal(t, "first", entries[1].Message)

	empty, err := sink.Inbox(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestInAppSinkInboxReadError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	sink := NewInAppSink(rdb, 10, 0, logger.NewTestLogger(t))

	mock.ExpectLRange("inbox:u-1", 0, 9).SetErr(errors.New("connection refused"))

	_, err := sink.Inbox(context.Background(), "u-1", 10)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
