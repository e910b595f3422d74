// internal/channels/router_test.go
package channels

import (
	"context"
	"testing"

	stderrors "notification-engine/internal/common/errors"
	"notification-engine/internal/common/logger"
	"notification-engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSink implements Sink for routing tests.
type stubSink struct {
	name string
	sent int
}

func (s *stubSink) Name() string { return s.name }

func (s *stubSink) Send(context.Context, *models.OutboundMessage) (*models.SendResult, error) {
	s.sent++
	return &models.SendResult{Success: true, MessageID: s.name + "-1"}, nil
}

func TestRouterSend(t *testing.T) {
	r := NewRouter(logger.NewTestLogger(t))
	email := &stubSink{name: models.ChannelEmail}
	sms := &stubSink{name: models.ChannelSMS}
	r.Register(email)
	r.Register(sms)

	res, err := r.Send(context.Background(), &models.OutboundMessage{Channel: models.ChannelSMS})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, sms.sent)
	assert.Equal(t, 0, email.sent)
}

func TestRouterUnknownChannel(t *testing.T) {
	r := NewRouter(logger.NewTestLogger(t))

	res, err := r.Send(context.Background(), &models.OutboundMessage{Channel: "telegram"})
	require.Error(t, err)
	assert.False(t, res.Success)
	assert.ErrorIs(t, err, &stderrors.StandardError{Code: stderrors.ErrCodeChannelUnknown})
}

func TestRouterHealthy(t *testing.T) {
	r := NewRouter(logger.NewTestLogger(t))
	assert.False(t, r.Healthy(context.Background()))

	r.Register(&stubSink{name: models.ChannelEmail})
	assert.True(t, r.Healthy(context.Background()))
	assert.Equal(t, []string{models.ChannelEmail}, r.Channels())
}

// fakeChannelStore implements ChannelStore with a function field.
type fakeChannelStore struct {
	ChannelsFunc func(ctx context.Context) ([]models.ChannelConfig, error)
}

func (f *fakeChannelStore) Channels(ctx context.Context) ([]models.ChannelConfig, error) {
	return f.ChannelsFunc(ctx)
}

func TestStatusProvider(t *testing.T) {
	store := &fakeChannelStore{
		ChannelsFunc: func(context.Context) ([]models.ChannelConfig, error) {
			return []models.ChannelConfig{
				{Name: models.ChannelEmail, Active: true, RateLimitPerMinute: 100},
				{Name: models.ChannelSMS, Active: false},
			}, nil
		},
	}

	p := NewStatusProvider(store, logger.NewTestLogger(t))
	assert.False(t, p.IsActive(models.ChannelEmail), "nothing active before first reload")

	require.NoError(t, p.Reload(context.Background()))

	assert.True(t, p.IsActive(models.ChannelEmail))
	assert.False(t, p.IsActive(models.ChannelSMS))
	assert.False(t, p.IsActive(models.ChannelPush), "unconfigured channel is inactive")
	assert.Equal(t, 100, p.RateLimit(models.ChannelEmail))
	assert.Equal(t, 0, p.RateLimit(models.ChannelPush))
	assert.Equal(t, 1, p.ActiveCount())
}
