// internal/channels/whatsapp_test.go
package channels

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"notification-engine/internal/common/httpclient"
	"notification-engine/internal/common/logger"
	"notification-engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhatsAppSinkSend(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.123"}]}`))
	}))
	defer srv.Close()

	sink := NewWhatsAppSink(httpclient.NewClient(5*time.Second), srv.URL, "555000", "token-abc", logger.NewTestLogger(t))
	res, err := sink.Send(context.Background(), &models.OutboundMessage{
		Recipient: "+15550001111",
		Content:   &models.ChannelContent{Message: "Order 1042 confirmed"},
	})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "wamid.123", res.MessageID)

	assert.Equal(t, "/555000/messages", gotPath)
	assert.Equal(t, "Bearer token-abc", gotAuth)
	assert.Equal(t, "whatsapp", gotBody["messaging_product"])
	assert.Equal(t, "+15550001111", gotBody["to"])
	text := gotBody["text"].(map[string]interface{})
	assert.Equal(t, "Order 1042 confirmed", text["body"])
}

func TestWhatsAppSinkAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid recipient"}}`))
	}))
	defer srv.Close()

	sink := NewWhatsAppSink(httpclient.NewClient(5*time.Second), srv.URL, "555000", "token-abc", logger.NewTestLogger(t))
	res, err := sink.Send(context.Background(), &models.OutboundMessage{
		Recipient: "not-a-number",
		Content:   &models.ChannelContent{Message: "hi"},
	})

	require.Error(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Invalid recipient")
}
