// internal/channels/whatsapp.go
package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"notification-engine/internal/common/httpclient"
	"notification-engine/internal/common/logger"
	"notification-engine/internal/models"
)

const defaultWhatsAppBaseURL = "https://graph.facebook.com/v18.0"

// WhatsAppSink delivers text messages through the WhatsApp Business Cloud
// API. The recipient is the destination phone number in E.164 format.
type WhatsAppSink struct {
	client        *httpclient.Client
	baseURL       string
	phoneNumberID string
	accessToken   string
	log           logger.Logger
}

func NewWhatsAppSink(client *httpclient.Client, baseURL, phoneNumberID, accessToken string, log logger.Logger) *WhatsAppSink {
	if baseURL == "" {
		baseURL = defaultWhatsAppBaseURL
	}
	return &WhatsAppSink{
		client:        client,
		baseURL:       baseURL,
		phoneNumberID: phoneNumberID,
		accessToken:   accessToken,
		log:           log.WithFields(map[string]interface{}{"channel": models.ChannelWhatsApp}),
	}
}

func (s *WhatsAppSink) Name() string { return models.ChannelWhatsApp }

type whatsAppResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *WhatsAppSink) Send(ctx context.Context, msg *models.OutboundMessage) (*models.SendResult, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                msg.Recipient,
		"type":              "text",
		"text": map[string]string{
			"body": textOf(msg.Content),
		},
	})
	if err != nil {
		return &models.SendResult{Success: false, Error: err.Error()}, err
	}

	url := fmt.Sprintf("%s/%s/messages", s.baseURL, s.phoneNumberID)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &models.SendResult{Success: false, Error: err.Error()}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.accessToken)

	resp, err := s.client.DoWithContext(ctx, req)
	if err != nil {
		s.log.Error("whatsapp send failed", map[string]interface{}{
			"recipient": msg.Recipient,
			"error":     err,
		})
		return &models.SendResult{Success: false, Error: err.Error()}, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var parsed whatsAppResponse
	_ = json.Unmarshal(body, &parsed)

	if resp.StatusCode >= 300 {
		detail := resp.Status
		if parsed.Error != nil && parsed.Error.Message != "" {
			detail = parsed.Error.Message
		}
		err := fmt.Errorf("whatsapp api: %s", detail)
		s.log.Error("whatsapp send rejected", map[string]interface{}{
			"recipient": msg.Recipient,
			"status":    resp.StatusCode,
			"error":     detail,
		})
		return &models.SendResult{Success: false, Error: err.Error()}, err
	}

	result := &models.SendResult{Success: true}
	if len(parsed.Messages) > 0 {
		result.MessageID = parsed.Messages[0].ID
	}
	return result, nil
}
