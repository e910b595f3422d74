// internal/channels/push.go
package channels

import (
	"context"
	"encoding/json"

	"notification-engine/internal/common/logger"
	"notification-engine/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// PushSink publishes to a device's SNS platform endpoint. The recipient is
// the endpoint ARN registered for the device.
type PushSink struct {
	sns SNSService
	log logger.Logger
}

func NewPushSink(snsClient SNSService, log logger.Logger) *PushSink {
	return &PushSink{
		sns: snsClient,
		log: log.WithFields(map[string]interface{}{"channel": models.ChannelPush}),
	}
}

func (s *PushSink) Name() string { return models.ChannelPush }

func (s *PushSink) Send(ctx context.Context, msg *models.OutboundMessage) (*models.SendResult, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"title": msg.Content.Title,
		"body":  textOf(msg.Content),
	})
	if err != nil {
		return &models.SendResult{Success: false, Error: err.Error()}, err
	}

	out, err := s.sns.Publish(ctx, &sns.PublishInput{
		TargetArn: aws.String(msg.Recipient),
		Message:   aws.String(string(payload)),
	})
	if err != nil {
		s.log.Error("push send failed", map[string]interface{}{
			"endpoint": msg.Recipient,
			"error":    err,
		})
		return &models.SendResult{Success: false, Error: err.Error()}, err
	}

	result := &models.SendResult{Success: true}
	if out.MessageId != nil {
		result.MessageID = *out.MessageId
	}
	return result, nil
}
