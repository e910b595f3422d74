// internal/channels/sms.go
package channels

import (
	"context"

	"notification-engine/internal/common/logger"
	"notification-engine/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSService is the slice of the SNS client the SMS and push sinks need.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SMSSink delivers plain-text messages to phone numbers through AWS SNS.
type SMSSink struct {
	sns      SNSService
	senderID string
	log      logger.Logger
}

func NewSMSSink(snsClient SNSService, senderID string, log logger.Logger) *SMSSink {
	return &SMSSink{
		sns:      snsClient,
		senderID: senderID,
		log:      log.WithFields(map[string]interface{}{"channel": models.ChannelSMS}),
	}
}

func (s *SMSSink) Name() string { return models.ChannelSMS }

func (s *SMSSink) Send(ctx context.Context, msg *models.OutboundMessage) (*models.SendResult, error) {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(msg.Recipient),
		Message:     aws.String(textOf(msg.Content)),
	}
	if s.senderID != "" {
		input.MessageAttributes = map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(s.senderID),
			},
		}
	}

	out, err := s.sns.Publish(ctx, input)
	if err != nil {
		s.log.Error("SMS send failed", map[string]interface{}{
			"recipient": msg.Recipient,
			"error":     err,
		})
		return &models.SendResult{Success: false, Error: err.Error()}, err
	}

	result := &models.SendResult{Success: true}
	if out.MessageId != nil {
		result.MessageID = *out.MessageId
	}
	return result, nil
}
