// internal/channels/email.go
package channels

import (
	"context"

	"notification-engine/internal/common/logger"
	"notification-engine/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESService is the slice of the SES client the email sink needs, kept as an
// interface for mocking.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailSink delivers email content blocks through AWS SES.
type EmailSink struct {
	ses       SESService
	fromEmail string
	log       logger.Logger
}

func NewEmailSink(sesClient SESService, fromEmail string, log logger.Logger) *EmailSink {
	return &EmailSink{
		ses:       sesClient,
		fromEmail: fromEmail,
		log:       log.WithFields(map[string]interface{}{"channel": models.ChannelEmail}),
	}
}

func (s *EmailSink) Name() string { return models.ChannelEmail }

func (s *EmailSink) Send(ctx context.Context, msg *models.OutboundMessage) (*models.SendResult, error) {
	content := msg.Content

	subject := content.Subject
	if subject == "" {
		subject = content.Title
	}

	body := &types.Body{}
	if content.HTML != "" {
		body.Html = &types.Content{Data: aws.String(content.HTML)}
	}
	if text := textOf(content); text != "" {
		body.Text = &types.Content{Data: aws.String(text)}
	}

	out, err := s.ses.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{msg.Recipient},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body:    body,
		},
		Source: aws.String(s.fromEmail),
	})
	if err != nil {
		s.log.Error("email send failed", map[string]interface{}{
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
