// internal/channels/email_test.go
package channels

import (
	"context"
	"errors"
	"testing"

	"notification-engine/internal/common/logger"
	"notification-engine/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockSESService implements SESService with a function field.
type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

func TestEmailSinkSend(t *testing.T) {
	var captured *ses.SendEmailInput
	mock := &MockSESService{
		SendEmailFunc: func(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			captured = params
			return &ses.SendEmailOutput{MessageId: aws.String("ses-123")}, nil
		},
	}

	sink := NewEmailSink(mock, "noreply@example.com", logger.NewTestLogger(t))
	res, err := sink.Send(context.Background(), &models.OutboundMessage{
		Channel:   models.ChannelEmail,
		Recipient: "ada@example.com",
		Content: &models.ChannelContent{
			Subject: "Order 1042 confirmed",
			Body:    "Thanks Ada!",
			HTML:    "<p>Thanks Ada!</p>",
		},
	})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "ses-123", res.MessageID)

	require.NotNil(t, captured)
	assert.Equal(t, []string{"ada@example.com"}, captured.Destination.ToAddresses)
	assert.Equal(t, "noreply@example.com", *captured.Source)
	assert.Equal(t, "Order 1042 confirmed", *captured.Message.Subject.Data)
	assert.Equal(t, "<p>Thanks Ada!</p>", *captured.Message.Body.Html.Data)
	assert.Equal(t, "Thanks Ada!", *captured.Message.Body.Text.Data)
}

func TestEmailSinkSubjectFallsBackToTitle(t *testing.T) {
	var captured *ses.SendEmailInput
	mock := &MockSESService{
		SendEmailFunc: func(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			captured = params
			return &ses.SendEmailOutput{}, nil
		},
	}

	sink := NewEmailSink(mock, "noreply@example.com", logger.NewTestLogger(t))
	_, err := sink.Send(context.Background(), &models.OutboundMessage{
		Recipient: "ada@example.com",
		Content:   &models.ChannelContent{Title: "Reminder", Message: "See you at 3pm"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Reminder", *captured.Message.Subject.Data)
}

func TestEmailSinkSendFailure(t *testing.T) {
	mock := &MockSESService{
		SendEmailFunc: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("MessageRejected")
		},
	}

	sink := NewEmailSink(mock, "noreply@example.com", logger.NewTestLogger(t))
	res, err := sink.Send(context.Background(), &models.OutboundMessage{
		Recipient: "ada@example.com",
		Content:   &models.ChannelContent{Subject: "x", Body: "y"},
	})

	require.Error(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "MessageRejected")
}
