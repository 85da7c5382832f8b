package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"crmrelay/internal/models"
	"crmrelay/pkg/mailgun"
	"crmrelay/pkg/meta"
	"crmrelay/pkg/twilio"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&strings.Builder{})
	return logger
}

func TestEmailAdapterSend(t *testing.T) {
	client := &mockMailgunClient{
		resp: &mailgun.SendMessageResponse{ID: "<mg-123@example.com>", Message: "Queued. Thank you."},
	}
	adapter := NewEmailAdapter(client, "no-reply@agency.example", testLogger())

	msg := adapter.Send(context.Background(), &models.MessageDraft{
		Type:    models.ChannelEmail,
		To:      "jane@example.com",
		Subject: "March campaign",
		Content: "Hello!",
	})

	require.NotNil(t, msg)
	assert.Equal(t, models.MessageStatusSent, msg.Status)
	assert.Equal(t, "<mg-123@example.com>", msg.ID)
	assert.Equal(t, "no-reply@agency.example", msg.From)
	require.NotNil(t, msg.Subject)
	assert.Equal(t, "March campaign", *msg.Subject)
	require.NotNil(t, msg.SentAt)
	assert.Nil(t, msg.Error)
	assert.Equal(t, "<mg-123@example.com>", msg.Metadata["mailgun_id"])

	require.NotNil(t, client.lastReq)
	assert.Equal(t, "no-reply@agency.example", client.lastReq.From)
	assert.Equal(t, "jane@example.com", client.lastReq.To)
}

func TestEmailAdapterDraftSenderWins(t *testing.T) {
	client := &mockMailgunClient{
		resp: &mailgun.SendMessageResponse{ID: "<mg-1@example.com>"},
	}
	adapter := NewEmailAdapter(client, "no-reply@agency.example", testLogger())

	msg := adapter.Send(context.Background(), &models.MessageDraft{
		Type:    models.ChannelEmail,
		From:    "campaigns@agency.example",
		To:      "jane@example.com",
		Subject: "Hi",
		Content: "Hello!",
	})

	assert.Equal(t, "campaigns@agency.example", msg.From)
	assert.Equal(t, "campaigns@agency.example", client.lastReq.From)
}

func TestEmailAdapterVendorFailure(t *testing.T) {
	client := &mockMailgunClient{err: errors.New("mailgun: 401 unauthorized")}
	adapter := NewEmailAdapter(client, "no-reply@agency.example", testLogger())

	msg := adapter.Send(context.Background(), &models.MessageDraft{
		Type:    models.ChannelEmail,
		To:      "jane@example.com",
		Subject: "Hi",
		Content: "Hello!",
	})

	// A vendor failure is data, never a panic or a nil record
	require.NotNil(t, msg)
	assert.Equal(t, models.MessageStatusFailed, msg.Status)
	require.NotNil(t, msg.Error)
	assert.Contains(t, *msg.Error, "401")
	assert.True(t, strings.HasPrefix(msg.ID, "failed-"))
	assert.Nil(t, msg.SentAt)
}

func TestSMSAdapterSend(t *testing.T) {
	client := &mockTwilioClient{
		resp: &twilio.MessageResponse{SID: "SM123", Status: "sent"},
	}
	adapter := NewSMSAdapter(client, "+12025550100", testLogger())

	msg := adapter.Send(context.Background(), &models.MessageDraft{
		Type:    models.ChannelSMS,
		To:      "+12025551234",
		Content: "Reminder",
	})

	assert.Equal(t, models.MessageStatusSent, msg.Status)
	assert.Equal(t, "SM123", msg.ID)
	assert.Equal(t, "+12025550100", msg.From)
	assert.Equal(t, "SM123", msg.Metadata["twilio_sid"])
	assert.Equal(t, "sent", msg.Metadata["twilio_status"])
	require.NotNil(t, msg.SentAt)
}

func TestSMSAdapterQueuedStaysPending(t *testing.T) {
	client := &mockTwilioClient{
		resp: &twilio.MessageResponse{SID: "SM456", Status: "queued"},
	}
	adapter := NewSMSAdapter(client, "+12025550100", testLogger())

	msg := adapter.Send(context.Background(), &models.MessageDraft{
		Type:    models.ChannelSMS,
		To:      "+12025551234",
		Content: "Reminder",
	})

	// The carrier has not accepted yet; keep the record pending
	assert.Equal(t, models.MessageStatusPending, msg.Status)
	assert.Equal(t, "queued", msg.Metadata["twilio_status"])
	require.NotNil(t, msg.SentAt)
}

func TestSMSAdapterVendorErrorCodeRecorded(t *testing.T) {
	errCode := 21211
	client := &mockTwilioClient{
		resp: &twilio.MessageResponse{SID: "SM789", Status: "failed", ErrorCode: &errCode},
	}
	adapter := NewSMSAdapter(client, "+12025550100", testLogger())

	msg := adapter.Send(context.Background(), &models.MessageDraft{
		Type:    models.ChannelSMS,
		To:      "+12025551234",
		Content: "Reminder",
	})

	assert.Equal(t, models.MessageStatusPending, msg.Status)
	assert.Equal(t, "21211", msg.Metadata["twilio_error_code"])
}

func TestSMSAdapterVendorFailure(t *testing.T) {
	client := &mockTwilioClient{err: errors.New("twilio: 400 invalid number")}
	adapter := NewSMSAdapter(client, "+12025550100", testLogger())

	msg := adapter.Send(context.Background(), &models.MessageDraft{
		Type:    models.ChannelSMS,
		To:      "not-a-number",
		Content: "Reminder",
	})

	assert.Equal(t, models.MessageStatusFailed, msg.Status)
	require.NotNil(t, msg.Error)
	assert.Nil(t, msg.SentAt)
}

func TestMessengerAdapterSend(t *testing.T) {
	client := &mockMetaClient{
		sendResp: &meta.SendMessageResponse{MessageID: "m_abc", RecipientID: "psid-1"},
	}
	adapter := NewMessengerAdapter(client, "page-100", testLogger())

	msg := adapter.Send(context.Background(), &models.MessageDraft{
		Type:    models.ChannelMessenger,
		To:      "psid-1",
		Content: "Hi there",
	})

	assert.Equal(t, models.MessageStatusSent, msg.Status)
	assert.Equal(t, "m_abc", msg.ID)
	// The sender is the page identity regardless of the draft
	assert.Equal(t, "page-100", msg.From)
	assert.Equal(t, "psid-1", client.lastRecipient)
	assert.Equal(t, "Hi there", client.lastText)
	assert.Equal(t, "psid-1", msg.Metadata["graph_recipient_id"])
}

func TestMessengerAdapterVendorFailure(t *testing.T) {
	client := &mockMetaClient{sendErr: errors.New("graph: (#551) user unavailable")}
	adapter := NewMessengerAdapter(client, "page-100", testLogger())

	msg := adapter.Send(context.Background(), &models.MessageDraft{
		Type:    models.ChannelMessenger,
		To:      "psid-1",
		Content: "Hi there",
	})

	assert.Equal(t, models.MessageStatusFailed, msg.Status)
	require.NotNil(t, msg.Error)
	assert.Contains(t, *msg.Error, "#551")
}

func TestInstagramAdapterSend(t *testing.T) {
	client := &mockMetaClient{
		sendResp: &meta.SendMessageResponse{MessageID: "ig_xyz", RecipientID: "igsid-1"},
	}
	adapter := NewInstagramAdapter(client, "ig-200", testLogger())

	msg := adapter.Send(context.Background(), &models.MessageDraft{
		Type:    models.ChannelInstagram,
		To:      "igsid-1",
		Content: "Thanks for the follow",
	})

	assert.Equal(t, models.MessageStatusSent, msg.Status)
	assert.Equal(t, "ig_xyz", msg.ID)
	assert.Equal(t, "ig-200", msg.From)
}

func TestInstagramAdapterVendorFailure(t *testing.T) {
	client := &mockMetaClient{sendErr: errors.New("graph: 500")}
	adapter := NewInstagramAdapter(client, "ig-200", testLogger())

	msg := adapter.Send(context.Background(), &models.MessageDraft{
		Type:    models.ChannelInstagram,
		To:      "igsid-1",
		Content: "Hi",
	})

	assert.Equal(t, models.MessageStatusFailed, msg.Status)
	assert.True(t, strings.HasPrefix(msg.ID, "failed-"))
}

func TestNewMessageFromDraftTemplateAndSubject(t *testing.T) {
	msg := newMessageFromDraft(&models.MessageDraft{
		Type:       models.ChannelEmail,
		To:         "jane@example.com",
		Subject:    "Hi",
		Content:    "Hello",
		TemplateID: "tmpl-1",
	}, "no-reply@agency.example")

	require.NotNil(t, msg.TemplateID)
	assert.Equal(t, "tmpl-1", *msg.TemplateID)
	require.NotNil(t, msg.Subject)

	// Non-email drafts never carry a subject into the record
	sms := newMessageFromDraft(&models.MessageDraft{
		Type:    models.ChannelSMS,
		To:      "+12025551234",
		Content: "Hello",
	}, "+12025550100")
	assert.Nil(t, sms.Subject)
	assert.Nil(t, sms.TemplateID)
}

func TestFallbackMessageIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := fallbackMessageID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}
