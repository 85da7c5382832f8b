package service

import (
	"context"
	"strconv"

	"crmrelay/internal/models"
	"crmrelay/pkg/twilio"

	"github.com/sirupsen/logrus"
)

type smsAdapter struct {
	client     twilio.Client
	fromNumber string
	logger     *logrus.Logger
}

// NewSMSAdapter wraps the Twilio client. The sender number comes from
// configuration unless the draft supplies its own.
func NewSMSAdapter(client twilio.Client, fromNumber string, logger *logrus.Logger) ChannelAdapter {
	return &smsAdapter{
		client:     client,
		fromNumber: fromNumber,
		logger:     logger,
	}
}

func (a *smsAdapter) Send(ctx context.Context, draft *models.MessageDraft) *models.Message {
	from := draft.From
	if from == "" {
		from = a.fromNumber
	}

	msg := newMessageFromDraft(draft, from)

	resp, err := a.client.SendSMS(ctx, twilio.SendSMSRequest{
		To:   draft.To,
		From: from,
		Body: draft.Content,
	})
	if err != nil {
		a.logger.WithError(err).WithField(LogFieldChannel, models.ChannelSMS).Warn("SMS send failed")
		return markFailed(msg, err)
	}

	metadata := map[string]string{
		"twilio_sid":    resp.SID,
		"twilio_status": resp.Status,
	}
	if resp.ErrorCode != nil {
		metadata["twilio_error_code"] = strconv.Itoa(*resp.ErrorCode)
	}

	sent := markSent(msg, resp.SID, metadata)

	// Twilio reports "sent" only once the carrier accepted the message.
	// Any other vendor status means it is still processing, so the local
	// record stays pending rather than failed.
	if resp.Status != "sent" {
		sent.Status = models.MessageStatusPending
	}

	return sent
}
