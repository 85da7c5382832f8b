package service

import (
	"context"

	"crmrelay/internal/models"
	"crmrelay/pkg/mailgun"

	"github.com/sirupsen/logrus"
)

type emailAdapter struct {
	client      mailgun.Client
	defaultFrom string
	logger      *logrus.Logger
}

// NewEmailAdapter wraps the Mailgun client. When the draft omits a
// sender, the configured default address is used.
func NewEmailAdapter(client mailgun.Client, defaultFrom string, logger *logrus.Logger) ChannelAdapter {
	return &emailAdapter{
		client:      client,
		defaultFrom: defaultFrom,
		logger:      logger,
	}
}

func (a *emailAdapter) Send(ctx context.Context, draft *models.MessageDraft) *models.Message {
	from := draft.From
	if from == "" {
		from = a.defaultFrom
	}

	msg := newMessageFromDraft(draft, from)

	resp, err := a.client.SendMessage(ctx, mailgun.SendMessageRequest{
		From:    from,
		To:      draft.To,
		Subject: draft.Subject,
		Text:    draft.Content,
	})
	if err != nil {
		a.logger.WithError(err).WithField(LogFieldChannel, models.ChannelEmail).Warn("Email send failed")
		return markFailed(msg, err)
	}

	return markSent(msg, resp.ID, map[string]string{
		"mailgun_id":      resp.ID,
		"mailgun_message": resp.Message,
	})
}
