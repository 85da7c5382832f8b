package service

import (
	"context"

	"crmrelay/internal/models"
	"crmrelay/pkg/meta"

	"github.com/sirupsen/logrus"
)

type messengerAdapter struct {
	client meta.Client
	pageID string
	logger *logrus.Logger
}

// NewMessengerAdapter wraps the Graph Messenger send endpoint. The
// sender is always the authenticated page identity, never the draft.
func NewMessengerAdapter(client meta.Client, pageID string, logger *logrus.Logger) ChannelAdapter {
	return &messengerAdapter{
		client: client,
		pageID: pageID,
		logger: logger,
	}
}

func (a *messengerAdapter) Send(ctx context.Context, draft *models.MessageDraft) *models.Message {
	msg := newMessageFromDraft(draft, a.pageID)

	resp, err := a.client.SendMessengerMessage(ctx, draft.To, draft.Content)
	if err != nil {
		a.logger.WithError(err).WithField(LogFieldChannel, models.ChannelMessenger).Warn("Messenger send failed")
		return markFailed(msg, err)
	}

	return markSent(msg, resp.MessageID, map[string]string{
		"graph_message_id":   resp.MessageID,
		"graph_recipient_id": resp.RecipientID,
	})
}
