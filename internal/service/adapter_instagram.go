package service

import (
	"context"

	"crmrelay/internal/models"
	"crmrelay/pkg/meta"

	"github.com/sirupsen/logrus"
)

type instagramAdapter struct {
	client      meta.Client
	instagramID string
	logger      *logrus.Logger
}

// NewInstagramAdapter wraps the Graph Instagram direct message send
// endpoint. The sender is the connected IG account identity.
func NewInstagramAdapter(client meta.Client, instagramID string, logger *logrus.Logger) ChannelAdapter {
	return &instagramAdapter{
		client:      client,
		instagramID: instagramID,
		logger:      logger,
	}
}

func (a *instagramAdapter) Send(ctx context.Context, draft *models.MessageDraft) *models.Message {
	msg := newMessageFromDraft(draft, a.instagramID)

	resp, err := a.client.SendInstagramMessage(ctx, draft.To, draft.Content)
	if err != nil {
		a.logger.WithError(err).WithField(LogFieldChannel, models.ChannelInstagram).Warn("Instagram send failed")
		return markFailed(msg, err)
	}

	return markSent(msg, resp.MessageID, map[string]string{
		"graph_message_id":   resp.MessageID,
		"graph_recipient_id": resp.RecipientID,
	})
}
