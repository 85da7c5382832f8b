package service

import (
	"context"
	"fmt"

	apperrors "crmrelay/internal/errors"
	"crmrelay/internal/metrics"
	"crmrelay/internal/models"
	"crmrelay/internal/privacy"

	"github.com/sirupsen/logrus"
)

// CommunicationService routes outbound drafts to exactly one channel
// adapter, persists the resulting record and publishes it for live
// dashboard consumers.
type CommunicationService interface {
	SendMessage(ctx context.Context, draft *models.MessageDraft) (*models.Message, error)
	GetMessage(ctx context.Context, id string) (*models.Message, error)
	ListMessages(ctx context.Context, limit, offset int) ([]models.Message, error)
	CleanupOldRecords(ctx context.Context, retentionDays int) error
}

// MessageStore is the persistence surface the dispatcher needs.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, id string) (*models.Message, error)
	ListMessages(ctx context.Context, limit, offset int) ([]models.Message, error)
	CleanupOldMessages(ctx context.Context, retentionDays int) error
}

type communicationService struct {
	adapters map[models.ChannelType]ChannelAdapter
	db       MessageStore
	hub      *Hub
	logger   *logrus.Logger
}

// NewCommunicationService wires the four channel adapters behind the
// dispatch switch. The hub may be nil when no live consumers exist.
func NewCommunicationService(email, sms, messenger, instagram ChannelAdapter, db MessageStore, hub *Hub, logger *logrus.Logger) CommunicationService {
	return &communicationService{
		adapters: map[models.ChannelType]ChannelAdapter{
			models.ChannelEmail:     email,
			models.ChannelSMS:       sms,
			models.ChannelMessenger: messenger,
			models.ChannelInstagram: instagram,
		},
		db:     db,
		hub:    hub,
		logger: logger,
	}
}

// SendMessage performs exactly one vendor call for the draft. A vendor
// failure is returned as data (Status "failed"), not as an error; the
// error return covers validation and routing misses only.
func (s *communicationService) SendMessage(ctx context.Context, draft *models.MessageDraft) (*models.Message, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	adapter, ok := s.adapters[draft.Type]
	if !ok {
		return nil, apperrors.NewUnsupportedChannelError(string(draft.Type))
	}

	msg := adapter.Send(ctx, draft)

	metrics.IncrementCounter("messages_dispatched_total", map[string]string{
		"channel": string(draft.Type),
		"status":  string(msg.Status),
	}, "Total dispatched messages")

	if err := s.db.SaveMessage(ctx, msg); err != nil {
		// The vendor call already happened; losing the history row must
		// not turn a delivered message into an API failure.
		s.logger.WithError(err).WithFields(logrus.Fields{
			LogFieldMessageID: msg.ID,
			LogFieldChannel:   msg.Type,
		}).Error("Failed to persist message record")
	}

	if s.hub != nil {
		s.hub.Publish(msg)
	}

	recipient := privacy.MaskRecipient(msg.To)
	if v, ok := ctx.Value(VerboseContextKey).(bool); ok && v {
		recipient = msg.To
	}

	s.logger.WithFields(logrus.Fields{
		LogFieldMessageID: msg.ID,
		LogFieldChannel:   msg.Type,
		LogFieldStatus:    msg.Status,
		LogFieldRecipient: recipient,
	}).Info("Message dispatched")

	return msg, nil
}

func (s *communicationService) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	return s.db.GetMessage(ctx, id)
}

func (s *communicationService) ListMessages(ctx context.Context, limit, offset int) ([]models.Message, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.db.ListMessages(ctx, limit, offset)
}

func (s *communicationService) CleanupOldRecords(ctx context.Context, retentionDays int) error {
	return s.db.CleanupOldMessages(ctx, retentionDays)
}

func validateDraft(draft *models.MessageDraft) error {
	if draft == nil {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "draft is required")
	}
	if !draft.Type.IsValid() {
		// An unknown tag on a well-formed draft is a routing problem,
		// not bad user input; let the dispatch switch report it.
		return nil
	}
	if draft.To == "" {
		return apperrors.NewValidationError("to", "recipient is required")
	}
	if draft.Content == "" {
		return apperrors.NewValidationError("content", "message content is required")
	}
	if draft.Type == models.ChannelEmail && draft.Subject == "" {
		return apperrors.NewValidationError("subject", "subject is required for email")
	}
	if draft.Type != models.ChannelEmail && draft.Subject != "" {
		return apperrors.NewValidationError("subject", fmt.Sprintf("subject is not supported for %s", draft.Type))
	}
	return nil
}
