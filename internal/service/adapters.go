package service

import (
	"context"
	"fmt"
	"time"

	"crmrelay/internal/models"

	"github.com/google/uuid"
)

// ChannelAdapter sends one draft through one vendor. A vendor failure
// is swallowed at this layer: it comes back as a Message with status
// "failed" and Error set, never as a raised error. Callers must
// inspect Status.
type ChannelAdapter interface {
	Send(ctx context.Context, draft *models.MessageDraft) *models.Message
}

// newMessageFromDraft builds the common Message skeleton shared by all
// adapters. The adapter fills in id, status, error and sent time.
func newMessageFromDraft(draft *models.MessageDraft, from string) *models.Message {
	now := time.Now().UTC()

	msg := &models.Message{
		Type:      draft.Type,
		From:      from,
		To:        draft.To,
		Content:   draft.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if draft.TemplateID != "" {
		templateID := draft.TemplateID
		msg.TemplateID = &templateID
	}
	if draft.Type == models.ChannelEmail && draft.Subject != "" {
		subject := draft.Subject
		msg.Subject = &subject
	}
	return msg
}

// markSent finalizes a successful attempt with the vendor-assigned id.
func markSent(msg *models.Message, vendorID string, metadata map[string]string) *models.Message {
	now := time.Now().UTC()
	msg.ID = vendorID
	msg.Status = models.MessageStatusSent
	msg.SentAt = &now
	msg.Metadata = metadata
	return msg
}

// markFailed finalizes a failed attempt. The id is a locally generated
// time-derived fallback since the vendor never assigned one.
func markFailed(msg *models.Message, err error) *models.Message {
	errText := err.Error()
	msg.ID = fallbackMessageID()
	msg.Status = models.MessageStatusFailed
	msg.Error = &errText
	return msg
}

// fallbackMessageID builds a local identifier for attempts the vendor
// rejected. Time-derived with a random suffix so two failures in the
// same nanosecond cannot collide.
func fallbackMessageID() string {
	return fmt.Sprintf("failed-%d-%s", time.Now().UnixNano(), uuid.NewString()[:8])
}
