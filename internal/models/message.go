package models

import (
	"time"
)

// ChannelType identifies one of the supported outbound messaging transports.
type ChannelType string

const (
	ChannelEmail     ChannelType = "email"
	ChannelSMS       ChannelType = "sms"
	ChannelMessenger ChannelType = "messenger"
	ChannelInstagram ChannelType = "instagram"
)

// IsValid reports whether t is one of the four known channels.
func (t ChannelType) IsValid() bool {
	switch t {
	case ChannelEmail, ChannelSMS, ChannelMessenger, ChannelInstagram:
		return true
	}
	return false
}

// MessageStatus is the delivery state of a communication attempt.
type MessageStatus string

const (
	MessageStatusPending MessageStatus = "pending"
	MessageStatusSent    MessageStatus = "sent"
	MessageStatusFailed  MessageStatus = "failed"
)

// Message is one communication attempt. Records are immutable once
// created: status moves pending→sent or pending→failed at creation
// time, never by a later update.
type Message struct {
	ID         string            `json:"id" db:"id"`
	TemplateID *string           `json:"templateId,omitempty" db:"template_id"`
	Type       ChannelType       `json:"type" db:"type"`
	From       string            `json:"from" db:"sender"`
	To         string            `json:"to" db:"recipient"`
	Subject    *string           `json:"subject,omitempty" db:"subject"` // email only
	Content    string            `json:"content" db:"content"`
	Status     MessageStatus     `json:"status" db:"status"`
	Error      *string           `json:"error,omitempty" db:"error"`
	Metadata   map[string]string `json:"metadata,omitempty" db:"metadata"`
	SentAt     *time.Time        `json:"sentAt,omitempty" db:"sent_at"`
	CreatedAt  time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time         `json:"updatedAt" db:"updated_at"`
}

// MessageDraft carries everything a caller supplies for a send. The
// channel adapter fills in id, status and timestamps.
type MessageDraft struct {
	Type       ChannelType `json:"type"`
	From       string      `json:"from,omitempty"`
	To         string      `json:"to"`
	Subject    string      `json:"subject,omitempty"`
	Content    string      `json:"content"`
	TemplateID string      `json:"templateId,omitempty"`
}
