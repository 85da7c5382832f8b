package service

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "crmrelay/internal/errors"
	"crmrelay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sentMessage(id string, channel models.ChannelType) *models.Message {
	now := time.Now().UTC()
	return &models.Message{
		ID:        id,
		Type:      channel,
		From:      "sender",
		To:        "recipient",
		Content:   "hello",
		Status:    models.MessageStatusSent,
		SentAt:    &now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newTestCommunicationService(store *mockMessageStore, hub *Hub) (CommunicationService, map[models.ChannelType]*stubAdapter) {
	adapters := map[models.ChannelType]*stubAdapter{
		models.ChannelEmail:     {result: sentMessage("e-1", models.ChannelEmail)},
		models.ChannelSMS:       {result: sentMessage("s-1", models.ChannelSMS)},
		models.ChannelMessenger: {result: sentMessage("m-1", models.ChannelMessenger)},
		models.ChannelInstagram: {result: sentMessage("i-1", models.ChannelInstagram)},
	}
	svc := NewCommunicationService(
		adapters[models.ChannelEmail],
		adapters[models.ChannelSMS],
		adapters[models.ChannelMessenger],
		adapters[models.ChannelInstagram],
		store, hub, testLogger(),
	)
	return svc, adapters
}

func TestSendMessageRoutesByType(t *testing.T) {
	tests := []struct {
		channel models.ChannelType
		wantID  string
	}{
		{models.ChannelEmail, "e-1"},
		{models.ChannelSMS, "s-1"},
		{models.ChannelMessenger, "m-1"},
		{models.ChannelInstagram, "i-1"},
	}

	for _, tt := range tests {
		t.Run(string(tt.channel), func(t *testing.T) {
			store := &mockMessageStore{}
			svc, adapters := newTestCommunicationService(store, nil)

			draft := &models.MessageDraft{
				Type:    tt.channel,
				To:      "recipient",
				Content: "hello",
			}
			if tt.channel == models.ChannelEmail {
				draft.Subject = "Hi"
			}

			msg, err := svc.SendMessage(context.Background(), draft)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, msg.ID)
			assert.NotNil(t, adapters[tt.channel].lastDraft)

			// Exactly one adapter saw the draft
			for ch, a := range adapters {
				if ch != tt.channel {
					assert.Nil(t, a.lastDraft)
				}
			}
			require.Len(t, store.saved, 1)
			assert.Equal(t, tt.wantID, store.saved[0].ID)
		})
	}
}

func TestSendMessageUnknownChannel(t *testing.T) {
	svc, _ := newTestCommunicationService(&mockMessageStore{}, nil)

	msg, err := svc.SendMessage(context.Background(), &models.MessageDraft{
		Type:    models.ChannelType("carrier_pigeon"),
		To:      "recipient",
		Content: "hello",
	})

	assert.Nil(t, msg)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnsupportedChannel, apperrors.GetCode(err))
}

func TestSendMessageValidation(t *testing.T) {
	tests := []struct {
		name  string
		draft *models.MessageDraft
	}{
		{"nil draft", nil},
		{"missing recipient", &models.MessageDraft{Type: models.ChannelSMS, Content: "hi"}},
		{"missing content", &models.MessageDraft{Type: models.ChannelSMS, To: "+12025551234"}},
		{"email without subject", &models.MessageDraft{Type: models.ChannelEmail, To: "a@b.c", Content: "hi"}},
		{"sms with subject", &models.MessageDraft{Type: models.ChannelSMS, To: "+12025551234", Subject: "Hi", Content: "hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockMessageStore{}
			svc, _ := newTestCommunicationService(store, nil)

			msg, err := svc.SendMessage(context.Background(), tt.draft)
			assert.Nil(t, msg)
			require.Error(t, err)
			assert.Empty(t, store.saved, "nothing may reach a vendor or the store")
		})
	}
}

func TestSendMessagePersistFailureIsNotFatal(t *testing.T) {
	store := &mockMessageStore{saveErr: errors.New("disk full")}
	svc, _ := newTestCommunicationService(store, nil)

	msg, err := svc.SendMessage(context.Background(), &models.MessageDraft{
		Type:    models.ChannelSMS,
		To:      "+12025551234",
		Content: "hello",
	})

	// The vendor call succeeded; a lost history row must not surface
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, models.MessageStatusSent, msg.Status)
}

func TestSendMessagePublishesToHub(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	ch, cancel := hub.Subscribe()
	defer cancel()

	svc, _ := newTestCommunicationService(&mockMessageStore{}, hub)

	_, err := svc.SendMessage(context.Background(), &models.MessageDraft{
		Type:    models.ChannelSMS,
		To:      "+12025551234",
		Content: "hello",
	})
	require.NoError(t, err)

	select {
	case got := <-ch:
		assert.Equal(t, "s-1", got.ID)
	case <-time.After(time.Second):
		t.Fatal("expected a published message")
	}
}

func TestListMessagesClampsPaging(t *testing.T) {
	store := &mockMessageStore{}
	svc, _ := newTestCommunicationService(store, nil)
	ctx := context.Background()

	_, err := svc.ListMessages(ctx, 0, -5)
	require.NoError(t, err)
	assert.Equal(t, 50, store.lastLimit)
	assert.Equal(t, 0, store.lastOffset)

	_, err = svc.ListMessages(ctx, 10000, 20)
	require.NoError(t, err)
	assert.Equal(t, 50, store.lastLimit)
	assert.Equal(t, 20, store.lastOffset)

	_, err = svc.ListMessages(ctx, 25, 20)
	require.NoError(t, err)
	assert.Equal(t, 25, store.lastLimit)
}

func TestGetMessagePassesThrough(t *testing.T) {
	want := sentMessage("m-9", models.ChannelEmail)
	store := &mockMessageStore{getResp: want}
	svc, _ := newTestCommunicationService(store, nil)

	got, err := svc.GetMessage(context.Background(), "m-9")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Absent records stay (nil, nil)
	store.getResp = nil
	got, err = svc.GetMessage(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCleanupOldRecords(t *testing.T) {
	store := &mockMessageStore{}
	svc, _ := newTestCommunicationService(store, nil)

	require.NoError(t, svc.CleanupOldRecords(context.Background(), 30))
	assert.Equal(t, 30, store.cleanupDays)
}
