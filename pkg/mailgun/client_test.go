package mailgun

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/mg.example.com/messages", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "api", user)
		assert.Equal(t, "key-secret", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "no-reply@agency.example", r.PostForm.Get("from"))
		assert.Equal(t, "jane@example.com", r.PostForm.Get("to"))
		assert.Equal(t, "March campaign", r.PostForm.Get("subject"))
		assert.Equal(t, "Hello!", r.PostForm.Get("text"))
		assert.Empty(t, r.PostForm.Get("html"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"<msg-1@mg.example.com>","message":"Queued. Thank you."}`))
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL: server.URL,
		APIKey:  "key-secret",
		Domain:  "mg.example.com",
	})

	resp, err := client.SendMessage(context.Background(), SendMessageRequest{
		From:    "no-reply@agency.example",
		To:      "jane@example.com",
		Subject: "March campaign",
		Text:    "Hello!",
	})
	require.NoError(t, err)
	assert.Equal(t, "<msg-1@mg.example.com>", resp.ID)
	assert.Equal(t, "Queued. Thank you.", resp.Message)
}

func TestSendMessageWithHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "<p>Hello!</p>", r.PostForm.Get("html"))
		_, _ = w.Write([]byte(`{"id":"<msg-2@mg.example.com>","message":"Queued. Thank you."}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "k", Domain: "mg.example.com"})

	_, err := client.SendMessage(context.Background(), SendMessageRequest{
		From:    "no-reply@agency.example",
		To:      "jane@example.com",
		Subject: "Hi",
		Text:    "Hello!",
		HTML:    "<p>Hello!</p>",
	})
	require.NoError(t, err)
}

func TestSendMessageAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid private key"}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "bad", Domain: "mg.example.com"})

	_, err := client.SendMessage(context.Background(), SendMessageRequest{
		From: "a@b.c", To: "d@e.f", Subject: "s", Text: "t",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "Invalid private key")
}

func TestSendMessageContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"x","message":"ok"}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "k", Domain: "mg.example.com"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.SendMessage(ctx, SendMessageRequest{From: "a@b.c", To: "d@e.f", Subject: "s", Text: "t"})
	require.Error(t, err)
}
