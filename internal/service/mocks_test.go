package service

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"crmrelay/internal/models"
	"crmrelay/pkg/mailgun"
	"crmrelay/pkg/meta"
	"crmrelay/pkg/twilio"
)

// Mock Mailgun client
type mockMailgunClient struct {
	lastReq   *mailgun.SendMessageRequest
	resp      *mailgun.SendMessageResponse
	err       error
	sendCalls int
}

func (m *mockMailgunClient) SendMessage(ctx context.Context, req mailgun.SendMessageRequest) (*mailgun.SendMessageResponse, error) {
	m.sendCalls++
	m.lastReq = &req
	return m.resp, m.err
}

// Mock Twilio client
type mockTwilioClient struct {
	lastReq *twilio.SendSMSRequest
	resp    *twilio.MessageResponse
	err     error
}

func (m *mockTwilioClient) SendSMS(ctx context.Context, req twilio.SendSMSRequest) (*twilio.MessageResponse, error) {
	m.lastReq = &req
	return m.resp, m.err
}

// Mock Meta Graph client
type mockMetaClient struct {
	lastRecipient string
	lastText      string
	sendResp      *meta.SendMessageResponse
	sendErr       error

	leadsCalls int
	lastFormID string
	lastSince  *time.Time
	lastUntil  *time.Time
	leadsResp  *meta.LeadsResponse
	leadsErr   error

	formsCalls int
	lastPageID string
	formsResp  *meta.FormsResponse
	formsErr   error
}

func (m *mockMetaClient) SendMessengerMessage(ctx context.Context, recipientID, text string) (*meta.SendMessageResponse, error) {
	m.lastRecipient = recipientID
	m.lastText = text
	return m.sendResp, m.sendErr
}

func (m *mockMetaClient) SendInstagramMessage(ctx context.Context, recipientID, text string) (*meta.SendMessageResponse, error) {
	m.lastRecipient = recipientID
	m.lastText = text
	return m.sendResp, m.sendErr
}

func (m *mockMetaClient) GetLeads(ctx context.Context, formID string, since, until *time.Time) (*meta.LeadsResponse, error) {
	m.leadsCalls++
	m.lastFormID = formID
	m.lastSince = since
	m.lastUntil = until
	return m.leadsResp, m.leadsErr
}

func (m *mockMetaClient) GetForms(ctx context.Context, pageID string) (*meta.FormsResponse, error) {
	m.formsCalls++
	m.lastPageID = pageID
	return m.formsResp, m.formsErr
}

// Mock HighLevel client
type mockHighLevelClient struct {
	lastBody  json.RawMessage
	lastQuery url.Values
	resp      json.RawMessage
	err       error
}

func (m *mockHighLevelClient) CreateContact(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	m.lastBody = body
	return m.resp, m.err
}

func (m *mockHighLevelClient) GetContacts(ctx context.Context, query url.Values) (json.RawMessage, error) {
	m.lastQuery = query
	return m.resp, m.err
}

func (m *mockHighLevelClient) CreateOpportunity(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	m.lastBody = body
	return m.resp, m.err
}

func (m *mockHighLevelClient) GetOpportunities(ctx context.Context, query url.Values) (json.RawMessage, error) {
	m.lastQuery = query
	return m.resp, m.err
}

// Mock message store
type mockMessageStore struct {
	saved       []*models.Message
	saveErr     error
	getResp     *models.Message
	getErr      error
	listResp    []models.Message
	listErr     error
	lastLimit   int
	lastOffset  int
	cleanupDays int
	cleanupErr  error
}

func (m *mockMessageStore) SaveMessage(ctx context.Context, msg *models.Message) error {
	m.saved = append(m.saved, msg)
	return m.saveErr
}

func (m *mockMessageStore) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	return m.getResp, m.getErr
}

func (m *mockMessageStore) ListMessages(ctx context.Context, limit, offset int) ([]models.Message, error) {
	m.lastLimit = limit
	m.lastOffset = offset
	return m.listResp, m.listErr
}

func (m *mockMessageStore) CleanupOldMessages(ctx context.Context, retentionDays int) error {
	m.cleanupDays = retentionDays
	return m.cleanupErr
}

// Mock key store
type mockKeyStore struct {
	saved     []*models.APIKey
	saveErr   error
	getResp   *models.APIKey
	getErr    error
	listResp  []models.APIKey
	listErr   error
	touched   []string
	touchErr  error
	deleted   []string
	deleteErr error
}

func (m *mockKeyStore) SaveAPIKey(ctx context.Context, key *models.APIKey) error {
	m.saved = append(m.saved, key)
	return m.saveErr
}

func (m *mockKeyStore) GetAPIKeyBySecret(ctx context.Context, secret string) (*models.APIKey, error) {
	return m.getResp, m.getErr
}

func (m *mockKeyStore) ListAPIKeysByAccount(ctx context.Context, accountID string) ([]models.APIKey, error) {
	return m.listResp, m.listErr
}

func (m *mockKeyStore) TouchAPIKey(ctx context.Context, id string, usedAt time.Time) error {
	m.touched = append(m.touched, id)
	return m.touchErr
}

func (m *mockKeyStore) DeleteAPIKey(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return m.deleteErr
}

// Simple static adapter for dispatcher tests.
type stubAdapter struct {
	lastDraft *models.MessageDraft
	result    *models.Message
}

func (s *stubAdapter) Send(ctx context.Context, draft *models.MessageDraft) *models.Message {
	s.lastDraft = draft
	return s.result
}
