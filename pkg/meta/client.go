package meta

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Client wraps the Meta Graph API endpoints this service depends on:
// Messenger sends, Instagram direct message sends, and Lead Ads reads.
type Client interface {
	SendMessengerMessage(ctx context.Context, recipientID, text string) (*SendMessageResponse, error)
	SendInstagramMessage(ctx context.Context, recipientID, text string) (*SendMessageResponse, error)
	GetLeads(ctx context.Context, formID string, since, until *time.Time) (*LeadsResponse, error)
	GetForms(ctx context.Context, pageID string) (*FormsResponse, error)
}

type GraphClient struct {
	baseURL     string
	accessToken string
	pageID      string
	instagramID string
	client      *http.Client
	logger      *logrus.Logger
}

type Config struct {
	BaseURL     string
	AccessToken string
	PageID      string
	InstagramID string
	Timeout     time.Duration
}

func NewClient(cfg Config) Client {
	return NewClientWithLogger(cfg, nil)
}

func NewClientWithLogger(cfg Config, logger *logrus.Logger) Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}

	return &GraphClient{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		pageID:      cfg.PageID,
		instagramID: cfg.InstagramID,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// PageID returns the page identity Messenger sends originate from.
func (c *GraphClient) PageID() string {
	return c.pageID
}

// InstagramID returns the IG account identity Instagram sends
// originate from.
func (c *GraphClient) InstagramID() string {
	return c.instagramID
}

func (c *GraphClient) SendMessengerMessage(ctx context.Context, recipientID, text string) (*SendMessageResponse, error) {
	endpoint := fmt.Sprintf("%s/%s/messages", c.baseURL, url.PathEscape(c.pageID))
	return c.sendMessage(ctx, endpoint, recipientID, text)
}

func (c *GraphClient) SendInstagramMessage(ctx context.Context, recipientID, text string) (*SendMessageResponse, error) {
	endpoint := fmt.Sprintf("%s/%s/messages", c.baseURL, url.PathEscape(c.instagramID))
	return c.sendMessage(ctx, endpoint, recipientID, text)
}

func (c *GraphClient) sendMessage(ctx context.Context, endpoint, recipientID, text string) (*SendMessageResponse, error) {
	payload := SendMessageRequest{}
	payload.Recipient.ID = recipientID
	payload.Message.Text = text

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
	}).Debug("Sending Graph message request")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.graphError(resp)
	}

	var result SendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// GetLeads fetches leads submitted to a lead-gen form, optionally
// filtered to a created-time window.
func (c *GraphClient) GetLeads(ctx context.Context, formID string, since, until *time.Time) (*LeadsResponse, error) {
	params := url.Values{}
	params.Set("fields", "id,created_time,field_data,ad_id,form_id")
	if since != nil {
		filtering := fmt.Sprintf(`[{"field":"time_created","operator":"GREATER_THAN","value":%d}]`, since.Unix())
		if until != nil {
			filtering = fmt.Sprintf(`[{"field":"time_created","operator":"GREATER_THAN","value":%d},{"field":"time_created","operator":"LESS_THAN","value":%d}]`,
				since.Unix(), until.Unix())
		}
		params.Set("filtering", filtering)
	}

	endpoint := fmt.Sprintf("%s/%s/leads?%s", c.baseURL, url.PathEscape(formID), params.Encode())

	var result LeadsResponse
	if err := c.get(ctx, endpoint, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetForms lists the lead-gen forms owned by a page.
func (c *GraphClient) GetForms(ctx context.Context, pageID string) (*FormsResponse, error) {
	params := url.Values{}
	params.Set("fields", "id,name,status,created_time")

	endpoint := fmt.Sprintf("%s/%s/leadgen_forms?%s", c.baseURL, url.PathEscape(pageID), params.Encode())

	var result FormsResponse
	if err := c.get(ctx, endpoint, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *GraphClient) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.graphError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *GraphClient) graphError(resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(resp.Body)

	var errResp ErrorResponse
	if err := json.Unmarshal(bodyBytes, &errResp); err == nil && errResp.Error.Message != "" {
		return fmt.Errorf("graph API error: status %d, code %d: %s", resp.StatusCode, errResp.Error.Code, errResp.Error.Message)
	}
	return fmt.Errorf("graph API error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
}
