package highlevel

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
)

// Client is a thin pass-through wrapper over the HighLevel CRM REST
// API. Request and response bodies are relayed as raw JSON; the CRM
// owns their shape.
type Client interface {
	CreateContact(ctx context.Context, body json.RawMessage) (json.RawMessage, error)
	GetContacts(ctx context.Context, query url.Values) (json.RawMessage, error)
	CreateOpportunity(ctx context.Context, body json.RawMessage) (json.RawMessage, error)
	GetOpportunities(ctx context.Context, query url.Values) (json.RawMessage, error)
}

type HighLevelClient struct {
	baseURL  string
	apiToken string
	client   *http.Client
}

type Config struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
}

func NewClient(cfg Config) Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HighLevelClient{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		apiToken: cfg.APIToken,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *HighLevelClient) CreateContact(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/contacts/", nil, body)
}

func (c *HighLevelClient) GetContacts(ctx context.Context, query url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/contacts/", query, nil)
}

func (c *HighLevelClient) CreateOpportunity(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/opportunities/", nil, body)
}

func (c *HighLevelClient) GetOpportunities(ctx context.Context, query url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/opportunities/", query, nil)
}

func (c *HighLevelClient) do(ctx context.Context, method, path string, query url.Values, body json.RawMessage) (json.RawMessage, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr ErrorResponse
		if jsonErr := json.Unmarshal(respBody, &apiErr); jsonErr == nil && apiErr.Message() != "" {
			return nil, fmt.Errorf("highlevel API error: status %d: %s", resp.StatusCode, apiErr.Message())
		}
		return nil, fmt.Errorf("highlevel API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	return json.RawMessage(respBody), nil
}
