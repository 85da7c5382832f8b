package service

import (
	"context"
	"encoding/json"
	"net/url"

	apperrors "crmrelay/internal/errors"
	"crmrelay/pkg/highlevel"

	"github.com/sirupsen/logrus"
)

// CRMService proxies contact and opportunity operations to the CRM
// vendor. Bodies pass through untouched; only the envelope and error
// translation are local.
type CRMService interface {
	CreateContact(ctx context.Context, body json.RawMessage) (json.RawMessage, error)
	GetContacts(ctx context.Context, query url.Values) (json.RawMessage, error)
	CreateOpportunity(ctx context.Context, body json.RawMessage) (json.RawMessage, error)
	GetOpportunities(ctx context.Context, query url.Values) (json.RawMessage, error)
}

type crmService struct {
	client highlevel.Client
	logger *logrus.Logger
}

func NewCRMService(client highlevel.Client, logger *logrus.Logger) CRMService {
	return &crmService{
		client: client,
		logger: logger,
	}
}

func (s *crmService) CreateContact(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	if err := validateJSONObject(body); err != nil {
		return nil, err
	}

	resp, err := s.client.CreateContact(ctx, body)
	if err != nil {
		return nil, apperrors.NewUpstreamError("highlevel", "contacts", 0, err)
	}

	s.logger.WithField(LogFieldEndpoint, "contacts").Debug("Created CRM contact")
	return resp, nil
}

func (s *crmService) GetContacts(ctx context.Context, query url.Values) (json.RawMessage, error) {
	resp, err := s.client.GetContacts(ctx, query)
	if err != nil {
		return nil, apperrors.NewUpstreamError("highlevel", "contacts", 0, err)
	}
	return resp, nil
}

func (s *crmService) CreateOpportunity(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	if err := validateJSONObject(body); err != nil {
		return nil, err
	}

	resp, err := s.client.CreateOpportunity(ctx, body)
	if err != nil {
		return nil, apperrors.NewUpstreamError("highlevel", "opportunities", 0, err)
	}

	s.logger.WithField(LogFieldEndpoint, "opportunities").Debug("Created CRM opportunity")
	return resp, nil
}

func (s *crmService) GetOpportunities(ctx context.Context, query url.Values) (json.RawMessage, error) {
	resp, err := s.client.GetOpportunities(ctx, query)
	if err != nil {
		return nil, apperrors.NewUpstreamError("highlevel", "opportunities", 0, err)
	}
	return resp, nil
}

func validateJSONObject(body json.RawMessage) error {
	if len(body) == 0 {
		return apperrors.NewValidationError("body", "request body is required")
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(body, &obj); err != nil {
		return apperrors.NewValidationError("body", "request body must be a JSON object")
	}
	return nil
}
