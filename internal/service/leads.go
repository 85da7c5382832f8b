package service

import (
	"context"
	"time"

	apperrors "crmrelay/internal/errors"
	"crmrelay/internal/validation"
	"crmrelay/pkg/meta"

	"github.com/sirupsen/logrus"
)

// LeadQuery is the inbound query for the Lead Ads proxy, still in its
// raw string form. Validation happens here, before any vendor call.
type LeadQuery struct {
	PageID    string
	FormID    string
	StartDate string
	EndDate   string
}

// LeadService proxies Lead Ads reads to the Graph API.
type LeadService interface {
	GetLeads(ctx context.Context, q LeadQuery) (*meta.LeadsResponse, error)
	GetForms(ctx context.Context, pageID string) (*meta.FormsResponse, error)
}

type leadService struct {
	client meta.Client
	logger *logrus.Logger
}

func NewLeadService(client meta.Client, logger *logrus.Logger) LeadService {
	return &leadService{
		client: client,
		logger: logger,
	}
}

func (s *leadService) GetLeads(ctx context.Context, q LeadQuery) (*meta.LeadsResponse, error) {
	if err := validation.ValidatePageID(q.PageID); err != nil {
		return nil, err
	}
	if q.FormID == "" {
		return nil, apperrors.NewValidationError("formId", "form id is required")
	}

	since, err := parseOptionalDate("startDate", q.StartDate)
	if err != nil {
		return nil, err
	}
	until, err := parseOptionalDate("endDate", q.EndDate)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.GetLeads(ctx, q.FormID, since, until)
	if err != nil {
		return nil, apperrors.NewUpstreamError("meta", "leads", 0, err)
	}

	s.logger.WithFields(logrus.Fields{
		"page_id":     q.PageID,
		"form_id":     q.FormID,
		LogFieldCount: len(resp.Data),
	}).Debug("Fetched leads")

	return resp, nil
}

func (s *leadService) GetForms(ctx context.Context, pageID string) (*meta.FormsResponse, error) {
	if err := validation.ValidatePageID(pageID); err != nil {
		return nil, err
	}

	resp, err := s.client.GetForms(ctx, pageID)
	if err != nil {
		return nil, apperrors.NewUpstreamError("meta", "leadgen_forms", 0, err)
	}
	return resp, nil
}

func parseOptionalDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := validation.ParseDate(field, value)
	if err != nil {
		return nil, err
	}
	return t, nil
}
