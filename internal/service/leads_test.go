package service

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "crmrelay/internal/errors"
	"crmrelay/pkg/meta"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLeads(t *testing.T) {
	client := &mockMetaClient{
		leadsResp: &meta.LeadsResponse{Data: []meta.Lead{
			{ID: "lead-1", CreatedTime: "2026-03-01T10:00:00+0000"},
		}},
	}
	svc := NewLeadService(client, testLogger())

	resp, err := svc.GetLeads(context.Background(), LeadQuery{
		PageID: "123456789",
		FormID: "form-1",
	})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "lead-1", resp.Data[0].ID)
	assert.Equal(t, "form-1", client.lastFormID)
	assert.Nil(t, client.lastSince)
	assert.Nil(t, client.lastUntil)
}

func TestGetLeadsDateWindow(t *testing.T) {
	client := &mockMetaClient{leadsResp: &meta.LeadsResponse{}}
	svc := NewLeadService(client, testLogger())

	_, err := svc.GetLeads(context.Background(), LeadQuery{
		PageID:    "123456789",
		FormID:    "form-1",
		StartDate: "2026-03-01",
		EndDate:   "2026-03-31",
	})
	require.NoError(t, err)
	require.NotNil(t, client.lastSince)
	require.NotNil(t, client.lastUntil)
	assert.Equal(t, time.March, client.lastSince.Month())
	assert.Equal(t, 31, client.lastUntil.Day())
}

func TestGetLeadsValidatesBeforeVendorCall(t *testing.T) {
	tests := []struct {
		name string
		q    LeadQuery
	}{
		{"missing page id", LeadQuery{FormID: "form-1"}},
		{"malformed page id", LeadQuery{PageID: "page;drop", FormID: "form-1"}},
		{"missing form id", LeadQuery{PageID: "123456789"}},
		{"bad start date", LeadQuery{PageID: "123456789", FormID: "form-1", StartDate: "03/01/2026"}},
		{"bad end date", LeadQuery{PageID: "123456789", FormID: "form-1", EndDate: "whenever"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockMetaClient{leadsResp: &meta.LeadsResponse{}}
			svc := NewLeadService(client, testLogger())

			_, err := svc.GetLeads(context.Background(), tt.q)
			require.Error(t, err)
			assert.Equal(t, 0, client.leadsCalls, "vendor must not be called on bad input")
		})
	}
}

func TestGetLeadsVendorFailure(t *testing.T) {
	client := &mockMetaClient{leadsErr: errors.New("graph: 190 token expired")}
	svc := NewLeadService(client, testLogger())

	_, err := svc.GetLeads(context.Background(), LeadQuery{
		PageID: "123456789",
		FormID: "form-1",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeGraphAPI, apperrors.GetCode(err))
}

func TestGetForms(t *testing.T) {
	client := &mockMetaClient{
		formsResp: &meta.FormsResponse{Data: []meta.Form{
			{ID: "form-1", Name: "Spring signup", Status: "ACTIVE"},
		}},
	}
	svc := NewLeadService(client, testLogger())

	resp, err := svc.GetForms(context.Background(), "123456789")
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "123456789", client.lastPageID)
}

func TestGetFormsValidatesPageID(t *testing.T) {
	client := &mockMetaClient{formsResp: &meta.FormsResponse{}}
	svc := NewLeadService(client, testLogger())

	_, err := svc.GetForms(context.Background(), "")
	require.Error(t, err)
	_, err = svc.GetForms(context.Background(), "../etc/passwd")
	require.Error(t, err)
	assert.Equal(t, 0, client.formsCalls)
}
