package main

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	apperrors "crmrelay/internal/errors"
	"crmrelay/internal/models"
	"crmrelay/internal/service"

	"github.com/gorilla/mux"
)

const maxRequestBodyBytes = 1 << 20 // 1 MiB

// --- CRM pass-through proxy ---

func (s *Server) handleCreateContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(r)
		if err != nil {
			s.writeError(w, err)
			return
		}

		result, err := s.crm.CreateContact(r.Context(), body)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeData(w, http.StatusOK, result)
	}
}

func (s *Server) handleGetContacts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := s.crm.GetContacts(r.Context(), r.URL.Query())
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeData(w, http.StatusOK, result)
	}
}

func (s *Server) handleCreateOpportunity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(r)
		if err != nil {
			s.writeError(w, err)
			return
		}

		result, err := s.crm.CreateOpportunity(r.Context(), body)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeData(w, http.StatusOK, result)
	}
}

func (s *Server) handleGetOpportunities() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := s.crm.GetOpportunities(r.Context(), r.URL.Query())
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeData(w, http.StatusOK, result)
	}
}

// --- Lead Ads proxy ---

func (s *Server) handleGetLeads() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		result, err := s.leads.GetLeads(r.Context(), service.LeadQuery{
			PageID:    query.Get("pageId"),
			FormID:    query.Get("formId"),
			StartDate: query.Get("startDate"),
			EndDate:   query.Get("endDate"),
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeData(w, http.StatusOK, result)
	}
}

func (s *Server) handleGetForms() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageID := mux.Vars(r)["pageId"]
		result, err := s.leads.GetForms(r.Context(), pageID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeData(w, http.StatusOK, result)
	}
}

// --- Communication dispatch ---

func (s *Server) handleSendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft models.MessageDraft
		if err := decodeJSON(r, &draft); err != nil {
			s.writeError(w, err)
			return
		}

		msg, err := s.comms.SendMessage(r.Context(), &draft)
		if err != nil {
			s.writeError(w, err)
			return
		}
		// Vendor failure is data: the record comes back with status
		// "failed" and HTTP 200; the caller inspects Status.
		s.writeData(w, http.StatusOK, msg)
	}
}

func (s *Server) handleListMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		messages, err := s.comms.ListMessages(r.Context(), limit, offset)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeData(w, http.StatusOK, messages)
	}
}

func (s *Server) handleGetMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		msg, err := s.comms.GetMessage(r.Context(), id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if msg == nil {
			s.writeError(w, apperrors.NewNotFoundError("message", id))
			return
		}
		s.writeData(w, http.StatusOK, msg)
	}
}

// --- API key management ---

type createKeyRequest struct {
	Name        string     `json:"name"`
	AccountID   string     `json:"accountId"`
	Permissions []string   `json:"permissions"`
	ExpiresAt   *time.Time `json:"expiresAt"`
}

func (s *Server) handleCreateKey() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createKeyRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, err)
			return
		}

		key, err := s.keys.CreateAPIKey(r.Context(), req.Name, req.AccountID, req.Permissions, req.ExpiresAt)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeData(w, http.StatusCreated, key)
	}
}

func (s *Server) handleListKeys() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := r.URL.Query().Get("accountId")
		if accountID == "" {
			s.writeError(w, apperrors.NewValidationError("accountId", "accountId query parameter is required"))
			return
		}

		keys, err := s.keys.ListAPIKeys(r.Context(), accountID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeData(w, http.StatusOK, keys)
	}
}

func (s *Server) handleRevokeKey() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		if err := s.keys.RevokeAPIKey(r.Context(), id); err != nil {
			s.writeError(w, err)
			return
		}
		// Revoking an unknown id is indistinguishable from success
		s.writeData(w, http.StatusOK, map[string]string{"id": id, "status": "revoked"})
	}
}

// --- request helpers ---

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "failed to read request body")
	}
	return body, nil
}

func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "invalid JSON body").
			WithUserMessage("Request body must be valid JSON")
	}
	return nil
}
