package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"crmrelay/internal/constants"
	apperrors "crmrelay/internal/errors"
	"crmrelay/internal/middleware"
	"crmrelay/internal/models"
	"crmrelay/internal/service"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Server struct {
	router *mux.Router
	logger *logrus.Logger
	cfg    *models.Config
	server *http.Server

	comms service.CommunicationService
	keys  service.APIKeyService
	leads service.LeadService
	crm   service.CRMService
	hub   *service.Hub

	limiter *RateLimiter
}

func NewServer(cfg *models.Config, logger *logrus.Logger, comms service.CommunicationService, keys service.APIKeyService, leads service.LeadService, crm service.CRMService, hub *service.Hub) *Server {
	requestsPerMinute := cfg.RateLimit.RequestsPerMinute
	if requestsPerMinute <= 0 {
		requestsPerMinute = constants.DefaultRateLimitPerMinute
	}

	s := &Server{
		router:  mux.NewRouter(),
		logger:  logger,
		cfg:     cfg,
		comms:   comms,
		keys:    keys,
		leads:   leads,
		crm:     crm,
		hub:     hub,
		limiter: NewRateLimiter(requestsPerMinute, time.Duration(constants.RateLimitWindowSec)*time.Second),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.ObservabilityMiddleware(s.logger))
	s.router.Use(s.verboseContextMiddleware)
	if s.logger.IsLevelEnabled(logrus.DebugLevel) {
		s.router.Use(middleware.DetailedLoggingMiddleware(s.logger, middleware.DefaultDetailedLoggingConfig()))
	}

	// Unauthenticated surface
	s.router.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics()).Methods(http.MethodGet)
	s.router.HandleFunc("/events", s.handleEvents()).Methods(http.MethodGet)

	// CRM pass-through proxy
	ghl := s.router.PathPrefix("/ghl").Subrouter()
	ghl.Use(s.rateLimitMiddleware, s.authMiddleware)
	ghl.Use(middleware.ProxyObservabilityMiddleware(s.logger, "highlevel"))
	ghl.HandleFunc("/contacts", s.handleCreateContact()).Methods(http.MethodPost)
	ghl.HandleFunc("/contacts", s.handleGetContacts()).Methods(http.MethodGet)
	ghl.HandleFunc("/opportunities", s.handleCreateOpportunity()).Methods(http.MethodPost)
	ghl.HandleFunc("/opportunities", s.handleGetOpportunities()).Methods(http.MethodGet)

	// Lead Ads proxy
	leads := s.router.PathPrefix("/leads").Subrouter()
	leads.Use(s.rateLimitMiddleware, s.authMiddleware)
	leads.Use(middleware.ProxyObservabilityMiddleware(s.logger, "meta"))
	leads.HandleFunc("", s.handleGetLeads()).Methods(http.MethodGet)
	leads.HandleFunc("/forms/{pageId}", s.handleGetForms()).Methods(http.MethodGet)

	// Communication dispatch
	comms := s.router.PathPrefix("/communications").Subrouter()
	comms.Use(s.rateLimitMiddleware, s.authMiddleware)
	comms.HandleFunc("/messages", s.handleSendMessage()).Methods(http.MethodPost)
	comms.HandleFunc("/messages", s.handleListMessages()).Methods(http.MethodGet)
	comms.HandleFunc("/messages/{id}", s.handleGetMessage()).Methods(http.MethodGet)

	// API key management; admin token only, a tenant key cannot mint keys
	keys := s.router.PathPrefix("/keys").Subrouter()
	keys.Use(s.rateLimitMiddleware, s.adminAuthMiddleware)
	keys.HandleFunc("", s.handleCreateKey()).Methods(http.MethodPost)
	keys.HandleFunc("", s.handleListKeys()).Methods(http.MethodGet)
	keys.HandleFunc("/{id}", s.handleRevokeKey()).Methods(http.MethodDelete)
}

func (s *Server) Start() error {
	port := s.cfg.Server.Port
	if port == 0 {
		port = constants.DefaultServerPort
	}

	readTimeout := s.cfg.Server.ReadTimeoutSec
	if readTimeout <= 0 {
		readTimeout = constants.DefaultServerReadTimeoutSec
	}
	writeTimeout := s.cfg.Server.WriteTimeoutSec
	if writeTimeout <= 0 {
		writeTimeout = constants.DefaultServerWriteTimeoutSec
	}
	idleTimeout := s.cfg.Server.IdleTimeoutSec
	if idleTimeout <= 0 {
		idleTimeout = constants.DefaultServerIdleTimeoutSec
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
		IdleTimeout:  time.Duration(idleTimeout) * time.Second,
	}

	s.logger.Infof("Starting server on port %d", port)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeData(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"version": Version,
		})
	}
}

// writeData writes a success payload in the {"data": ...} envelope.
func (s *Server) writeData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": data}); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

// writeError writes the uniform {"error":{message,code}} envelope with the
// status derived from the error code.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusCode(err)
	envelope := apperrors.ToEnvelope(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(envelope); encErr != nil {
		s.logger.WithError(encErr).Error("Failed to encode error response")
	}
}
