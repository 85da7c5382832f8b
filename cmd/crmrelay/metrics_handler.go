package main

import (
	"encoding/json"
	"net/http"

	"crmrelay/internal/metrics"
	"crmrelay/internal/tracing"
)

// handleMetrics serves the in-process metrics registry as indented JSON.
// Unlike the API endpoints it returns the registry snapshot directly,
// without the data envelope, so dashboards can consume it as-is.
func (s *Server) handleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := metrics.GetAllMetrics()

		body, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			requestInfo := tracing.GetRequestInfo(r.Context())
			s.logger.WithError(err).
				WithField("request_id", requestInfo.RequestID).
				Error("Failed to encode metrics response")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		_, _ = w.Write(body)
	}
}
