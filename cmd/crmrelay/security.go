package main

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "crmrelay/internal/errors"
	"crmrelay/internal/httputil"
	"crmrelay/internal/metrics"
	"crmrelay/internal/service"

	"github.com/sirupsen/logrus"
)

// RateLimiter implements a sliding-window per-IP request limiter.
type RateLimiter struct {
	mu       sync.RWMutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
}

// Allow reports whether a request from ip may proceed, recording it if so.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	// Drop expired timestamps for this IP
	timestamps := rl.requests[ip]
	live := timestamps[:0]
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			live = append(live, ts)
		}
	}

	if len(live) >= rl.limit || rl.limit <= 0 {
		if len(live) == 0 {
			delete(rl.requests, ip)
		} else {
			rl.requests[ip] = live
		}
		return false
	}

	rl.requests[ip] = append(live, now)

	// Opportunistic cleanup of idle IPs to bound memory
	for other, stamps := range rl.requests {
		if other == ip {
			continue
		}
		if len(stamps) > 0 && !stamps[len(stamps)-1].After(cutoff) {
			delete(rl.requests, other)
		}
	}

	return true
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := httputil.GetClientIP(r)
		if !s.limiter.Allow(ip) {
			metrics.IncrementCounter("rate_limited_requests_total", nil, "Requests rejected by the rate limiter")
			s.logger.WithFields(logrus.Fields{
				service.LogFieldRemoteIP: ip,
				service.LogFieldURL:      r.URL.Path,
			}).Warn("Rate limit exceeded")
			s.writeError(w, apperrors.New(apperrors.ErrCodeRateLimit, "rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authMiddleware accepts either a tenant API key (x-api-key header) or the
// configured admin bearer token.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.isAdminRequest(r) {
			next.ServeHTTP(w, r)
			return
		}

		secret := r.Header.Get("x-api-key")
		if secret == "" {
			s.writeError(w, apperrors.NewAuthError("missing credentials"))
			return
		}

		key, err := s.keys.ValidateAPIKey(r.Context(), secret)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if key == nil {
			s.writeError(w, apperrors.NewAuthError("invalid or expired API key"))
			return
		}

		ctx := context.WithValue(r.Context(), accountIDContextKey, key.AccountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// adminAuthMiddleware accepts the admin bearer token only. Key management
// is a bootstrap concern; tenant keys cannot mint or revoke keys.
func (s *Server) adminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.isAdminRequest(r) {
			s.writeError(w, apperrors.NewAuthError("admin token required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) isAdminRequest(r *http.Request) bool {
	token := s.cfg.Server.AdminToken
	if token == "" {
		return false
	}

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return false
	}
	presented := strings.TrimPrefix(auth, "Bearer ")
	return subtle.ConstantTimeCompare([]byte(presented), []byte(token)) == 1
}

func (s *Server) verboseContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if *verbose {
			ctx := context.WithValue(r.Context(), service.VerboseContextKey, true)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

type contextKey string

const accountIDContextKey contextKey = "account_id"
