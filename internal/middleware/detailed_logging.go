package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"crmrelay/internal/httputil"
	"crmrelay/internal/privacy"
	"crmrelay/internal/service"
	"crmrelay/internal/tracing"

	"github.com/sirupsen/logrus"
)

// DetailedLoggingConfig controls what gets logged
type DetailedLoggingConfig struct {
	LogRequestHeaders bool     `json:"log_request_headers"`
	LogRequestBody    bool     `json:"log_request_body"`
	MaxBodySize       int      `json:"max_body_size"`
	SensitiveHeaders  []string `json:"sensitive_headers"`
	SkipEndpoints     []string `json:"skip_endpoints"`
}

// DefaultDetailedLoggingConfig returns sensible defaults
func DefaultDetailedLoggingConfig() DetailedLoggingConfig {
	return DetailedLoggingConfig{
		LogRequestHeaders: true,
		LogRequestBody:    false, // Off by default; request bodies carry contact data
		MaxBodySize:       1024,
		SensitiveHeaders: []string{
			"authorization", "x-api-key",
			"cookie", "set-cookie", "x-auth-token",
		},
		SkipEndpoints: []string{
			"/metrics", "/health",
		},
	}
}

// DetailedLoggingMiddleware provides request-level debug logging. It is
// only useful when the logger runs at debug level.
func DetailedLoggingMiddleware(logger *logrus.Logger, config DetailedLoggingConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range config.SkipEndpoints {
				if strings.Contains(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			logRequestDetails(logger, r, config)
			next.ServeHTTP(w, r)
		})
	}
}

func logRequestDetails(logger *logrus.Logger, r *http.Request, config DetailedLoggingConfig) {
	requestInfo := tracing.GetRequestInfo(r.Context())

	fields := logrus.Fields{
		service.LogFieldRequestID: requestInfo.RequestID,
		service.LogFieldTraceID:   requestInfo.TraceID,
		service.LogFieldMethod:    r.Method,
		service.LogFieldURL:       r.URL.String(),
		service.LogFieldRemoteIP:  httputil.GetClientIP(r),
		"content_length":          r.ContentLength,
		"protocol":                r.Proto,
	}

	if config.LogRequestHeaders {
		headers := make(map[string]string)
		for name, values := range r.Header {
			if isSensitiveHeader(name, config.SensitiveHeaders) {
				headers[name] = "***MASKED***"
			} else {
				headers[name] = strings.Join(values, ", ")
			}
		}
		fields["request_headers"] = headers
	}

	if config.LogRequestBody && shouldLogBody(r) {
		if r.ContentLength > 0 && r.ContentLength <= int64(config.MaxBodySize) {
			body, err := io.ReadAll(r.Body)
			if err == nil {
				// Restore body for the actual handler
				r.Body = io.NopCloser(bytes.NewReader(body))

				maskedBody := privacy.MaskSensitiveFields(map[string]interface{}{
					"body": string(body),
				})
				fields["request_body"] = maskedBody["body"]
			}
		}
	}

	logger.WithFields(fields).Debug("Detailed request logging")
}

// isSensitiveHeader checks if a header should be masked
func isSensitiveHeader(headerName string, sensitiveHeaders []string) bool {
	headerLower := strings.ToLower(headerName)
	for _, sensitive := range sensitiveHeaders {
		if strings.ToLower(sensitive) == headerLower {
			return true
		}
	}
	return false
}

// shouldLogBody determines if we should attempt to log the request body
func shouldLogBody(r *http.Request) bool {
	contentType := r.Header.Get("Content-Type")

	textTypes := []string{
		"application/json",
		"text/",
		"application/x-www-form-urlencoded",
	}

	for _, textType := range textTypes {
		if strings.Contains(contentType, textType) {
			return true
		}
	}

	return false
}
