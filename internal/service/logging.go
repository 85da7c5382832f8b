package service

// Standard log field names. Use these exact names so log aggregation
// stays consistent across the application.
const (
	// Core identifiers
	LogFieldRequestID = "request_id"
	LogFieldTraceID   = "trace_id"
	LogFieldMessageID = "message_id"
	LogFieldAccountID = "account_id"
	LogFieldKeyID     = "key_id"

	// Dispatch fields
	LogFieldChannel   = "channel"
	LogFieldStatus    = "status"
	LogFieldRecipient = "recipient"

	// Network fields
	LogFieldMethod     = "method"
	LogFieldURL        = "url"
	LogFieldEndpoint   = "endpoint"
	LogFieldStatusCode = "status_code"
	LogFieldRemoteIP   = "remote_ip"
	LogFieldUserAgent  = "user_agent"

	// Performance fields
	LogFieldDuration = "duration_ms"
	LogFieldSize     = "response_size"
	LogFieldCount    = "count"
)

// VerboseContextKey marks a request context as allowed to log
// sensitive detail.
type contextKey string

const VerboseContextKey contextKey = "verbose"
