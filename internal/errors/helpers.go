package errors

import (
	"fmt"
	"net/http"
)

// Common error creators for frequent use cases

// NewValidationError creates a validation error with field context
func NewValidationError(field, message string) *AppError {
	return New(ErrCodeValidationFailed, message).
		WithContext("field", field).
		WithUserMessage(fmt.Sprintf("Invalid %s: %s", field, message))
}

// NewConfigError creates a configuration error
func NewConfigError(key, message string) *AppError {
	return New(ErrCodeInvalidConfig, message).
		WithContext("config_key", key).
		WithUserMessage("Configuration error")
}

// NewDatabaseError creates a database error with operation context
func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabaseQuery, fmt.Sprintf("database %s failed", operation)).
		WithContext("operation", operation).
		WithUserMessage("Database operation failed")
}

// NewUpstreamError creates an error for a failed vendor API call. The
// vendor's own message is passed through to the caller.
func NewUpstreamError(vendor, endpoint string, statusCode int, err error) *AppError {
	var code ErrorCode
	switch vendor {
	case "highlevel":
		code = ErrCodeCRMAPI
	case "meta":
		code = ErrCodeGraphAPI
	case "mailgun":
		code = ErrCodeMailgunAPI
	case "twilio":
		code = ErrCodeTwilioAPI
	default:
		code = ErrCodeInternalError
	}

	appErr := Wrap(err, code, fmt.Sprintf("%s API call failed", vendor)).
		WithContext("vendor", vendor).
		WithContext("endpoint", endpoint).
		WithContext("status_code", statusCode)

	if err != nil {
		appErr.UserMessage = err.Error()
	}
	if statusCode >= 500 || statusCode == http.StatusTooManyRequests {
		appErr.Retryable = true
	}

	return appErr
}

// NewAuthError creates an authentication error
func NewAuthError(reason string) *AppError {
	return New(ErrCodeAuthentication, "authentication failed").
		WithContext("reason", reason).
		WithUserMessage("Authentication failed")
}

// NewNotFoundError creates a not found error with resource context
func NewNotFoundError(resource, identifier string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithContext("resource", resource).
		WithContext("identifier", identifier).
		WithUserMessage(fmt.Sprintf("%s not found", resource))
}

// NewUnsupportedChannelError reports a dispatcher routing miss. This is
// a programming or configuration error, not bad user input.
func NewUnsupportedChannelError(channel string) *AppError {
	return New(ErrCodeUnsupportedChannel, fmt.Sprintf("unsupported channel: %s", channel)).
		WithContext("channel", channel).
		WithUserMessage(fmt.Sprintf("Unsupported channel: %s", channel))
}

// HTTPStatusCode maps error codes to HTTP status codes. Validation
// failures are 400, auth failures 401, upstream/internal failures 500.
func HTTPStatusCode(err error) int {
	switch GetCode(err) {
	case ErrCodeValidationFailed, ErrCodeInvalidInput, ErrCodeInvalidConfig,
		ErrCodeMissingPageID, ErrCodeInvalidPageID, ErrCodeInvalidDate:
		return http.StatusBadRequest
	case ErrCodeAuthentication:
		return http.StatusUnauthorized
	case ErrCodeAuthorization:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeRateLimit:
		return http.StatusTooManyRequests
	case ErrCodeTimeout:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ErrorEnvelope is the uniform error body for the HTTP surface:
// {"error":{"message":…,"code":…}}.
type ErrorEnvelope struct {
	Error struct {
		Message string    `json:"message"`
		Code    ErrorCode `json:"code"`
	} `json:"error"`
}

// ToEnvelope converts an error into the uniform response envelope.
func ToEnvelope(err error) ErrorEnvelope {
	var envelope ErrorEnvelope
	envelope.Error.Code = GetCode(err)
	envelope.Error.Message = GetUserMessage(err)
	return envelope
}
