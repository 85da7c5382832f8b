package validation

import (
	"fmt"
	"time"
	"unicode"

	"crmrelay/internal/constants"
	"crmrelay/internal/errors"
)

// dateLayouts are accepted for lead query date bounds, most specific
// first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
}

// ValidatePageID enforces the Lead Ads page id contract: required, and
// numeric the way Graph object ids are. Both failures happen before
// any vendor call.
func ValidatePageID(pageID string) error {
	if pageID == "" {
		return errors.New(errors.ErrCodeMissingPageID, "pageId query parameter is required").
			WithUserMessage("pageId query parameter is required")
	}

	for _, char := range pageID {
		if !unicode.IsDigit(char) {
			return errors.New(errors.ErrCodeInvalidPageID, fmt.Sprintf("pageId must be numeric: %s", pageID)).
				WithContext("pageId", pageID).
				WithUserMessage("pageId must be numeric")
		}
	}

	return nil
}

// ParseDate parses a lead query date bound. Accepts RFC3339 or a bare
// calendar date.
func ParseDate(field, value string) (*time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, errors.New(errors.ErrCodeInvalidDate, fmt.Sprintf("invalid %s: %s", field, value)).
		WithContext("field", field).
		WithUserMessage(fmt.Sprintf("%s must be an RFC3339 timestamp or YYYY-MM-DD date", field))
}

// ValidatePhoneNumber validates E.164-ish phone number shape and length.
func ValidatePhoneNumber(phone string) error {
	if phone == "" {
		return errors.New(errors.ErrCodeInvalidInput, "phone number cannot be empty")
	}

	cleaned := phone
	if cleaned[0] == '+' {
		cleaned = cleaned[1:]
	}

	if len(cleaned) < constants.MinPhoneNumberLength {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("phone number must be at least %d digits", constants.MinPhoneNumberLength))
	}
	if len(cleaned) > constants.MaxPhoneNumberLength {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("phone number too long (max %d digits)", constants.MaxPhoneNumberLength))
	}

	for _, char := range cleaned {
		if !unicode.IsDigit(char) {
			return errors.New(errors.ErrCodeInvalidInput, "phone number must contain only digits")
		}
	}

	return nil
}

// ValidateMessageContent bounds outbound message body length.
func ValidateMessageContent(content string) error {
	if content == "" {
		return errors.New(errors.ErrCodeInvalidInput, "message content cannot be empty")
	}
	if len(content) > constants.MaxMessageContentLength {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("message content exceeds %d characters", constants.MaxMessageContentLength))
	}
	return nil
}
