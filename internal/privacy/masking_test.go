package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPhoneNumber(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		expected string
	}{
		{name: "international", phone: "+12025551234", expected: "+*******1234"},
		{name: "without prefix", phone: "12025551234", expected: "*******1234"},
		{name: "empty", phone: "", expected: ""},
		{name: "short with prefix", phone: "+123", expected: "+***"},
		{name: "short without prefix", phone: "123", expected: "***"},
		{name: "plus only", phone: "+", expected: "+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaskPhoneNumber(tt.phone))
		})
	}
}

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		expected string
	}{
		{name: "typical address", email: "jane.doe@example.com", expected: "j*******@example.com"},
		{name: "single char local", email: "j@example.com", expected: "*@example.com"},
		{name: "two char local", email: "ab@example.com", expected: "a*@example.com"},
		{name: "empty", email: "", expected: ""},
		{name: "not an address", email: "nodomain", expected: "****main"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaskEmail(tt.email))
		})
	}
}

func TestMaskRecipient(t *testing.T) {
	assert.Equal(t, "j*******@example.com", MaskRecipient("jane.doe@example.com"))
	assert.Equal(t, "+*******1234", MaskRecipient("+12025551234"))
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		expected string
	}{
		{name: "api key secret", secret: "sk_0123456789abcdef0123456789abcdef", expected: "sk_****cdef"},
		{name: "no prefix", secret: "0123456789abcdef", expected: "****cdef"},
		{name: "short body", secret: "sk_ab", expected: "sk_**"},
		{name: "empty", secret: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaskSecret(tt.secret))
		})
	}
}

func TestMaskSensitiveFields(t *testing.T) {
	fields := map[string]interface{}{
		"to":      "jane.doe@example.com",
		"phone":   "+12025551234",
		"secret":  "sk_0123456789abcdef0123456789abcdef",
		"subject": "March campaign",
		"count":   3,
	}

	masked := MaskSensitiveFields(fields)

	assert.Equal(t, "j*******@example.com", masked["to"])
	assert.Equal(t, "+*******1234", masked["phone"])
	assert.Equal(t, "sk_****cdef", masked["secret"])
	assert.Equal(t, "March campaign", masked["subject"])
	assert.Equal(t, 3, masked["count"])
}

func TestMaskSensitiveFieldsNil(t *testing.T) {
	assert.Nil(t, MaskSensitiveFields(nil))
}
