package privacy

import (
	"strings"
)

// MaskPhoneNumber masks a phone number showing only the last 4 digits
// Example: "+1234567890" -> "+******7890"
func MaskPhoneNumber(phone string) string {
	if phone == "" {
		return ""
	}

	if strings.HasPrefix(phone, "+") {
		if len(phone) == 1 {
			return phone
		}
		if len(phone) <= 5 {
			return "+" + strings.Repeat("*", len(phone)-1)
		}
		return "+" + strings.Repeat("*", len(phone)-5) + phone[len(phone)-4:]
	}

	if len(phone) <= 4 {
		return strings.Repeat("*", len(phone))
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}

// MaskEmail masks the local part of an email address.
// Example: "jane.doe@example.com" -> "j*******@example.com"
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}

	at := strings.LastIndex(email, "@")
	if at <= 0 {
		// Not an address shape; mask everything but the tail.
		if len(email) <= 4 {
			return strings.Repeat("*", len(email))
		}
		return strings.Repeat("*", len(email)-4) + email[len(email)-4:]
	}

	local, domain := email[:at], email[at:]
	if len(local) == 1 {
		return "*" + domain
	}
	return local[:1] + strings.Repeat("*", len(local)-1) + domain
}

// MaskRecipient masks a message recipient, choosing the email or phone
// strategy by shape.
func MaskRecipient(recipient string) string {
	if strings.Contains(recipient, "@") {
		return MaskEmail(recipient)
	}
	return MaskPhoneNumber(recipient)
}

// MaskSecret masks an API key secret, preserving the format tag and the
// last 4 characters for correlation.
// Example: "sk_0123456789abcdef0123456789abcdef" -> "sk_****cdef"
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}

	prefix := ""
	body := secret
	if i := strings.Index(secret, "_"); i > 0 && i < len(secret)-1 {
		prefix = secret[:i+1]
		body = secret[i+1:]
	}

	if len(body) <= 4 {
		return prefix + strings.Repeat("*", len(body))
	}
	return prefix + "****" + body[len(body)-4:]
}

// MaskSensitiveFields masks known sensitive keys in a log field map.
// Unknown keys pass through unchanged.
func MaskSensitiveFields(fields map[string]interface{}) map[string]interface{} {
	if fields == nil {
		return nil
	}

	masked := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		s, ok := v.(string)
		if !ok {
			masked[k] = v
			continue
		}

		switch k {
		case "to", "from", "recipient":
			masked[k] = MaskRecipient(s)
		case "phone", "phone_number":
			masked[k] = MaskPhoneNumber(s)
		case "email", "email_address":
			masked[k] = MaskEmail(s)
		case "secret", "api_key", "token":
			masked[k] = MaskSecret(s)
		default:
			masked[k] = v
		}
	}
	return masked
}
