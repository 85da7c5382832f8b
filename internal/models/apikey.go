package models

import "time"

// APIKey is an access-control credential for the programmatic API
// surface. The secret is an opaque bearer token; it is returned in
// plaintext on creation and listing (see Key Service docs for the
// exposure trade-off).
type APIKey struct {
	ID          string     `json:"id" db:"id"`
	Secret      string     `json:"secret" db:"secret"`
	Name        string     `json:"name" db:"name"`
	AccountID   string     `json:"accountId" db:"account_id"`
	Permissions []string   `json:"permissions" db:"permissions"`
	LastUsed    *time.Time `json:"lastUsed,omitempty" db:"last_used"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty" db:"expires_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// Expired reports whether the key has an expiry in the past at the
// given instant. A key with no expiry never expires.
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && k.ExpiresAt.Before(now)
}
