package constants

// Default server configuration values
const (
	DefaultServerPort            = 8090
	DefaultServerReadTimeoutSec  = 15
	DefaultServerWriteTimeoutSec = 15
	DefaultServerIdleTimeoutSec  = 60
	DefaultGracefulShutdownSec   = 30
	ServerErrorChannelSize       = 1
)

// Default retry and retention configuration values
const (
	DefaultRetryBackoffMs        = 1000
	DefaultMaxBackoffMs          = 60000
	DefaultMaxAttempts           = 5
	DefaultDatabaseRetryAttempts = 3
	DefaultRetentionDays         = 90
	DefaultCleanupIntervalHours  = 24
)

// Default vendor client values
const (
	DefaultVendorTimeoutSec = 30
	DefaultGraphBaseURL     = "https://graph.facebook.com/v19.0"
	DefaultMailgunBaseURL   = "https://api.mailgun.net/v3"
	DefaultTwilioBaseURL    = "https://api.twilio.com/2010-04-01"
	DefaultCRMBaseURL       = "https://rest.gohighlevel.com/v1"
)

// Default rate limiting values
const (
	DefaultRateLimitPerMinute = 120
	RateLimitWindowSec        = 60
)

// API key format: "sk_" + hex prefix of a SHA-256 digest
const (
	APIKeySecretPrefix = "sk_"
	APIKeySecretHexLen = 32
	APIKeyRandomBytes  = 32
)

// At-rest encryption salts. Changing either invalidates every
// encrypted column in an existing database.
const (
	EncryptionSalt       = "crmrelay-keystore-salt-v1"
	EncryptionLookupSalt = "crmrelay-lookup-salt-v1"
)

// Validation bounds
const (
	MaxMessageContentLength = 4096
	MaxKeyNameLength        = 128
	MinPhoneNumberLength    = 7
	MaxPhoneNumberLength    = 20
)
