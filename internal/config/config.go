package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"crmrelay/internal/constants"
	"crmrelay/internal/models"
	"crmrelay/internal/security"
)

var (
	ErrMissingCRMURL      = models.ConfigError{Message: "missing CRM API base URL"}
	ErrMissingCRMToken    = models.ConfigError{Message: "missing CRM API token"}
	ErrMissingGraphToken  = models.ConfigError{Message: "missing Meta Graph access token"}
	ErrMissingMailgunKey  = models.ConfigError{Message: "missing Mailgun API key"}
	ErrMissingTwilioSID   = models.ConfigError{Message: "missing Twilio account SID"}
	ErrMissingDBPath      = models.ConfigError{Message: "missing database path"}
	ErrMissingFromAddress = models.ConfigError{Message: "missing default email sender address"}
)

func LoadConfig(path string) (*models.Config, error) {
	// Validate config file path to prevent directory traversal
	if err := security.ValidateFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	file, err := os.ReadFile(path) // #nosec G304 - Path validated by security.ValidateFilePath above
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	applyEnvironmentOverrides(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	if err := validateSecurity(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validate(c *models.Config) error {
	if c.CRM.APIBaseURL == "" {
		c.CRM.APIBaseURL = constants.DefaultCRMBaseURL
	}
	if c.CRM.APIToken == "" {
		return ErrMissingCRMToken
	}
	if c.Meta.GraphBaseURL == "" {
		c.Meta.GraphBaseURL = constants.DefaultGraphBaseURL
	}
	if c.Meta.AccessToken == "" {
		return ErrMissingGraphToken
	}
	if c.Mailgun.APIBaseURL == "" {
		c.Mailgun.APIBaseURL = constants.DefaultMailgunBaseURL
	}
	if c.Mailgun.APIKey == "" {
		return ErrMissingMailgunKey
	}
	if c.Mailgun.FromAddress == "" {
		return ErrMissingFromAddress
	}
	if c.Twilio.APIBaseURL == "" {
		c.Twilio.APIBaseURL = constants.DefaultTwilioBaseURL
	}
	if c.Twilio.AccountSID == "" {
		return ErrMissingTwilioSID
	}
	if c.Database.Path == "" {
		return ErrMissingDBPath
	}

	if c.Server.Port <= 0 {
		c.Server.Port = constants.DefaultServerPort
	}
	if c.Server.ReadTimeoutSec <= 0 {
		c.Server.ReadTimeoutSec = constants.DefaultServerReadTimeoutSec
	}
	if c.Server.WriteTimeoutSec <= 0 {
		c.Server.WriteTimeoutSec = constants.DefaultServerWriteTimeoutSec
	}
	if c.Server.IdleTimeoutSec <= 0 {
		c.Server.IdleTimeoutSec = constants.DefaultServerIdleTimeoutSec
	}
	if c.Server.CleanupIntervalHours <= 0 {
		c.Server.CleanupIntervalHours = constants.DefaultCleanupIntervalHours
	}

	if c.RetentionDays <= 0 {
		c.RetentionDays = constants.DefaultRetentionDays
	}
	if c.Retry.InitialBackoffMs <= 0 {
		c.Retry.InitialBackoffMs = constants.DefaultRetryBackoffMs
	}
	if c.Retry.MaxBackoffMs <= 0 {
		c.Retry.MaxBackoffMs = constants.DefaultMaxBackoffMs
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = constants.DefaultMaxAttempts
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		c.RateLimit.RequestsPerMinute = constants.DefaultRateLimitPerMinute
	}

	defaultTimeout := time.Duration(constants.DefaultVendorTimeoutSec) * time.Second
	if c.CRM.Timeout <= 0 {
		c.CRM.Timeout = defaultTimeout
	}
	if c.Meta.Timeout <= 0 {
		c.Meta.Timeout = defaultTimeout
	}
	if c.Mailgun.Timeout <= 0 {
		c.Mailgun.Timeout = defaultTimeout
	}
	if c.Twilio.Timeout <= 0 {
		c.Twilio.Timeout = defaultTimeout
	}

	return nil
}

func applyEnvironmentOverrides(c *models.Config) {
	if token := os.Getenv("CRM_API_TOKEN"); token != "" {
		c.CRM.APIToken = token
	}
	if url := os.Getenv("CRM_API_URL"); url != "" {
		c.CRM.APIBaseURL = url
	}
	if token := os.Getenv("META_ACCESS_TOKEN"); token != "" {
		c.Meta.AccessToken = token
	}
	if key := os.Getenv("MAILGUN_API_KEY"); key != "" {
		c.Mailgun.APIKey = key
	}
	if sid := os.Getenv("TWILIO_ACCOUNT_SID"); sid != "" {
		c.Twilio.AccountSID = sid
	}
	if token := os.Getenv("TWILIO_AUTH_TOKEN"); token != "" {
		c.Twilio.AuthToken = token
	}
	if token := os.Getenv("CRMRELAY_ADMIN_TOKEN"); token != "" {
		c.Server.AdminToken = token
	}
	if path := os.Getenv("DB_PATH"); path != "" {
		c.Database.Path = path
	}
}

// validateSecurity performs security-specific validation
func validateSecurity(c *models.Config) error {
	isProduction := os.Getenv("CRMRELAY_ENV") == "production"

	if isProduction {
		if c.Server.AdminToken == "" {
			return models.ConfigError{Message: "admin token is required in production (set CRMRELAY_ADMIN_TOKEN environment variable)"}
		}
		if len(c.Server.AdminToken) < 32 {
			return models.ConfigError{Message: "admin token must be at least 32 characters long"}
		}
		if c.LogLevel == "debug" {
			return models.ConfigError{Message: "debug logging should not be used in production (security risk)"}
		}
	} else {
		if c.Server.AdminToken == "" {
			fmt.Fprintf(os.Stderr, "WARNING: admin token not set. Set CRMRELAY_ADMIN_TOKEN environment variable to enable the bootstrap bearer credential.\n")
		}
	}

	return nil
}
