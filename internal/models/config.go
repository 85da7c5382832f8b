package models

import "time"

// Config holds the application configuration
type Config struct {
	Server        ServerConfig    `json:"server"`
	CRM           CRMConfig       `json:"crm"`
	Meta          MetaConfig      `json:"meta"`
	Mailgun       MailgunConfig   `json:"mailgun"`
	Twilio        TwilioConfig    `json:"twilio"`
	Database      DatabaseConfig  `json:"database"`
	Retry         RetryConfig     `json:"retry"`
	Tracing       TracingConfig   `json:"tracing"`
	RateLimit     RateLimitConfig `json:"rateLimit"`
	LogLevel      string          `json:"log_level"`
	RetentionDays int             `json:"retentionDays"`
}

// ServerConfig holds HTTP ingress related configurations
type ServerConfig struct {
	Port                 int    `json:"port"`
	AdminToken           string `json:"admin_token"`
	ReadTimeoutSec       int    `json:"readTimeoutSec"`
	WriteTimeoutSec      int    `json:"writeTimeoutSec"`
	IdleTimeoutSec       int    `json:"idleTimeoutSec"`
	CleanupIntervalHours int    `json:"cleanupIntervalHours"`
}

// CRMConfig holds the CRM (HighLevel) REST API configuration
type CRMConfig struct {
	APIBaseURL string        `json:"api_base_url"`
	APIToken   string        `json:"api_token"`
	LocationID string        `json:"location_id"`
	Timeout    time.Duration `json:"timeout_ms"`
}

// MetaConfig holds Meta Graph API configuration shared by the
// Messenger, Instagram and Lead Ads clients.
type MetaConfig struct {
	GraphBaseURL string        `json:"graph_base_url"`
	AccessToken  string        `json:"access_token"`
	PageID       string        `json:"page_id"`
	InstagramID  string        `json:"instagram_id"`
	Timeout      time.Duration `json:"timeout_ms"`
}

// MailgunConfig holds the transactional email provider configuration
type MailgunConfig struct {
	APIBaseURL  string        `json:"api_base_url"`
	APIKey      string        `json:"api_key"`
	Domain      string        `json:"domain"`
	FromAddress string        `json:"from_address"`
	Timeout     time.Duration `json:"timeout_ms"`
}

// TwilioConfig holds the SMS provider configuration
type TwilioConfig struct {
	APIBaseURL string        `json:"api_base_url"`
	AccountSID string        `json:"account_sid"`
	AuthToken  string        `json:"auth_token"`
	FromNumber string        `json:"from_number"`
	Timeout    time.Duration `json:"timeout_ms"`
}

// DatabaseConfig holds database related configurations
type DatabaseConfig struct {
	Path string `json:"path"`
}

// RetryConfig holds startup retry related configurations
type RetryConfig struct {
	InitialBackoffMs int `json:"initialBackoffMs"`
	MaxBackoffMs     int `json:"maxBackoffMs"`
	MaxAttempts      int `json:"maxAttempts"`
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	ServiceName    string  `json:"service_name"`
	ServiceVersion string  `json:"service_version"`
	Environment    string  `json:"environment"`
	OTLPEndpoint   string  `json:"otlp_endpoint"`
	SampleRate     float64 `json:"sample_rate"`
	Enabled        bool    `json:"enabled"`
	UseStdout      bool    `json:"use_stdout"`
}

// RateLimitConfig holds per-client request limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `json:"requestsPerMinute"`
}

type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
