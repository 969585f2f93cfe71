package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Functions FunctionsConfig `yaml:"functions"`
	Mailer    MailerConfig    `yaml:"mailer"`
	SES       SESConfig       `yaml:"ses"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Storage   StorageConfig   `yaml:"storage"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Feed      FeedConfig      `yaml:"feed"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// PublicBaseURL is used to build unsubscribe links.
	PublicBaseURL string `yaml:"public_base_url"`
	// PublicRateLimit caps requests per minute per client on /api/public.
	PublicRateLimit int `yaml:"public_rate_limit_per_minute"`
	// TrustProxy takes the client address from X-Forwarded-For/X-Real-IP.
	TrustProxy bool `yaml:"trust_proxy"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	return c.Host
}

// DatabaseConfig holds the Postgres connection settings
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig holds the optional Redis used for distributed locks.
// Empty URL falls back to Postgres advisory locks.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// FunctionsConfig holds the bearer token guarding /functions/v1/*
type FunctionsConfig struct {
	Token string `yaml:"token"`
}

// MailerConfig selects the outbound mail provider
type MailerConfig struct {
	Provider    string `yaml:"provider"` // "ses", "smtp" or "log"
	FromEmail   string `yaml:"from_email"`
	FromName    string `yaml:"from_name"`
	Concurrency int    `yaml:"concurrency"`
}

// SESConfig holds AWS SES API configuration
type SESConfig struct {
	Region         string `yaml:"region"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c SESConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SMTPConfig holds SMTP relay configuration
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	TLS      bool   `yaml:"tls"`
}

// StorageConfig holds publication file storage configuration
type StorageConfig struct {
	Type       string `yaml:"type"` // "local" or "s3"
	LocalPath  string `yaml:"local_path"`
	S3Bucket   string `yaml:"s3_bucket"`
	S3Prefix   string `yaml:"s3_prefix"`
	AWSRegion  string `yaml:"aws_region"`
	AWSProfile string `yaml:"aws_profile"` // Empty string uses default credential chain (IAM role on ECS)
}

// GetAWSProfile returns the AWS profile, with environment variable override
func (c StorageConfig) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return ""
		}
		return envProfile
	}
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return ""
	}
	return c.AWSProfile
}

// SchedulerConfig holds the newsletter scheduler settings
type SchedulerConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalSeconds int  `yaml:"interval_seconds"`
	LockTTLSeconds  int  `yaml:"lock_ttl_seconds"`
}

// Interval returns the polling interval as a duration
func (c SchedulerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// LockTTL returns the send lock TTL as a duration
func (c SchedulerConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// FeedConfig holds the publication feed importer settings
type FeedConfig struct {
	TimeoutSeconds      int      `yaml:"timeout_seconds"`
	MaxRetries          int      `yaml:"max_retries"`
	URLs                []string `yaml:"urls"`
	PollIntervalMinutes int      `yaml:"poll_interval_minutes"`
	MaxConcurrent       int      `yaml:"max_concurrent"`
}

// Timeout returns the configured timeout as a duration
func (c FeedConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PollInterval returns how often configured feeds are imported
func (c FeedConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMinutes) * time.Minute
}

// AuthConfig holds Google OAuth authentication configuration
type AuthConfig struct {
	Enabled            bool   `yaml:"enabled"`
	GoogleClientID     string `yaml:"google_client_id"`
	GoogleClientSecret string `yaml:"google_client_secret"`
	AllowedDomain      string `yaml:"allowed_domain"`
	SessionSecret      string `yaml:"session_secret"`
	CookieName         string `yaml:"cookie_name"`
	CookieMaxAge       int    `yaml:"cookie_max_age"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// Redact reports whether contact data is masked in logs. Defaults to true.
func (c LoggingConfig) Redact() bool {
	return c.RedactPII == nil || *c.RedactPII
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.setDefaults()
	return &cfg, nil
}

func (cfg *Config) setDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173"}
	}
	if cfg.Server.PublicBaseURL == "" {
		cfg.Server.PublicBaseURL = "http://localhost:8080"
	}
	if cfg.Server.PublicRateLimit == 0 {
		cfg.Server.PublicRateLimit = 30
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Mailer.Provider == "" {
		cfg.Mailer.Provider = "log"
	}
	if cfg.Mailer.FromName == "" {
		cfg.Mailer.FromName = "Association"
	}
	if cfg.Mailer.Concurrency == 0 {
		cfg.Mailer.Concurrency = 8
	}
	if cfg.SES.TimeoutSeconds == 0 {
		cfg.SES.TimeoutSeconds = 30
	}
	if cfg.SES.Region == "" {
		cfg.SES.Region = "us-west-2"
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.LocalPath == "" {
		cfg.Storage.LocalPath = "./data/publications"
	}
	if cfg.Storage.AWSRegion == "" {
		cfg.Storage.AWSRegion = cfg.SES.Region
	}
	if cfg.Scheduler.IntervalSeconds == 0 {
		cfg.Scheduler.IntervalSeconds = 60
	}
	if cfg.Scheduler.LockTTLSeconds == 0 {
		cfg.Scheduler.LockTTLSeconds = 600
	}
	if cfg.Feed.TimeoutSeconds == 0 {
		cfg.Feed.TimeoutSeconds = 15
	}
	if cfg.Feed.MaxRetries == 0 {
		cfg.Feed.MaxRetries = 3
	}
	if cfg.Feed.PollIntervalMinutes == 0 {
		cfg.Feed.PollIntervalMinutes = 60
	}
	if cfg.Feed.MaxConcurrent == 0 {
		cfg.Feed.MaxConcurrent = 3
	}
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "assoc_session"
	}
	if cfg.Auth.CookieMaxAge == 0 {
		cfg.Auth.CookieMaxAge = 86400
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func (cfg *Config) applyEnv() {
	override := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	override(&cfg.Server.Host, "SERVER_HOST")
	override(&cfg.Server.PublicBaseURL, "PUBLIC_BASE_URL")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}

	// Database override (critical for deployments where config.yaml has local defaults)
	override(&cfg.Database.URL, "DATABASE_URL")
	override(&cfg.Redis.URL, "REDIS_URL")
	override(&cfg.Functions.Token, "FUNCTIONS_TOKEN")

	override(&cfg.Mailer.Provider, "MAILER_PROVIDER")
	override(&cfg.SES.AccessKey, "AWS_SES_ACCESS_KEY")
	override(&cfg.SES.SecretKey, "AWS_SES_SECRET_KEY")
	override(&cfg.SES.Region, "AWS_SES_REGION")
	override(&cfg.SMTP.Password, "SMTP_PASSWORD")

	if v := os.Getenv("TRUST_PROXY"); v != "" {
		cfg.Server.TrustProxy = v == "true" || v == "1"
	}
	if v := os.Getenv("FEED_URLS"); v != "" {
		cfg.Feed.URLs = strings.Split(v, ",")
	}

	if v := os.Getenv("STORAGE_S3_BUCKET"); v != "" {
		cfg.Storage.S3Bucket = v
		cfg.Storage.Type = "s3"
	}

	// Auth overrides
	override(&cfg.Auth.GoogleClientID, "GOOGLE_CLIENT_ID")
	override(&cfg.Auth.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
	override(&cfg.Auth.SessionSecret, "SESSION_SECRET")
	override(&cfg.Auth.AllowedDomain, "AUTH_ALLOWED_DOMAIN")

	override(&cfg.Logging.Level, "LOG_LEVEL")
}
