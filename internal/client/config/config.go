package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the MedHelper CLI.
type Config struct {
	// APIBaseURL is the fixed origin every request is sent to.
	APIBaseURL string `env:"MEDHELPER_API_URL"`
	// DatabasePath is the SQLite file that keeps the session keys.
	DatabasePath string `env:"MEDHELPER_DB"`
	// RequestTimeout bounds every HTTP call.
	RequestTimeout time.Duration `env:"MEDHELPER_REQUEST_TIMEOUT"`

	CartPollInterval         time.Duration `env:"MEDHELPER_CART_POLL_INTERVAL"`
	NotificationPollInterval time.Duration `env:"MEDHELPER_NOTIFICATION_POLL_INTERVAL"`
	NotificationPageSize     int           `env:"MEDHELPER_NOTIFICATION_PAGE_SIZE"`

	// LogFormat is "console" (zap) or "json" (slog).
	LogFormat string `env:"MEDHELPER_LOG_FORMAT"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"MEDHELPER_LOG_LEVEL"`
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000"
	c.DatabasePath = "medhelper.db"
	c.RequestTimeout = 15 * time.Second
	c.CartPollInterval = 30 * time.Second
	c.NotificationPollInterval = 60 * time.Second
	c.NotificationPageSize = 10
	c.LogFormat = "console"
	c.LogLevel = "warn"
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api base url is empty")
	}
	if c.CartPollInterval <= 0 || c.NotificationPollInterval <= 0 {
		return fmt.Errorf("poll intervals must be positive")
	}
	if c.NotificationPageSize <= 0 {
		return fmt.Errorf("notification page size must be positive, got %d", c.NotificationPageSize)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// LoadConfig builds a Config from defaults, then the JSON file named by
// -c/-config, then the environment (and the dotenv file named by -env-file),
// then the remaining flags. Later sources take precedence.
func LoadConfig(args []string, environ []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, args, environ); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
