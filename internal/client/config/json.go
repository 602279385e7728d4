package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/medhelper/medhelper/internal/flagx"
	"github.com/medhelper/medhelper/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Intervals use
// timex.Duration so they can be written as "30s" or as nanoseconds.
type JsonConfig struct {
	APIBaseURL               string         `json:"api_base_url"`
	DatabasePath             string         `json:"database_path"`
	RequestTimeout           timex.Duration `json:"request_timeout"`
	CartPollInterval         timex.Duration `json:"cart_poll_interval"`
	NotificationPollInterval timex.Duration `json:"notification_poll_interval"`
	NotificationPageSize     int            `json:"notification_page_size"`
	LogFormat                string         `json:"log_format"`
	LogLevel                 string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c/-config. Fields that are
// absent from the file keep their current value.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFilePath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.CartPollInterval.Duration > 0 {
		cfg.CartPollInterval = jc.CartPollInterval.Duration
	}
	if jc.NotificationPollInterval.Duration > 0 {
		cfg.NotificationPollInterval = jc.NotificationPollInterval.Duration
	}
	if jc.NotificationPageSize > 0 {
		cfg.NotificationPageSize = jc.NotificationPageSize
	}
	if jc.LogFormat != "" {
		cfg.LogFormat = jc.LogFormat
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	return nil
}
