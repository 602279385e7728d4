package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/medhelper/medhelper/internal/flagx"
)

var knownFlags = []string{
	"-api", "-db", "-timeout",
	"-cart-interval", "-notify-interval", "-page-size",
	"-log-format", "-log-level",
}

// parseFlags overlays cfg with command-line flags. Only the flags listed in
// knownFlags are considered; -c and -env-file are handled earlier.
func parseFlags(cfg *Config, args []string) error {
	filtered := flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("medhelper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "API base URL")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "path to the local session database")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "HTTP request timeout")
	fs.DurationVar(&cfg.CartPollInterval, "cart-interval", cfg.CartPollInterval, "cart count refresh interval")
	fs.DurationVar(&cfg.NotificationPollInterval, "notify-interval", cfg.NotificationPollInterval, "notification sync interval")
	fs.IntVar(&cfg.NotificationPageSize, "page-size", cfg.NotificationPageSize, "notifications per page")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "console or json")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	if err := fs.Parse(filtered); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
