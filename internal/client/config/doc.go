// Package config loads runtime configuration for the MedHelper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. MEDHELPER_* environment variables, also read from a dotenv file
//     (-env-file, or ./.env when it exists).
//  4. Command-line flags.
//
// Supported flags
//
//	-api string             API base URL (default http://localhost:8000)
//	-db string              SQLite file holding the session
//	-timeout duration       HTTP request timeout
//	-cart-interval duration cart count refresh (default 30s)
//	-notify-interval duration notification sync (default 1m)
//	-page-size int          notifications per page
//	-log-format string      console or json
//	-log-level string       debug, info, warn or error
//
// # JSON schema
//
//	{
//	  "api_base_url": "http://localhost:8000",
//	  "database_path": "medhelper.db",
//	  "request_timeout": "15s",
//	  "cart_poll_interval": "30s",
//	  "notification_poll_interval": "1m",
//	  "notification_page_size": 10,
//	  "log_format": "console",
//	  "log_level": "warn"
//	}
package config
