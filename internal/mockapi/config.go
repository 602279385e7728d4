package mockapi

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds the settings of the development API.
type Config struct {
	Addr      string        `env:"MOCKAPI_ADDR" envDefault:":8000"`
	JWTSecret string        `env:"MOCKAPI_JWT_SECRET" envDefault:"medhelper-dev-secret"`
	AccessTTL time.Duration `env:"MOCKAPI_ACCESS_TTL" envDefault:"1h"`
	OTPTTL    time.Duration `env:"MOCKAPI_OTP_TTL" envDefault:"10m"`
	ResetTTL  time.Duration `env:"MOCKAPI_RESET_TTL" envDefault:"1h"`

	// PublicURL is the site origin reset links point to.
	PublicURL string `env:"MOCKAPI_PUBLIC_URL" envDefault:"http://localhost:3000"`

	// RedisAddr enables the resend limiter when set.
	RedisAddr     string        `env:"MOCKAPI_REDIS_ADDR"`
	RedisPassword string        `env:"MOCKAPI_REDIS_PASSWORD"`
	RedisDB       int           `env:"MOCKAPI_REDIS_DB" envDefault:"0"`
	ResendLimit   int           `env:"MOCKAPI_RESEND_LIMIT" envDefault:"3"`
	ResendWindow  time.Duration `env:"MOCKAPI_RESEND_WINDOW" envDefault:"10m"`

	LogLevel string `env:"MOCKAPI_LOG_LEVEL" envDefault:"info"`
}

// LoadConfig reads MOCKAPI_* variables from environ, over values from
// envFile (./.env when empty and present).
func LoadConfig(envFile string, environ []string) (*Config, error) {
	explicit := envFile != ""
	if !explicit {
		envFile = ".env"
	}
	vars, err := godotenv.Read(envFile)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read env file %s: %w", envFile, err)
		}
		vars = map[string]string{}
	}
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("MOCKAPI_JWT_SECRET must not be empty")
	}
	return &cfg, nil
}
