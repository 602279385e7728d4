package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/medhelper/medhelper/internal/flagx"
)

const defaultEnvFile = ".env"

// parseEnv overlays cfg with MEDHELPER_* variables. Values come from environ
// and from a dotenv file (-env-file, or ./.env when present); the process
// environment wins over the file.
func parseEnv(cfg *Config, args []string, environ []string) error {
	vars, err := readEnvFile(flagx.EnvFilePath(args))
	if err != nil {
		return err
	}

	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			vars[k] = v
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Environment: vars}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func readEnvFile(path string) (map[string]string, error) {
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	vars, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return vars, nil
}
