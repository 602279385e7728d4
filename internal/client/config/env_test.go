package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "local.env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"MEDHELPER_API_URL=http://from-file\nMEDHELPER_CART_POLL_INTERVAL=45s\n"), 0o600))

	t.Run("file values applied", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, parseEnv(cfg, []string{"-env-file", envFile}, nil))
		assert.Equal(t, "http://from-file", cfg.APIBaseURL)
		assert.Equal(t, 45*time.Second, cfg.CartPollInterval)
	})

	t.Run("process env wins over file", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, parseEnv(cfg, []string{"-env-file", envFile}, []string{"MEDHELPER_API_URL=http://from-env"}))
		assert.Equal(t, "http://from-env", cfg.APIBaseURL)
	})

	t.Run("unset vars keep current value", func(t *testing.T) {
		cfg := &Config{LogFormat: "json"}
		require.NoError(t, parseEnv(cfg, nil, []string{"UNRELATED=1"}))
		assert.Equal(t, "json", cfg.LogFormat)
	})

	t.Run("explicit missing file is an error", func(t *testing.T) {
		require.Error(t, parseEnv(&Config{}, []string{"-env-file", filepath.Join(dir, "none.env")}, nil))
	})

	t.Run("bad value", func(t *testing.T) {
		require.Error(t, parseEnv(&Config{}, nil, []string{"MEDHELPER_NOTIFICATION_PAGE_SIZE=lots"}))
	})
}
