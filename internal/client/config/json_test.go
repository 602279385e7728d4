package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	dir := t.TempDir()
	path := writeTempJSON(t, dir, "flag.json", map[string]any{
		"api_base_url":               "https://api.medhelper.test",
		"notification_poll_interval": "90s",
		"request_timeout":            int64(2 * time.Second),
	})

	t.Run("loads from -config", func(t *testing.T) {
		cfg := &Config{DatabasePath: "keep.db"}
		require.NoError(t, parseJson(cfg, []string{"-config", path}))

		assert.Equal(t, "https://api.medhelper.test", cfg.APIBaseURL)
		assert.Equal(t, 90*time.Second, cfg.NotificationPollInterval)
		assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
		assert.Equal(t, "keep.db", cfg.DatabasePath, "absent fields keep their value")
	})

	t.Run("no flag leaves config untouched", func(t *testing.T) {
		cfg := &Config{APIBaseURL: "http://defaults:1234"}
		require.NoError(t, parseJson(cfg, nil))
		assert.Equal(t, "http://defaults:1234", cfg.APIBaseURL)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		require.Error(t, parseJson(&Config{}, []string{"-c", bad}))
	})

	t.Run("missing file", func(t *testing.T) {
		require.Error(t, parseJson(&Config{}, []string{"-c", filepath.Join(dir, "nope.json")}))
	})
}
