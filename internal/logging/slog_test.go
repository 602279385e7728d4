package logging

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jsonLines decodes every record written by a JSON slog handler.
func jsonLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec), sc.Text())
		out = append(out, rec)
	}
	return out
}

func TestSlogLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogLogger(NewJSONSlog(&buf, slog.LevelDebug))
	ctx := context.Background()

	log.Debug(ctx, "view changed", "view", "MainForm")
	log.Info(ctx, "signed in", "email", "ann@example.com")
	log.Warn(ctx, "poll failed", "watcher", "cart")
	log.Error(ctx, "session not saved", "attempt", 2)

	recs := jsonLines(t, &buf)
	require.Len(t, recs, 4)

	want := []struct {
		level, msg, key string
		val             any
	}{
		{"DEBUG", "view changed", "view", "MainForm"},
		{"INFO", "signed in", "email", "ann@example.com"},
		{"WARN", "poll failed", "watcher", "cart"},
		{"ERROR", "session not saved", "attempt", float64(2)},
	}
	for i, w := range want {
		assert.Equal(t, w.level, recs[i]["level"])
		assert.Equal(t, w.msg, recs[i]["msg"])
		assert.Equal(t, w.val, recs[i][w.key])
	}
}

func TestSlogLogger_With(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogLogger(NewJSONSlog(&buf, slog.LevelInfo)).With("component", "authflow")

	log.Info(context.Background(), "reset link opened", "uid", "MQ")

	recs := jsonLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "authflow", recs[0]["component"])
	assert.Equal(t, "MQ", recs[0]["uid"])
}

func TestNewJSONSlog_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogLogger(NewJSONSlog(&buf, slog.LevelWarn))

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")

	recs := jsonLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "shown", recs[0]["msg"])
}
