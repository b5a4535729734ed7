package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/plaidlibs/internal/config"
)

func TestNew_ProductionIsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, &config.Config{Environment: "production", LogLevel: slog.LevelInfo})
	WithRequestID(log, "req-1").Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
}

func TestNew_DevelopmentIsTextAndLevelled(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, &config.Config{Environment: "development", LogLevel: slog.LevelWarn})
	log.Info("quiet")
	WithSession(log, "abc").Warn("loud")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.True(t, strings.Contains(out, "msg=loud"), out)
	assert.Contains(t, out, "session_id=abc")
}
