package infra

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewLoggerTo_WritesConsoleAndFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Dir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Level = "warn"

	var console bytes.Buffer
	logger := NewLoggerTo(cfg, &console)
	logger.Info("dropped")
	logger.Warn("FX fetch failed", slog.String("fallback", "1440"))

	assert.False(t, logger.Enabled(t.Context(), slog.LevelInfo))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(console.Bytes(), &rec), console.String())
	assert.Equal(t, "FX fetch failed", rec["msg"])
	assert.Equal(t, cfg.App.Name, rec["app"])
	assert.Equal(t, "1440", rec["fallback"])

	data, err := os.ReadFile(filepath.Join(cfg.Logging.Dir, LogFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "FX fetch failed")
}
