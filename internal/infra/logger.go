package infra

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileName is the rotated log file inside Logging.Dir.
const LogFileName = "weeklypay.log"

// NewLogger returns a JSON logger writing to stdout and a rotated file.
func NewLogger(cfg *Config) *slog.Logger {
	return NewLoggerTo(cfg, os.Stdout)
}

// NewLoggerTo is NewLogger with a custom console writer.
// Every record carries the app name and version.
func NewLoggerTo(cfg *Config, console io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Logging.Level)}

	var writer io.Writer = console
	if err := os.MkdirAll(cfg.Logging.Dir, 0o755); err == nil {
		writer = io.MultiWriter(console, &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Logging.Dir, LogFileName),
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}

	return slog.New(slog.NewJSONHandler(writer, opts)).With(
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
	)
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
