// Package logging provides structured logging for the insight service
// using Go's slog package.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logging configuration.
type Config struct {
	Level   string // debug, info, warn, error
	Format  string // json, text, pretty
	Service string // service name for default attrs
	Version string // service version for default attrs

	// File enables an additional JSON log file with rotation when set.
	File FileConfig
}

// FileConfig holds rotating log file settings.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// New creates a configured slog.Logger writing to stdout, plus a rotated
// JSON file when cfg.File.Path is set.
func New(cfg Config) *slog.Logger {
	handler := newHandler(cfg, os.Stdout)

	if cfg.File.Path != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		}
		fileHandler := slog.NewJSONHandler(fileWriter, handlerOptions(cfg))
		handler = NewMultiHandler(handler, fileHandler)
	}

	return slog.New(handler).With(
		slog.String("service_name", cfg.Service),
		slog.String("service_version", cfg.Version),
	)
}

// NewWithWriter creates a configured slog.Logger with a custom writer.
// Sensitive fields are redacted in all formats.
func NewWithWriter(cfg Config, w io.Writer) *slog.Logger {
	return slog.New(newHandler(cfg, w)).With(
		slog.String("service_name", cfg.Service),
		slog.String("service_version", cfg.Version),
	)
}

func newHandler(cfg Config, w io.Writer) slog.Handler {
	switch strings.ToLower(cfg.Format) {
	case "pretty":
		pretty := charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmLevel(cfg.Level),
			ReportTimestamp: true,
		})
		return pretty
	case "text":
		return slog.NewTextHandler(w, handlerOptions(cfg))
	default:
		return slog.NewJSONHandler(w, handlerOptions(cfg))
	}
}

func handlerOptions(cfg Config) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level:       parseLevel(cfg.Level),
		ReplaceAttr: NewReplaceAttr(),
	}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func charmLevel(level string) charmlog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return charmlog.DebugLevel
	case "warn", "warning":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}
