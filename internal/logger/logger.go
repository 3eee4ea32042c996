package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/bakchoddost/bakchoddost/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init initializes the global slog logger from the log configuration.
// When cfg.File is set, output goes to stdout and a rotating file.
func Init(cfg config.LogConfig) {
	var out io.Writer = os.Stdout
	if cfg.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		})
	}
	slog.SetDefault(slog.New(NewHandler(out, cfg.Format, cfg.Level)))
}

// NewHandler builds a json or text handler writing to w.
func NewHandler(w io.Writer, format, level string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(level),
		AddSource: true,
	}

	switch strings.ToLower(format) {
	case "json":
		return slog.NewJSONHandler(w, opts)
	default:
		// Default to text for development
		return slog.NewTextHandler(w, opts)
	}
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
