package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the log file created inside Config.Dir.
const FileName = "pingboard.log"

// Config selects log level, handler format and an optional rotating file.
type Config struct {
	Dir      string
	MaxMB    int
	MaxFiles int
	Level    string
	Format   string
}

// Logger bundles the slog logger with the file it writes to, if any.
type Logger struct {
	*slog.Logger
	file io.WriteCloser
}

// New builds a logger writing to console and, when cfg.Dir is set, to a
// size-rotated file in that directory.
func New(cfg Config, console io.Writer) (*Logger, error) {
	var (
		out  = console
		file io.WriteCloser
	)
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		file = &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, FileName),
			MaxSize:    cfg.MaxMB,
			MaxBackups: cfg.MaxFiles,
			Compress:   false,
		}
		if out == nil {
			out = file
		} else {
			out = io.MultiWriter(console, file)
		}
	}
	if out == nil {
		out = io.Discard
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return &Logger{Logger: slog.New(handler), file: file}, nil
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
