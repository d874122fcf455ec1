// Package logging constructs the slog logger shared by all commands.
//
// Log records go to stderr so stdout stays clean for tables and JSON
// output. The console handler favors compact one-line records; the json
// handler is for invocations driven by timers or other tooling. When a
// log file path is configured every record is additionally appended there
// as JSON, so timer-driven runs leave a trail even with stderr discarded.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mvvid/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level   string
	Format  string
	Writer  io.Writer
	Verbose bool
	// FilePath, when set, receives a JSON copy of every record.
	FilePath string
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	if opts.Verbose {
		level = slog.LevelDebug
	}
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: levelVar})
	case "console":
		handler = newConsoleHandler(writer, levelVar)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	if opts.FilePath != "" {
		if fileHandler, err := newFileHandler(opts.FilePath, levelVar); err == nil {
			handler = fanoutHandler{handlers: []slog.Handler{handler, fileHandler}}
		}
		// An unopenable log file must not take down console logging; the
		// run proceeds with the primary handler alone.
	}

	return slog.New(handler), nil
}

// NewFromConfig creates a logger using application config defaults. With a
// configured log directory, records also land in mvvid.log underneath it.
func NewFromConfig(cfg *config.Config, verbose bool) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Verbose: verbose})
	}
	opts := Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Verbose: verbose,
	}
	if cfg.Paths.LogDir != "" {
		opts.FilePath = filepath.Join(cfg.Paths.LogDir, "mvvid.log")
	}
	return New(opts)
}

func newFileHandler(path string, level slog.Leveler) (slog.Handler, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	// The handle stays open for the process lifetime; commands are
	// one-shot, so the OS reclaims it on exit.
	return slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}), nil
}

// fanoutHandler duplicates records to every wrapped handler.
type fanoutHandler struct {
	handlers []slog.Handler
}

func (f fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return fanoutHandler{handlers: next}
}

func (f fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithGroup(name)
	}
	return fanoutHandler{handlers: next}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info", "":
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}
