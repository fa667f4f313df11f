// Package logging builds the process logger: one log file per run at DEBUG
// and the console at INFO, both fed from a single *slog.Logger.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const fileTimeLayout = "2006-01-02 15:04:05.000000"

// Logger is a *slog.Logger that owns its log file.
type Logger struct {
	*slog.Logger
	file *os.File
	path string
}

// New creates dir if needed and opens a log file named after start inside it.
// Records at DEBUG and above go to the file; INFO and above also go to console.
func New(dir string, console io.Writer, start time.Time) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(dir, FileName(start, runtime.GOOS))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	h := Fanout(
		slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(console, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)
	return &Logger{Logger: slog.New(h), file: f, path: path}, nil
}

// Path returns the log file location.
func (l *Logger) Path() string { return l.path }

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		_ = l.file.Close()
		return err
	}
	return l.file.Close()
}

// FileName returns the log file name for a run started at start.
// Spaces become dashes, and on Windows colons become dots.
func FileName(start time.Time, goos string) string {
	name := strings.ReplaceAll(start.Format(fileTimeLayout)+".log", " ", "-")
	if goos == "windows" {
		name = strings.ReplaceAll(name, ":", ".")
	}
	return name
}

// Fanout returns a handler that passes each record to every handler enabled for its level.
func Fanout(handlers ...slog.Handler) slog.Handler {
	return fanout(handlers)
}

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
