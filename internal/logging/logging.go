// Package logging provides the leveled log sink consumed by the engine core.
//
// The core never decides where messages go. It talks to a Sink, which
// receives a level, a message and the source location it was raised at.
// SlogSink forwards to a *slog.Logger built by New.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Sink accepts leveled messages with their source location.
type Sink interface {
	Log(level slog.Level, msg, file string, line int)
}

// Options configures New.
type Options struct {
	Enabled bool       // If false, all output is discarded
	Level   slog.Level // Minimum level
	Format  string     // "text" (default) or "json"
	File    string     // Log file path; empty means stderr
}

// New builds a logger from opts. The returned close function releases the
// log file, if one was opened.
func New(opts Options) (*slog.Logger, func() error, error) {
	noop := func() error { return nil }
	if !opts.Enabled {
		return Discard(), noop, nil
	}

	var w io.Writer = os.Stderr
	closeFn := noop
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("logging: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: %w", err)
		}
		w = f
		closeFn = f.Close
	}

	l, err := NewWriter(w, opts.Level, opts.Format)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return l, closeFn, nil
}

// NewWriter builds a logger writing to w.
func NewWriter(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	ho := &slog.HandlerOptions{Level: level, AddSource: true}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, ho)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, ho)), nil
	default:
		return nil, fmt.Errorf("logging: unknown format %q", format)
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel accepts debug, info, warn or error (case-insensitive).
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("logging: %w", err)
	}
	return l, nil
}

// SlogSink adapts a *slog.Logger to Sink.
type SlogSink struct {
	L *slog.Logger
}

// Log emits msg with the given source location attached as attributes.
func (s SlogSink) Log(level slog.Level, msg, file string, line int) {
	if !s.L.Enabled(context.Background(), level) {
		return
	}
	s.L.LogAttrs(context.Background(), level, msg,
		slog.String("file", file),
		slog.Int("line", line),
	)
}

// Caller returns the file base name and line skip frames above the
// function calling Caller.
func Caller(skip int) (string, int) {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "???", 0
	}
	return filepath.Base(file), line
}
