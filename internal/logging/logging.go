// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package logging provides the structured logger shared by every
// component of the fabric simulator.
package logging

import (
	"log/slog"
	"os"
)

// Logger is the structured logging surface every core package depends on.
// It mirrors the contract the teacher's internal/metrics.Collector expects
// from its *logging.Logger field.
type Logger struct {
	inner *slog.Logger
}

// New builds a Logger writing JSON records to os.Stderr at the given level.
func New(level slog.Level) *Logger {
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &Logger{inner: slog.New(h)}
}

// Discard returns a Logger that drops everything; used in tests.
func Discard() *Logger {
	return &Logger{inner: slog.New(slog.NewTextHandler(discardWriter{}, nil))}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// With returns a child Logger with the given key/value pairs attached to
// every subsequent record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{inner: l.inner.With(args...)}
}

func (l *Logger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }
