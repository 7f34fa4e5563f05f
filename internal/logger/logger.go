// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger builds the process-wide slog.Logger from
// logging.level/logging.sinks (spec.md §6): third-party library logs
// are filtered out below DEBUG, and terminal sinks get colored level
// tags.
package logger

import (
	"context"
	"io"
	"os"
	"runtime"
	"strings"

	"log/slog"
)

const modulePrefix = "github.com/kadirpekel/agentry"

// ParseLevel converts logging.level to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, nil
	}
}

// filteringHandler silences third-party logs unless the level is
// DEBUG, so a busy dependency (an MCP client, an HTTP retry loop) does
// not drown out this module's own logs at INFO and above.
type filteringHandler struct {
	handler  slog.Handler
	minLevel slog.Level
}

func (h *filteringHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.minLevel && h.handler.Enabled(ctx, level)
}

func (h *filteringHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.minLevel <= slog.LevelDebug || h.isOwnPackage(record.PC) {
		return h.handler.Handle(ctx, record)
	}
	return nil
}

func (h *filteringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &filteringHandler{handler: h.handler.WithAttrs(attrs), minLevel: h.minLevel}
}

func (h *filteringHandler) WithGroup(name string) slog.Handler {
	return &filteringHandler{handler: h.handler.WithGroup(name), minLevel: h.minLevel}
}

func (h *filteringHandler) isOwnPackage(pc uintptr) bool {
	if pc == 0 {
		return false
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return false
	}
	file, _ := fn.FileLine(pc)
	return strings.Contains(fn.Name(), modulePrefix) || strings.Contains(file, "agentry/")
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "\033[31m"
	case level >= slog.LevelWarn:
		return "\033[33m"
	case level >= slog.LevelInfo:
		return "\033[36m"
	default:
		return "\033[90m"
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// coloredTextHandler formats records as "LEVEL message key=value ..." in
// ANSI color when the underlying writer is a terminal.
type coloredTextHandler struct {
	writer   io.Writer
	useColor bool
}

func (h *coloredTextHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *coloredTextHandler) Handle(_ context.Context, record slog.Record) error {
	var buf strings.Builder

	if !record.Time.IsZero() {
		buf.WriteString(record.Time.Format("2006/01/02 15:04:05 "))
	}

	levelStr := strings.ToUpper(record.Level.String())
	if levelStr == "WARNING" {
		levelStr = "WARN"
	}
	if h.useColor {
		buf.WriteString(levelColor(record.Level))
		buf.WriteString(levelStr)
		buf.WriteString("\033[0m")
	} else {
		buf.WriteString(levelStr)
	}
	buf.WriteString(" ")
	buf.WriteString(record.Message)

	record.Attrs(func(a slog.Attr) bool {
		buf.WriteString(" ")
		buf.WriteString(a.Key)
		buf.WriteString("=")
		buf.WriteString(a.Value.String())
		return true
	})
	buf.WriteString("\n")

	_, err := h.writer.Write([]byte(buf.String()))
	return err
}

func (h *coloredTextHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *coloredTextHandler) WithGroup(string) slog.Handler      { return h }

// openSink resolves one logging.sinks entry: "stdout", "stderr", or a
// file path.
func openSink(sink string) (io.Writer, func() error, error) {
	switch sink {
	case "stdout", "":
		return os.Stdout, func() error { return nil }, nil
	case "stderr":
		return os.Stderr, func() error { return nil }, nil
	default:
		f, err := os.OpenFile(sink, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		return f, f.Close, nil
	}
}

// New builds a slog.Logger fanning out to every configured sink. The
// returned close func must be called to flush/close any file sinks.
func New(level string, sinks []string) (*slog.Logger, func() error, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	if len(sinks) == 0 {
		sinks = []string{"stdout"}
	}

	writers := make([]io.Writer, 0, len(sinks))
	closers := make([]func() error, 0, len(sinks))
	anyTerminal := false

	for _, sink := range sinks {
		w, closeFn, err := openSink(sink)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, w)
		closers = append(closers, closeFn)
		if f, ok := w.(*os.File); ok && isTerminal(f) {
			anyTerminal = true
		}
	}

	out := io.MultiWriter(writers...)
	handler := slog.Handler(&coloredTextHandler{writer: out, useColor: anyTerminal})
	handler = &filteringHandler{handler: handler, minLevel: lvl}

	closeAll := func() error {
		var firstErr error
		for _, c := range closers {
			if err := c(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	return slog.New(handler), closeAll, nil
}
