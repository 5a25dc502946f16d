// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package log provides the small leveled logger used by the coffobj
// symbol reader. The demangle library itself never logs: parsing is
// a pure function with no I/O (spec §5), so logging only exists at the
// edges that consume it.
package log

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Level is a log severity.
type Level int

// Severities, lowest first.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger logs a leveled message built from alternating key/value pairs.
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

type stdLogger struct {
	w io.Writer
}

// NewStdLogger returns a Logger that writes "time level k=v k=v" lines to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{w: w}
}

func (l *stdLogger) Log(level Level, keyvals ...interface{}) error {
	buf := fmt.Sprintf("time=%s level=%s", time.Now().Format(time.RFC3339), level)
	for i := 0; i+1 < len(keyvals); i += 2 {
		buf += fmt.Sprintf(" %v=%v", keyvals[i], keyvals[i+1])
	}
	_, err := fmt.Fprintln(l.w, buf)
	return err
}

// FilterOption configures a filtering Logger.
type FilterOption func(*filter)

// FilterLevel drops any Log call below the given level.
func FilterLevel(level Level) FilterOption {
	return func(f *filter) { f.level = level }
}

type filter struct {
	next  Logger
	level Level
}

// NewFilter wraps next with a minimum-severity filter.
func NewFilter(next Logger, opts ...FilterOption) Logger {
	f := &filter{next: next, level: LevelDebug}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *filter) Log(level Level, keyvals ...interface{}) error {
	if level < f.level {
		return nil
	}
	return f.next.Log(level, keyvals...)
}

// Helper offers printf-style convenience methods over a Logger.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger with printf-style methods.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

func (h *Helper) log(level Level, format string, args ...interface{}) {
	if h == nil || h.logger == nil {
		return
	}
	_ = h.logger.Log(level, "msg", fmt.Sprintf(format, args...))
}

// Debugf logs at debug level.
func (h *Helper) Debugf(format string, args ...interface{}) { h.log(LevelDebug, format, args...) }

// Warnf logs at warn level.
func (h *Helper) Warnf(format string, args ...interface{}) { h.log(LevelWarn, format, args...) }

// Errorf logs at error level.
func (h *Helper) Errorf(format string, args ...interface{}) { h.log(LevelError, format, args...) }

// Printf logs at info level, matching the teacher's liberal use of
// non-leveled progress messages.
func (h *Helper) Printf(format string, args ...interface{}) { h.log(LevelInfo, format, args...) }

// DefaultHelper is the error-level-only logger the teacher's File.New
// constructs whenever no custom Logger is supplied.
func DefaultHelper() *Helper {
	return NewHelper(NewFilter(NewStdLogger(os.Stderr), FilterLevel(LevelError)))
}
