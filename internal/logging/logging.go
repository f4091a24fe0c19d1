// Package logging provides a minimal, nil-safe leveled logger used throughout
// the snapshot engine. A nil *Logger is valid and simply discards everything
// written to it, so callers can pass nil when they don't care about engine
// diagnostics.
package logging

import (
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Level identifies the severity of a log line.
type Level uint8

// The supported logging levels, in increasing order of severity.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// colorize returns s wrapped in the level's color when writing to a terminal,
// and s unchanged otherwise.
func (l Level) colorize(s string) string {
	if !stdoutIsTerminal {
		return s
	}
	switch l {
	case LevelWarn:
		return color.YellowString(s)
	case LevelError:
		return color.RedString(s)
	default:
		return s
	}
}

// stdoutIsTerminal records whether stderr (where the root logger writes) is
// attached to a terminal, computed once at startup.
var stdoutIsTerminal = isatty.IsTerminal(os.Stderr.Fd())

// Logger is a hierarchical, nil-safe leveled logger. The zero value is not
// meaningful; use RootLogger or a Logger returned by Sublogger.
type Logger struct {
	prefix string
	level  Level
	target *log.Logger
}

// RootLogger is the logger from which all other loggers in a process derive.
// It writes to stderr at LevelInfo by default.
var RootLogger = &Logger{
	level:  LevelInfo,
	target: log.New(os.Stderr, "", log.LstdFlags),
}

// New constructs a standalone root logger writing to the given target at the
// given minimum level. Most callers should use RootLogger or Sublogger
// instead; New exists for tests that want an isolated logger.
func New(level Level, target *log.Logger) *Logger {
	return &Logger{level: level, target: target}
}

// Sublogger creates a new logger with the given name appended to this
// logger's prefix, inheriting its level and target. Calling Sublogger on a nil
// Logger returns nil.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{prefix: prefix, level: l.level, target: l.target}
}

func (l *Logger) log(level Level, message string) {
	if l == nil || l.target == nil || level < l.level {
		return
	}
	line := message
	if l.prefix != "" {
		line = "[" + l.prefix + "] " + line
	}
	l.target.Print(level.colorize(line))
}

// Debug logs a message at LevelDebug.
func (l *Logger) Debug(a ...any) { l.log(LevelDebug, fmt.Sprint(a...)) }

// Debugf logs a formatted message at LevelDebug.
func (l *Logger) Debugf(format string, a ...any) { l.log(LevelDebug, fmt.Sprintf(format, a...)) }

// Info logs a message at LevelInfo.
func (l *Logger) Info(a ...any) { l.log(LevelInfo, fmt.Sprint(a...)) }

// Infof logs a formatted message at LevelInfo.
func (l *Logger) Infof(format string, a ...any) { l.log(LevelInfo, fmt.Sprintf(format, a...)) }

// Warn logs a message at LevelWarn.
func (l *Logger) Warn(a ...any) { l.log(LevelWarn, fmt.Sprint(a...)) }

// Warnf logs a formatted message at LevelWarn.
func (l *Logger) Warnf(format string, a ...any) { l.log(LevelWarn, fmt.Sprintf(format, a...)) }

// Error logs a message at LevelError.
func (l *Logger) Error(a ...any) { l.log(LevelError, fmt.Sprint(a...)) }

// Errorf logs a formatted message at LevelError.
func (l *Logger) Errorf(format string, a ...any) { l.log(LevelError, fmt.Sprintf(format, a...)) }
