// Package logging builds the printf-style sinks the Toolhub components log to.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/phuslu/log"
)

// Logger wraps a phuslu logger with level helpers.
type Logger struct {
	l log.Logger
}

// New returns a Logger at level ("debug", "info", "warn", "error") writing
// to w in the given format ("console" or "json"). A nil w writes to stderr.
func New(level, format string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	var writer log.Writer
	switch strings.ToLower(format) {
	case "json":
		writer = &log.IOWriter{Writer: w}
	default:
		writer = &log.ConsoleWriter{Writer: w}
	}
	return &Logger{l: log.Logger{
		Level:      parseLevel(level),
		TimeFormat: "2006-01-02T15:04:05Z07:00",
		Writer:     writer,
	}}
}

func parseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{l: log.Logger{Level: log.PanicLevel + 1, Writer: &log.IOWriter{Writer: io.Discard}}}
}

func (lg *Logger) Debugf(format string, args ...interface{}) { lg.l.Debug().Msgf(format, args...) }
func (lg *Logger) Infof(format string, args ...interface{})  { lg.l.Info().Msgf(format, args...) }
func (lg *Logger) Warnf(format string, args ...interface{})  { lg.l.Warn().Msgf(format, args...) }
func (lg *Logger) Errorf(format string, args ...interface{}) { lg.l.Error().Msgf(format, args...) }

// Component returns a debug sink that tags every line with name.
func (lg *Logger) Component(name string) func(format string, args ...interface{}) {
	return func(format string, args ...interface{}) {
		lg.l.Debug().Str("component", name).Msgf(format, args...)
	}
}
