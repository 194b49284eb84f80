package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/fadedpez/blackjack/internal/types"
)

// Level represents a logging level
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var charmLevels = map[Level]log.Level{
	DEBUG: log.DebugLevel,
	INFO:  log.InfoLevel,
	WARN:  log.WarnLevel,
	ERROR: log.ErrorLevel,
}

// ParseLevel maps a config string to a Level, defaulting to INFO
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// Logger represents our custom logger
type Logger struct {
	base *log.Logger
}

// NewLogger creates a new logger instance writing to stdout
func NewLogger(level Level) *Logger {
	return NewLoggerTo(os.Stdout, level)
}

// NewLoggerTo creates a logger writing to w
func NewLoggerTo(w io.Writer, level Level) *Logger {
	base := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05.000",
		ReportCaller:    true,
		CallerOffset:    1,
		Level:           charmLevels[level],
	})
	return &Logger{base: base}
}

// Discard returns a logger that drops everything, for tests
func Discard() *Logger {
	return NewLoggerTo(io.Discard, ERROR)
}

// With returns a child logger carrying the given key/value pairs
func (l *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{base: l.base.With(keyvals...)}
}

// WithPrefix returns a child logger with a component prefix
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{base: l.base.WithPrefix(prefix)}
}

// SetLevel changes the minimum level that gets written
func (l *Logger) SetLevel(level Level) {
	l.base.SetLevel(charmLevels[level])
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.base.Debugf(format, v...)
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.base.Infof(format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	l.base.Warnf(format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.base.Errorf(format, v...)
}

// LogError logs a GameError with appropriate context
func (l *Logger) LogError(err error) {
	var gameErr *types.GameError
	if types.As(err, &gameErr) {
		keyvals := []interface{}{"code", gameErr.Code, "message", gameErr.Message}
		if gameErr.Err != nil {
			keyvals = append(keyvals, "cause", fmt.Sprint(gameErr.Err))
		}
		l.base.Error("Game error occurred", keyvals...)
	} else {
		l.Error("Unexpected error: %v", err)
	}
}

// Default logger instance
var Default = NewLogger(INFO)
