package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"codeberg.org/mutker/wifimon/internal/errors"
	"github.com/rs/zerolog"
)

var log = zerolog.New(os.Stdout).With().Timestamp().Logger()

type LogLevel int8

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *LogEvent) Send() {
	e.Event.Send()
}

// Init initializes the global logger with a console writer
func Init(level LogLevel, isService bool) {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	// journald stamps lines itself
	if isService {
		output.TimeFormat = ""
		output.FormatTimestamp = func(_ interface{}) string {
			return ""
		}
	}

	log = zerolog.New(output).With().Timestamp().Logger()

	SetLogLevel(level)
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	zerolog.SetGlobalLevel(zerolog.Level(level))
}

// ParseLevel maps a configured level name to a LogLevel.
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToLower(name) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, errors.New().WithData(errors.ErrInvalidLogLevel, fmt.Sprintf("%q", name))
	}
}

// IsService checks if the application is running as a service
func IsService() bool {
	if _, err := os.Stdin.Stat(); err != nil {
		return true
	}
	if os.Getenv("SERVICE_NAME") != "" || os.Getenv("INVOCATION_ID") != "" {
		return true
	}
	if os.Getppid() == 1 {
		return true
	}

	return syscall.Getpgrp() == syscall.Getpid()
}

// Debug logs a debug message
func Debug() *LogEvent {
	return &LogEvent{log.Debug()}
}

// Info logs an info message
func Info() *LogEvent {
	return &LogEvent{log.Info()}
}

// Warn logs a warning message
func Warn() *LogEvent {
	return &LogEvent{log.Warn()}
}

// Error logs an error message
func Error() *LogEvent {
	return &LogEvent{log.Error()}
}

// ErrorWithCode logs an error message with a specific error code
func ErrorWithCode(err errors.Error) *LogEvent {
	return withCode(log.Error(), err)
}

// Fatal logs a fatal message and exits the program
func Fatal() *LogEvent {
	return &LogEvent{log.Fatal()}
}

// FatalWithCode logs a fatal message with a specific error code and exits the program
func FatalWithCode(err errors.Error) *LogEvent {
	return withCode(log.Fatal(), err)
}

func withCode(e *zerolog.Event, err errors.Error) *LogEvent {
	return &LogEvent{e.
		Str("error_code", string(err.Code())).
		Str("error_message", err.Error()).
		AnErr("error", err.Unwrap())}
}

// Default returns a Logger backed by the global logger.
func Default() Logger {
	return global{}
}

// New returns a Logger writing JSON lines to w, independent of the
// global logger. Mostly useful in tests.
func New(w io.Writer) Logger {
	return &instance{z: zerolog.New(w).With().Timestamp().Logger()}
}

type global struct{}

func (global) Debug() *LogEvent                         { return Debug() }
func (global) Info() *LogEvent                          { return Info() }
func (global) Warn() *LogEvent                          { return Warn() }
func (global) Error() *LogEvent                         { return Error() }
func (global) ErrorWithCode(err errors.Error) *LogEvent { return ErrorWithCode(err) }

func (global) Component(name string) Logger {
	return &instance{z: log.With().Str("component", name).Logger()}
}

type instance struct {
	z zerolog.Logger
}

func (l *instance) Debug() *LogEvent { return &LogEvent{l.z.Debug()} }
func (l *instance) Info() *LogEvent  { return &LogEvent{l.z.Info()} }
func (l *instance) Warn() *LogEvent  { return &LogEvent{l.z.Warn()} }
func (l *instance) Error() *LogEvent { return &LogEvent{l.z.Error()} }

func (l *instance) ErrorWithCode(err errors.Error) *LogEvent {
	return withCode(l.z.Error(), err)
}

func (l *instance) Component(name string) Logger {
	return &instance{z: l.z.With().Str("component", name).Logger()}
}
