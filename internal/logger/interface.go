package logger

import "codeberg.org/mutker/wifimon/internal/errors"

// Logger defines the interface for logging operations.
type Logger interface {
	Debug() *LogEvent
	Info() *LogEvent
	Warn() *LogEvent
	Error() *LogEvent
	ErrorWithCode(err errors.Error) *LogEvent
	// Component returns a child logger tagging every event with the
	// given component name.
	Component(name string) Logger
}
