package errors

// Common error codes
const (
	// System errors
	ErrInternal       ErrorCode = "internal_error"
	ErrAlreadyRunning ErrorCode = "already_running"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidInterval ErrorCode = "invalid_interval"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Application errors
	ErrMonitorLoop ErrorCode = "monitor_loop_failed"
	ErrLEDLoop     ErrorCode = "led_loop_failed"

	// Operation errors
	ErrTimeout ErrorCode = "operation_timeout"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:        "Internal error occurred",
	ErrAlreadyRunning:  "Another instance is already running",
	ErrInvalidConfig:   "Invalid configuration",
	ErrBindFlags:       "Failed to bind flags",
	ErrReadConfig:      "Failed to read config file",
	ErrInvalidInterval: "Invalid interval value",
	ErrInvalidLogLevel: "Invalid log level",
	ErrMonitorLoop:     "Error in monitor loop",
	ErrLEDLoop:         "Error in LED loop",
	ErrTimeout:         "Operation timed out",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
