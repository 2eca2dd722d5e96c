package ping

import "codeberg.org/mutker/wifimon/internal/errors"

const (
	ErrInvalidConfig  = errors.ErrorCode("ping_invalid_config")
	ErrSessionCreate  = errors.ErrorCode("ping_session_create_failed")
	ErrSessionStart   = errors.ErrorCode("ping_session_start_failed")
	ErrAlreadyStarted = errors.ErrorCode("ping_session_already_started")
	ErrSessionClose   = errors.ErrorCode("ping_session_close_failed")
)
