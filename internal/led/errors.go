package led

import "codeberg.org/mutker/wifimon/internal/errors"

const (
	ErrSetupFailed   = errors.ErrorCode("led_setup_failed")
	ErrRefreshFailed = errors.ErrorCode("led_refresh_failed")
	ErrInvalidIndex  = errors.ErrorCode("led_invalid_index")
)
