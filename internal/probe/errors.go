package probe

import "codeberg.org/mutker/wifimon/internal/errors"

const (
	ErrResolveFailed = errors.ErrorCode("probe_resolve_failed")
	ErrNoAddress     = errors.ErrorCode("probe_no_ipv4_address")
	ErrSessionFailed = errors.ErrorCode("probe_session_failed")
)
