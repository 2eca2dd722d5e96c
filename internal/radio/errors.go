package radio

import (
	"codeberg.org/mutker/wifimon/internal/errors"
)

const (
	// Initialization and Lifecycle Errors
	ErrInitFailed     = errors.ErrorCode("radio_init_failed")
	ErrShutdownFailed = errors.ErrorCode("radio_shutdown_failed")

	// Discovery Errors
	ErrInterfaceNotFound = errors.ErrorCode("radio_interface_not_found")
	ErrInterfaceList     = errors.ErrorCode("radio_interface_list_failed")

	// Query Errors
	ErrNotAssociated       = errors.ErrorCode("radio_not_associated")
	ErrAPInfoFailed        = errors.ErrorCode("radio_ap_info_failed")
	ErrStationListFailed   = errors.ErrorCode("radio_station_list_failed")
	ErrStationConfigFailed = errors.ErrorCode("radio_station_config_failed")
)
