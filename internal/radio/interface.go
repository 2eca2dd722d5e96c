package radio

import "net"

// Driver answers link queries against the radio's cached state.
// None of the queries block on the air; they read what the driver
// already knows.
type Driver interface {
	// APInfo returns the record of the currently associated access point.
	APInfo() (APRecord, error)
	// Stations returns the stations currently associated with the interface.
	Stations() ([]Station, error)
	// StationConfig returns the station's configured parameters.
	StationConfig() (StationConfig, error)
	Close() error
}

// Domain types
type (
	APRecord struct {
		SSID  string
		BSSID net.HardwareAddr
		RSSI  int // dBm
	}

	Station struct {
		HardwareAddr net.HardwareAddr
		RSSI         int // dBm
	}

	StationConfig struct {
		// ListenInterval in beacon periods; zero means the station wakes
		// for every beacon.
		ListenInterval int
	}
)
