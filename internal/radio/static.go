package radio

import "net"

// StaticDriver reports fixed values. It stands in for a radio on hosts
// without a wireless interface.
type StaticDriver struct {
	RSSI           int
	StationCount   int
	ListenInterval int
}

func (d *StaticDriver) APInfo() (APRecord, error) {
	return APRecord{
		SSID:  "static",
		BSSID: net.HardwareAddr{0x02, 0, 0, 0, 0, 0x01},
		RSSI:  d.RSSI,
	}, nil
}

func (d *StaticDriver) Stations() ([]Station, error) {
	stations := make([]Station, d.StationCount)
	for i := range stations {
		stations[i] = Station{
			HardwareAddr: net.HardwareAddr{0x02, 0, 0, 0, 1, byte(i)},
			RSSI:         d.RSSI,
		}
	}

	return stations, nil
}

func (d *StaticDriver) StationConfig() (StationConfig, error) {
	return StationConfig{ListenInterval: d.ListenInterval}, nil
}

func (*StaticDriver) Close() error {
	return nil
}
