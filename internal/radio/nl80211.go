package radio

import (
	"os"
	"sync"

	"codeberg.org/mutker/wifimon/internal/errors"
	"codeberg.org/mutker/wifimon/internal/logger"
	"github.com/mdlayher/wifi"
)

// nl80211Client abstracts the netlink client for testing
type nl80211Client interface {
	Interfaces() ([]*wifi.Interface, error)
	BSS(ifi *wifi.Interface) (*wifi.BSS, error)
	StationInfo(ifi *wifi.Interface) ([]*wifi.StationInfo, error)
	Close() error
}

type NL80211Config struct {
	// Interface name; empty selects the first station-mode interface.
	Interface      string
	ListenInterval int
}

// NL80211Driver queries a Linux wireless interface over nl80211.
type NL80211Driver struct {
	client nl80211Client
	cfg    NL80211Config
	ifi    *wifi.Interface
	mu     sync.Mutex
	logger logger.Logger
}

func NewNL80211(cfg NL80211Config, log logger.Logger) (*NL80211Driver, error) {
	c, err := wifi.New()
	if err != nil {
		return nil, errors.New().Wrap(ErrInitFailed, err)
	}

	d := newNL80211(c, cfg, log)
	if _, err := d.iface(); err != nil {
		c.Close()
		return nil, err
	}

	return d, nil
}

func newNL80211(c nl80211Client, cfg NL80211Config, log logger.Logger) *NL80211Driver {
	return &NL80211Driver{
		client: c,
		cfg:    cfg,
		logger: log,
	}
}

// iface resolves and caches the interface to query
func (d *NL80211Driver) iface() (*wifi.Interface, error) {
	errFactory := errors.New()
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ifi != nil {
		return d.ifi, nil
	}

	ifis, err := d.client.Interfaces()
	if err != nil {
		return nil, errFactory.Wrap(ErrInterfaceList, err)
	}

	for _, ifi := range ifis {
		if d.cfg.Interface != "" {
			if ifi.Name == d.cfg.Interface {
				d.ifi = ifi
				break
			}
			continue
		}
		if ifi.Type == wifi.InterfaceTypeStation {
			d.ifi = ifi
			break
		}
	}

	if d.ifi == nil {
		return nil, errFactory.WithData(ErrInterfaceNotFound, d.cfg.Interface)
	}

	d.logger.Debug().
		Str("interface", d.ifi.Name).
		Int("index", d.ifi.Index).
		Msg("Using wireless interface")

	return d.ifi, nil
}

func (d *NL80211Driver) APInfo() (APRecord, error) {
	errFactory := errors.New()

	ifi, err := d.iface()
	if err != nil {
		return APRecord{}, err
	}

	bss, err := d.client.BSS(ifi)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return APRecord{}, errFactory.Wrap(ErrNotAssociated, err)
		}
		return APRecord{}, errFactory.Wrap(ErrAPInfoFailed, err)
	}

	// On a station interface the only peer is the access point.
	stations, err := d.client.StationInfo(ifi)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return APRecord{}, errFactory.Wrap(ErrNotAssociated, err)
		}
		return APRecord{}, errFactory.Wrap(ErrAPInfoFailed, err)
	}
	if len(stations) == 0 {
		return APRecord{}, errFactory.New(ErrNotAssociated)
	}

	return APRecord{
		SSID:  bss.SSID,
		BSSID: bss.BSSID,
		RSSI:  stations[0].Signal,
	}, nil
}

func (d *NL80211Driver) Stations() ([]Station, error) {
	errFactory := errors.New()

	ifi, err := d.iface()
	if err != nil {
		return nil, err
	}

	infos, err := d.client.StationInfo(ifi)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errFactory.Wrap(ErrNotAssociated, err)
		}
		return nil, errFactory.Wrap(ErrStationListFailed, err)
	}

	stations := make([]Station, 0, len(infos))
	for _, info := range infos {
		stations = append(stations, Station{
			HardwareAddr: info.HardwareAddr,
			RSSI:         info.Signal,
		})
	}

	return stations, nil
}

// StationConfig reports the configured listen interval. nl80211 does not
// expose it, so it is taken from the driver configuration.
func (d *NL80211Driver) StationConfig() (StationConfig, error) {
	if _, err := d.iface(); err != nil {
		return StationConfig{}, errors.New().Wrap(ErrStationConfigFailed, err)
	}

	return StationConfig{ListenInterval: d.cfg.ListenInterval}, nil
}

func (d *NL80211Driver) Close() error {
	if err := d.client.Close(); err != nil {
		return errors.New().Wrap(ErrShutdownFailed, err)
	}

	return nil
}
