// Package sampler runs the synchronous radio queries of a monitor cycle
// and records their results in the shared report.
package sampler

import (
	"codeberg.org/mutker/wifimon/internal/logger"
	"codeberg.org/mutker/wifimon/internal/radio"
	"codeberg.org/mutker/wifimon/internal/report"
)

type Sampler struct {
	driver radio.Driver
	report *report.Report
	logger logger.Logger
}

func New(driver radio.Driver, r *report.Report, log logger.Logger) *Sampler {
	return &Sampler{
		driver: driver,
		report: r,
		logger: log,
	}
}

// SampleSignal records the associated AP's RSSI. On failure the previous
// value and its flag are left as they were.
func (s *Sampler) SampleSignal() error {
	ap, err := s.driver.APInfo()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to get RSSI")
		return err
	}

	s.report.SetRSSI(ap.RSSI)
	s.logger.Info().Int("rssi", ap.RSSI).Msgf("RSSI: %d dBm", ap.RSSI)

	return nil
}

// SampleMultiStation treats any associated station as a sign that the
// AP schedules several clients at once (OFDMA). This is a heuristic, not
// a capability check.
func (s *Sampler) SampleMultiStation() error {
	stations, err := s.driver.Stations()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to get OFDMA status")
		return err
	}

	enabled := len(stations) > 0
	s.report.SetOFDMA(enabled)
	s.logger.Info().Int("stations", len(stations)).Msgf("OFDMA Enabled: %s", yesNo(enabled))

	return nil
}

// SamplePowerSave treats a non-zero listen interval as a configured wake
// schedule (TWT). Also a heuristic.
func (s *Sampler) SamplePowerSave() error {
	sc, err := s.driver.StationConfig()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to get TWT status")
		return err
	}

	enabled := sc.ListenInterval > 0
	s.report.SetTWT(enabled)
	s.logger.Info().Int("listen_interval", sc.ListenInterval).Msgf("TWT Enabled: %s", yesNo(enabled))

	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
