package report

import (
	"context"
	"fmt"

	"codeberg.org/mutker/wifimon/internal/errors"
	"codeberg.org/mutker/wifimon/internal/logger"
)

const ErrInvalidSnapshot = errors.ErrorCode("report_invalid_snapshot")

// LogSink writes each snapshot as a human-readable log line
type LogSink struct {
	logger logger.Logger
}

func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{logger: log}
}

func (s *LogSink) Emit(_ context.Context, snapshot *Snapshot) error {
	if snapshot == nil {
		return errors.New().New(ErrInvalidSnapshot)
	}

	s.logger.Info().Msg("Network Parameters Collected:")
	s.logger.Info().
		Int("rssi", snapshot.RSSI).
		Uint32("latency_ms", snapshot.LatencyMs).
		Uint32("jitter_ms", snapshot.JitterMs).
		Uint32("throughput_kbps", snapshot.ThroughputKbps).
		Bool("ofdma", snapshot.OFDMAEnabled).
		Bool("twt", snapshot.TWTEnabled).
		Msg(Format(snapshot))

	return nil
}

// Format renders all six values of a snapshot on one line
func Format(s *Snapshot) string {
	return fmt.Sprintf("RSSI: %d dBm, Latency: %d ms, Jitter: %d ms, Throughput: %d kbps, OFDMA: %s, TWT: %s",
		s.RSSI, s.LatencyMs, s.JitterMs, s.ThroughputKbps,
		enabled(s.OFDMAEnabled), enabled(s.TWTEnabled))
}

func enabled(b bool) string {
	if b {
		return "Enabled"
	}
	return "Disabled"
}

// NoopSink discards snapshots
type NoopSink struct{}

func (NoopSink) Emit(_ context.Context, _ *Snapshot) error {
	return nil
}
