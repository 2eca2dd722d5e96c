package report

import (
	"context"
	"time"
)

// Sink receives consolidated snapshots from the aggregator
type Sink interface {
	Emit(ctx context.Context, snapshot *Snapshot) error
}

// Snapshot is a consistent copy of the report taken under its lock
type Snapshot struct {
	Timestamp      time.Time
	RSSI           int // dBm
	LatencyMs      uint32
	JitterMs       uint32
	ThroughputKbps uint32
	OFDMAEnabled   bool
	TWTEnabled     bool
	Received       Field
}
