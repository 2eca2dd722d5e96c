package report

import (
	"sync"
	"time"
)

// Report accumulates the latest sampled link values and a received flag
// per populated field. Samplers and probe callbacks write from different
// goroutines, so every access goes through mu.
type Report struct {
	mu             sync.Mutex
	rssi           int
	latencyMs      uint32
	jitterMs       uint32
	throughputKbps uint32
	ofdmaEnabled   bool
	twtEnabled     bool
	received       Field
}

func New() *Report {
	return &Report{}
}

func (r *Report) SetRSSI(dbm int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rssi = dbm
	r.received |= FieldRSSI
}

func (r *Report) SetLatency(ms uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.latencyMs = ms
	r.received |= FieldLatency
}

func (r *Report) SetOFDMA(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ofdmaEnabled = enabled
	r.received |= FieldOFDMA
}

func (r *Report) SetTWT(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.twtEnabled = enabled
	r.received |= FieldTWT
}

// Received returns the currently set flags
func (r *Report) Received() Field {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.received
}

// Snapshot copies the current values without touching the flags
func (r *Report) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.snapshot(time.Now())
}

// TakeIf atomically checks that all required flags are set and, if so,
// returns a snapshot and clears every flag. Values are kept.
func (r *Report) TakeIf(required Field, at time.Time) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.received.Has(required) {
		return Snapshot{}, false
	}

	s := r.snapshot(at)
	r.received = 0

	return s, true
}

func (r *Report) snapshot(at time.Time) Snapshot {
	return Snapshot{
		Timestamp:      at,
		RSSI:           r.rssi,
		LatencyMs:      r.latencyMs,
		JitterMs:       r.jitterMs,
		ThroughputKbps: r.throughputKbps,
		OFDMAEnabled:   r.ofdmaEnabled,
		TWTEnabled:     r.twtEnabled,
		Received:       r.received,
	}
}
