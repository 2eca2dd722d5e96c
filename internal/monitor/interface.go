package monitor

import "context"

// Sampler runs the synchronous radio queries of a cycle. Failures are
// logged by the sampler and never abort the cycle.
type Sampler interface {
	SampleSignal() error
	SampleMultiStation() error
	SamplePowerSave() error
}

// Prober starts a background latency measurement.
type Prober interface {
	Probe(ctx context.Context) error
	Close() error
}

// Emitter emits the report once it is complete.
type Emitter interface {
	CheckAndEmit(ctx context.Context) bool
}
