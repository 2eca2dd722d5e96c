package report

import (
	"context"
	"time"

	"codeberg.org/mutker/wifimon/internal/logger"
)

// Aggregator emits one snapshot each time the required fields have all
// been received since the previous emission.
type Aggregator struct {
	report   *Report
	sink     Sink
	required Field
	now      func() time.Time
	logger   logger.Logger
}

type Option func(*Aggregator)

// WithRequired overrides the set of flags that must be received before
// a snapshot is emitted. The default is AllFields.
func WithRequired(f Field) Option {
	return func(a *Aggregator) {
		a.required = f
	}
}

// WithClock sets the timestamp source for snapshots
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

func NewAggregator(r *Report, sink Sink, log logger.Logger, opts ...Option) *Aggregator {
	if sink == nil {
		sink = NoopSink{}
	}

	a := &Aggregator{
		report:   r,
		sink:     sink,
		required: AllFields,
		now:      time.Now,
		logger:   log,
	}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Required returns the emit condition
func (a *Aggregator) Required() Field {
	return a.required
}

// CheckAndEmit emits and clears the flags if every required flag is set.
// It reports whether a snapshot was emitted.
func (a *Aggregator) CheckAndEmit(ctx context.Context) bool {
	snapshot, ok := a.report.TakeIf(a.required, a.now())
	if !ok {
		a.logger.Debug().
			Stringer("received", a.report.Received()).
			Stringer("required", a.required).
			Msg("Report incomplete, nothing to emit")
		return false
	}

	if err := a.sink.Emit(ctx, &snapshot); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to emit report")
	}

	return true
}
