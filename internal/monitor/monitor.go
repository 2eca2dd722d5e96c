// Package monitor drives the periodic measurement cycle: sample the
// radio, start a latency probe, wait, then emit the report if complete.
package monitor

import (
	"context"
	"time"

	"codeberg.org/mutker/wifimon/internal/clock"
	"codeberg.org/mutker/wifimon/internal/errors"
	"codeberg.org/mutker/wifimon/internal/logger"
)

const DefaultInterval = 5 * time.Second

type Monitor struct {
	sampler  Sampler
	prober   Prober
	emitter  Emitter
	interval time.Duration
	sleep    clock.SleepFunc
	logger   logger.Logger

	cycles  uint64
	emitted uint64
}

type Option func(*Monitor)

func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		m.interval = d
	}
}

// WithSleep replaces the wait between probing and emitting.
func WithSleep(fn clock.SleepFunc) Option {
	return func(m *Monitor) {
		m.sleep = fn
	}
}

func New(s Sampler, p Prober, e Emitter, log logger.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		sampler:  s,
		prober:   p,
		emitter:  e,
		interval: DefaultInterval,
		sleep:    clock.Sleep,
		logger:   log,
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Run repeats the cycle until ctx is canceled, then releases the live
// probe session.
func (m *Monitor) Run(ctx context.Context) error {
	if m.interval <= 0 {
		return errors.New().WithData(errors.ErrInvalidInterval, m.interval)
	}

	m.logger.Info().Dur("interval", m.interval).Msg("Monitor started")
	defer m.release()

	for {
		if err := m.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				m.logger.Info().
					Uint64("cycles", m.cycles).
					Uint64("emitted", m.emitted).
					Msg("Monitor stopped")
				return nil
			}
			return errors.New().Wrap(errors.ErrMonitorLoop, err)
		}
	}
}

// RunOnce executes a single cycle. It returns ctx.Err() when the wait is
// interrupted, in which case nothing is emitted.
func (m *Monitor) RunOnce(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.cycles++

	// Failures are already logged by the samplers and the prober.
	_ = m.sampler.SampleSignal()
	_ = m.sampler.SampleMultiStation()
	_ = m.sampler.SamplePowerSave()
	_ = m.prober.Probe(ctx)

	if err := m.sleep(ctx, m.interval); err != nil {
		return err
	}

	if m.emitter.CheckAndEmit(ctx) {
		m.emitted++
	}

	return nil
}

// Close releases the live probe session
func (m *Monitor) Close() error {
	return m.prober.Close()
}

func (m *Monitor) release() {
	if err := m.Close(); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to release ping session")
	}
}
