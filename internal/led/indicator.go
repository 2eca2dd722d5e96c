// Package led blinks a status pattern on a single addressable LED.
package led

import (
	"context"
	"time"

	"codeberg.org/mutker/wifimon/internal/clock"
	"codeberg.org/mutker/wifimon/internal/errors"
	"codeberg.org/mutker/wifimon/internal/logger"
	"codeberg.org/mutker/wifimon/internal/status"
)

const (
	repetitions = 5
	unknownWait = time.Second
)

// Pattern is one blink: on for Period, off for Period.
type Pattern struct {
	Color  Color
	Period time.Duration
}

var patterns = map[status.State]Pattern{
	status.Disconnected: {Color{R: 30}, 100 * time.Millisecond},
	status.Connecting:   {Color{R: 30, G: 30}, 300 * time.Millisecond},
	status.Connected:    {Color{G: 30}, 600 * time.Millisecond},
}

// PatternFor returns the blink pattern of s
func PatternFor(s status.State) (Pattern, bool) {
	p, ok := patterns[s]
	return p, ok
}

type Indicator struct {
	strip  Strip
	source Source
	sleep  clock.SleepFunc
	logger logger.Logger
}

type Option func(*Indicator)

func WithSleep(fn clock.SleepFunc) Option {
	return func(i *Indicator) {
		i.sleep = fn
	}
}

func New(strip Strip, src Source, log logger.Logger, opts ...Option) *Indicator {
	i := &Indicator{
		strip:  strip,
		source: src,
		sleep:  clock.Sleep,
		logger: log,
	}
	for _, opt := range opts {
		opt(i)
	}

	return i
}

// Setup turns the strip off
func (i *Indicator) Setup() error {
	if err := i.strip.Clear(); err != nil {
		return errors.New().Wrap(ErrSetupFailed, err)
	}

	i.logger.Debug().Msg("LED strip initialized")

	return nil
}

// Run reads the status and plays its whole pattern before reading it
// again. It returns nil when ctx is canceled and an error when a refresh
// fails. Set and clear errors are only logged.
func (i *Indicator) Run(ctx context.Context) error {
	defer i.clear()

	for ctx.Err() == nil {
		s := i.source.Load()

		p, ok := patterns[s]
		if !ok {
			i.clear()
			if err := i.sleep(ctx, unknownWait); err != nil {
				return nil
			}
			continue
		}

		if err := i.play(ctx, p); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}

	return nil
}

func (i *Indicator) play(ctx context.Context, p Pattern) error {
	errFactory := errors.New()

	for n := 0; n < repetitions; n++ {
		if err := i.strip.SetPixel(0, p.Color); err != nil {
			i.logger.Debug().Err(err).Msg("Failed to set LED pixel")
		}
		if err := i.strip.Refresh(); err != nil {
			return errFactory.Wrap(ErrRefreshFailed, err)
		}
		if err := i.sleep(ctx, p.Period); err != nil {
			return err
		}

		i.clear()
		if err := i.sleep(ctx, p.Period); err != nil {
			return err
		}
	}

	return nil
}

func (i *Indicator) clear() {
	if err := i.strip.Clear(); err != nil {
		i.logger.Debug().Err(err).Msg("Failed to clear LED strip")
	}
}
