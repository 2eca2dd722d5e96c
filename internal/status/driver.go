package status

import (
	"context"
	"time"

	"codeberg.org/mutker/wifimon/internal/clock"
	"codeberg.org/mutker/wifimon/internal/logger"
	"codeberg.org/mutker/wifimon/internal/radio"
)

const DefaultStep = 5 * time.Second

// Driver updates a Holder until ctx is canceled.
type Driver interface {
	Run(ctx context.Context) error
}

type Option func(*options)

type options struct {
	sleep clock.SleepFunc
}

func WithSleep(fn clock.SleepFunc) Option {
	return func(o *options) {
		o.sleep = fn
	}
}

func buildOptions(opts []Option) options {
	o := options{sleep: clock.Sleep}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// CycleDriver steps through Connecting, Connected and Disconnected, one
// step apart, forever. It exercises the LED without a real link.
type CycleDriver struct {
	holder *Holder
	step   time.Duration
	sleep  clock.SleepFunc
	logger logger.Logger
}

func NewCycleDriver(h *Holder, step time.Duration, log logger.Logger, opts ...Option) *CycleDriver {
	o := buildOptions(opts)

	return &CycleDriver{
		holder: h,
		step:   step,
		sleep:  o.sleep,
		logger: log,
	}
}

var cycle = [...]State{Connecting, Connected, Disconnected}

func (d *CycleDriver) Run(ctx context.Context) error {
	d.logger.Debug().Dur("step", d.step).Msg("Cycling status")

	for {
		for _, s := range cycle {
			if err := d.sleep(ctx, d.step); err != nil {
				return nil
			}
			d.holder.Store(s)
		}
	}
}

// APQuerier is the part of radio.Driver the link driver needs
type APQuerier interface {
	APInfo() (radio.APRecord, error)
}

// LinkDriver derives the status from the radio association. A failed
// query after a successful one means the link is being re-established.
type LinkDriver struct {
	holder   *Holder
	radio    APQuerier
	interval time.Duration
	sleep    clock.SleepFunc
	logger   logger.Logger

	seen bool
}

func NewLinkDriver(h *Holder, q APQuerier, interval time.Duration, log logger.Logger, opts ...Option) *LinkDriver {
	o := buildOptions(opts)

	return &LinkDriver{
		holder:   h,
		radio:    q,
		interval: interval,
		sleep:    o.sleep,
		logger:   log,
	}
}

func (d *LinkDriver) Run(ctx context.Context) error {
	for {
		d.Update()
		if err := d.sleep(ctx, d.interval); err != nil {
			return nil
		}
	}
}

// Update queries the radio once and stores the derived status.
func (d *LinkDriver) Update() State {
	var s State
	ap, err := d.radio.APInfo()
	switch {
	case err == nil:
		s = Connected
		d.seen = true
	case d.seen:
		s = Connecting
	default:
		s = Disconnected
	}

	if d.holder.Store(s) {
		ev := d.logger.Debug().Stringer("status", s)
		if err == nil {
			ev = ev.Str("ssid", ap.SSID)
		} else {
			ev = ev.Err(err)
		}
		ev.Msg("Link status changed")
	}

	return s
}

// LogChanges logs every status change seen through h until ctx is done.
func LogChanges(ctx context.Context, h *Holder, log logger.Logger) {
	ch, stop := h.Watch()
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case s := <-ch:
			log.Info().Stringer("status", s).Msgf("Status: %s", s)
		}
	}
}
