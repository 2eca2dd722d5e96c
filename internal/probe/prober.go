// Package probe measures round trip latency to a fixed host with a
// background echo session per monitor cycle.
package probe

import (
	"context"
	"net"
	"net/netip"
	"sync"
	"time"

	"codeberg.org/mutker/wifimon/internal/errors"
	"codeberg.org/mutker/wifimon/internal/logger"
	"codeberg.org/mutker/wifimon/internal/ping"
	"codeberg.org/mutker/wifimon/internal/report"
)

const resolveTimeout = 5 * time.Second

type Config struct {
	Target     string
	Count      int
	Interval   time.Duration
	Timeout    time.Duration
	Size       int
	Privileged bool
}

// Prober owns at most one live session. Each Probe call releases the
// previous session before creating the next one.
type Prober struct {
	cfg        Config
	report     *report.Report
	resolver   Resolver
	newSession SessionFactory
	logger     logger.Logger
	pingLog    logger.Logger

	mu      sync.Mutex
	current Session
}

type Option func(*Prober)

func WithResolver(r Resolver) Option {
	return func(p *Prober) {
		p.resolver = r
	}
}

func WithSessionFactory(f SessionFactory) Option {
	return func(p *Prober) {
		p.newSession = f
	}
}

func New(cfg Config, r *report.Report, log logger.Logger, opts ...Option) *Prober {
	p := &Prober{
		cfg:        cfg,
		report:     r,
		resolver:   net.DefaultResolver,
		newSession: newPingSession,
		logger:     log,
		pingLog:    log.Component("PING"),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

func newPingSession(cfg ping.Config, cbs ping.Callbacks) (Session, error) {
	s, err := ping.NewSession(cfg, cbs)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Probe resolves the target and starts a new echo session. It returns as
// soon as the session is running; results arrive through callbacks.
func (p *Prober) Probe(ctx context.Context) error {
	errFactory := errors.New()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.release()

	addr, rerr := p.resolve(ctx)
	if rerr != nil {
		p.logger.ErrorWithCode(rerr).Msgf("Failed to resolve hostname: %s", p.cfg.Target)
		return rerr
	}

	cfg := ping.Config{
		Target:     addr,
		Count:      p.cfg.Count,
		Interval:   p.cfg.Interval,
		Timeout:    p.cfg.Timeout,
		Size:       p.cfg.Size,
		Privileged: p.cfg.Privileged,
	}

	session, err := p.newSession(cfg, p.callbacks())
	if err != nil {
		werr := errFactory.Wrap(ErrSessionFailed, err)
		p.logger.ErrorWithCode(werr).Msg("Failed to create ping session")
		return werr
	}

	if err := session.Start(ctx); err != nil {
		werr := errFactory.Wrap(ErrSessionFailed, err)
		p.logger.ErrorWithCode(werr).Msg("Failed to start ping session")
		if cerr := session.Close(); cerr != nil {
			p.logger.Debug().Err(cerr).Msg("Failed to release ping session")
		}
		return werr
	}

	p.current = session
	p.logger.Debug().Str("target", addr.String()).Int("count", cfg.Count).Msg("Ping session started")

	return nil
}

// Wait blocks until the live session has sent all its probes or ctx is
// done. It returns immediately when no session is running.
func (p *Prober) Wait(ctx context.Context) error {
	p.mu.Lock()
	current := p.current
	p.mu.Unlock()

	if current == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-current.Done():
		return nil
	}
}

// Close stops and releases the live session, if any
func (p *Prober) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.release()
}

func (p *Prober) release() error {
	if p.current == nil {
		return nil
	}

	err := p.current.Close()
	if err != nil {
		p.logger.Debug().Err(err).Msg("Failed to release ping session")
	}
	p.current = nil

	return err
}

func (p *Prober) resolve(ctx context.Context) (netip.Addr, errors.Error) {
	errFactory := errors.New()

	if addr, err := netip.ParseAddr(p.cfg.Target); err == nil {
		if !addr.Is4() {
			return netip.Addr{}, errFactory.WithData(ErrNoAddress, p.cfg.Target)
		}
		return addr, nil
	}

	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	addrs, err := p.resolver.LookupNetIP(ctx, "ip4", p.cfg.Target)
	if err != nil {
		return netip.Addr{}, errFactory.Wrap(ErrResolveFailed, err)
	}

	for _, addr := range addrs {
		if addr = addr.Unmap(); addr.Is4() {
			return addr, nil
		}
	}

	return netip.Addr{}, errFactory.WithData(ErrNoAddress, p.cfg.Target)
}

func (p *Prober) callbacks() ping.Callbacks {
	return ping.Callbacks{
		// Only the most recent reply is kept; no statistic over the session.
		OnSuccess: func(r ping.Reply) {
			ms := uint32(r.TimeGap.Milliseconds())
			p.report.SetLatency(ms)
			p.logger.Info().Int("seq", r.Seq).Uint32("latency_ms", ms).Msgf("Latency: %d ms", ms)
		},
		OnTimeout: func(seq int) {
			p.logger.Warn().Int("seq", seq).Msg("Ping Timeout")
		},
		OnEnd: func(s ping.Summary) {
			p.pingLog.Info().
				Int("transmitted", s.Transmitted).
				Int("received", s.Received).
				Int64("duration_ms", s.Duration.Milliseconds()).
				Msgf("%d packets transmitted, %d received, time %d ms",
					s.Transmitted, s.Received, s.Duration.Milliseconds())
		},
	}
}
