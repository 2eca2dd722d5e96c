package probe

import (
	"context"
	"net/netip"

	"codeberg.org/mutker/wifimon/internal/ping"
)

// Resolver looks up host addresses. *net.Resolver satisfies it.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// Session is a started echo session owned by the prober
type Session interface {
	Start(ctx context.Context) error
	Done() <-chan struct{}
	Close() error
}

// SessionFactory creates an unstarted session
type SessionFactory func(cfg ping.Config, cbs ping.Callbacks) (Session, error)
