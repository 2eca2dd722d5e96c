package ping

import (
	"net"
	"net/netip"
	"time"
)

// PacketConn is the subset of *icmp.PacketConn a session uses
type PacketConn interface {
	WriteTo(b []byte, dst net.Addr) (int, error)
	ReadFrom(b []byte) (int, net.Addr, error)
	SetReadDeadline(t time.Time) error
	Close() error
}

// Config describes one echo session
type Config struct {
	Target   netip.Addr
	Count    int
	Interval time.Duration // start-to-start spacing of requests
	Timeout  time.Duration // per-request reply wait
	Size     int           // echo payload bytes, at least 8
	// Privileged selects raw ICMP sockets; otherwise unprivileged
	// datagram ICMP sockets are used.
	Privileged bool
}

// DefaultConfig returns the session defaults: 5 requests one second
// apart, one second timeout, 64 byte payload.
func DefaultConfig(target netip.Addr) Config {
	return Config{
		Target:   target,
		Count:    5,
		Interval: time.Second,
		Timeout:  time.Second,
		Size:     64,
	}
}

// Reply describes one answered request
type Reply struct {
	Seq  int
	From netip.Addr
	Size int
	// TimeGap is the round trip time of this request
	TimeGap time.Duration
}

// Summary is delivered once when the session ends
type Summary struct {
	Transmitted int
	Received    int
	Duration    time.Duration
}

// Callbacks are invoked from the session goroutine, never concurrently
// with each other. Any of them may be nil.
type Callbacks struct {
	OnSuccess func(Reply)
	OnTimeout func(seq int)
	OnEnd     func(Summary)
}
