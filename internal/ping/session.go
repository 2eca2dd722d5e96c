// Package ping runs bounded ICMP echo sessions whose results are
// delivered through callbacks.
package ping

import (
	"bytes"
	"context"
	"encoding/binary"
	"math/rand"
	"net"
	"net/netip"
	"sync"
	"time"

	"codeberg.org/mutker/wifimon/internal/errors"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const (
	protocolICMP = 1
	tokenSize    = 8
)

// Session sends Count echo requests to a single target. It is created,
// started once and must be closed to release its socket.
type Session struct {
	cfg   Config
	cbs   Callbacks
	conn  PacketConn
	id    int
	token []byte

	mu      sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc
	done    chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// NewSession validates cfg and opens the ICMP socket
func NewSession(cfg Config, cbs Callbacks) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	network := "udp4"
	if cfg.Privileged {
		network = "ip4:icmp"
	}

	conn, err := icmp.ListenPacket(network, "0.0.0.0")
	if err != nil {
		return nil, errors.New().Wrap(ErrSessionCreate, err)
	}

	return newSession(cfg, cbs, conn), nil
}

func newSession(cfg Config, cbs Callbacks, conn PacketConn) *Session {
	//nolint:gosec // identifiers only need to differ between sessions
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	token := make([]byte, tokenSize)
	binary.BigEndian.PutUint64(token, rnd.Uint64())

	return &Session{
		cfg:   cfg,
		cbs:   cbs,
		conn:  conn,
		id:    rnd.Intn(0xffff),
		token: token,
		done:  make(chan struct{}),
	}
}

func (c Config) validate() error {
	errFactory := errors.New()

	switch {
	case !c.Target.IsValid() || !c.Target.Is4():
		return errFactory.WithData(ErrInvalidConfig, "target must be an IPv4 address")
	case c.Count <= 0:
		return errFactory.WithData(ErrInvalidConfig, "count must be positive")
	case c.Interval <= 0 || c.Timeout <= 0:
		return errFactory.WithData(ErrInvalidConfig, "interval and timeout must be positive")
	case c.Size < tokenSize:
		return errFactory.WithData(ErrInvalidConfig, "payload too small")
	}

	return nil
}

// Start launches the session in its own goroutine and returns at once
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errors.New().New(ErrAlreadyStarted)
	}
	if s.closed {
		return errors.New().WithData(ErrSessionStart, "session closed")
	}
	if ctx.Err() != nil {
		return errors.New().Wrap(ErrSessionStart, ctx.Err())
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.started = true
	go s.run(ctx)

	return nil
}

// Done is closed when the session has delivered its summary
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close stops a running session, waits for it to finish and releases
// the socket. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		started := s.started
		s.closed = true
		if s.cancel != nil {
			s.cancel()
		}
		s.mu.Unlock()

		// unblocks a pending read
		if err := s.conn.Close(); err != nil {
			s.closeErr = errors.New().Wrap(ErrSessionClose, err)
		}

		if started {
			<-s.done
		}
	})

	return s.closeErr
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	var (
		start       = time.Now()
		transmitted int
		received    int
		buf         = make([]byte, 1500)
	)

	for seq := 1; seq <= s.cfg.Count; seq++ {
		slot := start.Add(time.Duration(seq-1) * s.cfg.Interval)
		if !sleepUntil(ctx, slot) {
			break
		}

		sentAt := time.Now()
		if err := s.send(seq); err != nil {
			if ctx.Err() != nil {
				break
			}
			s.timeout(seq)
			continue
		}
		transmitted++

		reply, ok := s.await(seq, sentAt, buf)
		if ctx.Err() != nil {
			break
		}
		if !ok {
			s.timeout(seq)
			continue
		}

		received++
		if s.cbs.OnSuccess != nil {
			s.cbs.OnSuccess(reply)
		}
	}

	if s.cbs.OnEnd != nil {
		s.cbs.OnEnd(Summary{
			Transmitted: transmitted,
			Received:    received,
			Duration:    time.Since(start),
		})
	}
}

func (s *Session) timeout(seq int) {
	if s.cbs.OnTimeout != nil {
		s.cbs.OnTimeout(seq)
	}
}

func (s *Session) send(seq int) error {
	payload := make([]byte, s.cfg.Size)
	copy(payload, s.token)
	for i := tokenSize; i < len(payload); i++ {
		payload[i] = byte(i)
	}

	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   s.id,
			Seq:  seq,
			Data: payload,
		},
	}

	b, err := msg.Marshal(nil)
	if err != nil {
		return err
	}

	_, err = s.conn.WriteTo(b, s.destination())

	return err
}

// await reads until the reply for seq arrives or the timeout passes.
// Datagram sockets rewrite the echo identifier, so replies are matched
// on sequence number and payload token.
func (s *Session) await(seq int, sentAt time.Time, buf []byte) (Reply, bool) {
	deadline := sentAt.Add(s.cfg.Timeout)
	if err := s.conn.SetReadDeadline(deadline); err != nil {
		return Reply{}, false
	}

	for {
		n, peer, err := s.conn.ReadFrom(buf)
		if err != nil {
			return Reply{}, false
		}

		msg, err := icmp.ParseMessage(protocolICMP, buf[:n])
		if err != nil || msg.Type != ipv4.ICMPTypeEchoReply {
			continue
		}

		echo, ok := msg.Body.(*icmp.Echo)
		if !ok || echo.Seq != seq || !bytes.HasPrefix(echo.Data, s.token) {
			continue
		}

		return Reply{
			Seq:     seq,
			From:    addrOf(peer),
			Size:    n,
			TimeGap: time.Since(sentAt),
		}, true
	}
}

func (s *Session) destination() net.Addr {
	ip := net.IP(s.cfg.Target.AsSlice())
	if s.cfg.Privileged {
		return &net.IPAddr{IP: ip}
	}

	return &net.UDPAddr{IP: ip}
}

func addrOf(a net.Addr) netip.Addr {
	var ip net.IP
	switch v := a.(type) {
	case *net.UDPAddr:
		ip = v.IP
	case *net.IPAddr:
		ip = v.IP
	default:
		return netip.Addr{}
	}

	addr, _ := netip.AddrFromSlice(ip)

	return addr.Unmap()
}

func sleepUntil(ctx context.Context, t time.Time) bool {
	d := time.Until(t)
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
