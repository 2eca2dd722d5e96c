// Package status holds the connection status shown by the LED and the
// drivers that update it.
package status

import (
	"strings"
	"sync"
	"sync/atomic"

	"codeberg.org/mutker/wifimon/internal/errors"
)

type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

const ErrUnknownState = errors.ErrorCode("status_unknown_state")

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// ParseState maps a config name to a State.
func ParseState(name string) (State, error) {
	switch strings.ToLower(name) {
	case "disconnected", "":
		return Disconnected, nil
	case "connecting":
		return Connecting, nil
	case "connected":
		return Connected, nil
	default:
		return Disconnected, errors.New().WithData(ErrUnknownState, name)
	}
}

// Holder owns the current status. Load and Store are safe from any
// goroutine; watchers get the latest value on change and may miss
// intermediate ones.
type Holder struct {
	state atomic.Int32

	mu       sync.Mutex
	watchers map[chan State]struct{}
}

func NewHolder(initial State) *Holder {
	h := &Holder{watchers: make(map[chan State]struct{})}
	h.state.Store(int32(initial))

	return h
}

func (h *Holder) Load() State {
	return State(h.state.Load())
}

// Store sets the status and reports whether it changed.
func (h *Holder) Store(s State) bool {
	if State(h.state.Swap(int32(s))) == s {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.watchers {
		// Keep only the newest value in the buffer.
		select {
		case <-ch:
		default:
		}
		ch <- s
	}

	return true
}

// Watch returns a channel receiving status changes and a func that stops
// the subscription.
func (h *Holder) Watch() (<-chan State, func()) {
	ch := make(chan State, 1)

	h.mu.Lock()
	h.watchers[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.watchers, ch)
			h.mu.Unlock()
		})
	}
}
