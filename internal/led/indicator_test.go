package led_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"codeberg.org/mutker/wifimon/internal/errors"
	"codeberg.org/mutker/wifimon/internal/led"
	"codeberg.org/mutker/wifimon/internal/logger"
	"codeberg.org/mutker/wifimon/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStrip struct {
	ops        []string
	colors     []led.Color
	setErr     error
	refreshErr error
	clearErr   error
}

func (s *fakeStrip) SetPixel(_ int, c led.Color) error {
	s.ops = append(s.ops, "set")
	s.colors = append(s.colors, c)
	return s.setErr
}

func (s *fakeStrip) Refresh() error {
	s.ops = append(s.ops, "refresh")
	return s.refreshErr
}

func (s *fakeStrip) Clear() error {
	s.ops = append(s.ops, "clear")
	return s.clearErr
}

// sleeper records waits and cancels after limit of them. onSleep runs
// before each wait is recorded.
type sleeper struct {
	waits   []time.Duration
	limit   int
	cancel  context.CancelFunc
	onSleep func(n int)
}

func (s *sleeper) sleep(ctx context.Context, d time.Duration) error {
	if s.onSleep != nil {
		s.onSleep(len(s.waits))
	}
	s.waits = append(s.waits, d)
	if len(s.waits) >= s.limit {
		s.cancel()
	}
	return ctx.Err()
}

func run(t *testing.T, strip led.Strip, src led.Source, limit int, onSleep func(int)) *sleeper {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sl := &sleeper{limit: limit, cancel: cancel, onSleep: onSleep}

	ind := led.New(strip, src, logger.New(&bytes.Buffer{}), led.WithSleep(sl.sleep))
	require.NoError(t, ind.Run(ctx))

	return sl
}

func TestPatterns(t *testing.T) {
	tests := []struct {
		state  status.State
		color  led.Color
		period time.Duration
	}{
		{status.Disconnected, led.Color{R: 30}, 100 * time.Millisecond},
		{status.Connecting, led.Color{R: 30, G: 30}, 300 * time.Millisecond},
		{status.Connected, led.Color{G: 30}, 600 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			strip := &fakeStrip{}
			sl := run(t, strip, status.NewHolder(tt.state), 10, nil)

			require.Len(t, sl.waits, 10)
			for _, w := range sl.waits {
				assert.Equal(t, tt.period, w)
			}
			// 5 x (set, refresh, clear), then the final clear on exit.
			assert.Equal(t, strings.Repeat("set refresh clear ", 5)+"clear", strings.Join(strip.ops, " "))
			for _, c := range strip.colors {
				assert.Equal(t, tt.color, c)
			}

			p, ok := led.PatternFor(tt.state)
			require.True(t, ok)
			assert.Equal(t, tt.period, p.Period)
		})
	}
}

func TestStatusChangeWaitsForPatternEnd(t *testing.T) {
	h := status.NewHolder(status.Disconnected)
	strip := &fakeStrip{}

	// Switch to Connected during the first blink.
	sl := run(t, strip, h, 12, func(n int) {
		if n == 1 {
			h.Store(status.Connected)
		}
	})

	for n := 0; n < 10; n++ {
		assert.Equal(t, 100*time.Millisecond, sl.waits[n], "wait %d", n)
	}
	assert.Equal(t, 600*time.Millisecond, sl.waits[10])
	assert.Equal(t, led.Color{R: 30}, strip.colors[4])
	assert.Equal(t, led.Color{G: 30}, strip.colors[5])
}

func TestUnknownStatusClearsAndWaits(t *testing.T) {
	strip := &fakeStrip{}
	src := status.NewHolder(status.State(7))

	sl := run(t, strip, src, 3, nil)

	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second}, sl.waits)
	assert.NotContains(t, strip.ops, "set")
	assert.NotContains(t, strip.ops, "refresh")
}

func TestRefreshErrorStopsRun(t *testing.T) {
	strip := &fakeStrip{refreshErr: stderrors.New("rmt busy")}
	ind := led.New(strip, status.NewHolder(status.Connected), logger.New(&bytes.Buffer{}),
		led.WithSleep(func(context.Context, time.Duration) error { return nil }))

	err := ind.Run(context.Background())
	assert.True(t, errors.HasCode(err, led.ErrRefreshFailed))
}

func TestClearErrorIsIgnored(t *testing.T) {
	strip := &fakeStrip{clearErr: stderrors.New("rmt busy")}
	sl := run(t, strip, status.NewHolder(status.Connecting), 4, nil)

	assert.Len(t, sl.waits, 4)
}

func TestSetPixelErrorIsIgnored(t *testing.T) {
	strip := &fakeStrip{setErr: stderrors.New("index out of range")}
	sl := run(t, strip, status.NewHolder(status.Disconnected), 10, nil)

	assert.Len(t, sl.waits, 10)
	assert.Equal(t, strings.Repeat("set refresh clear ", 5)+"clear", strings.Join(strip.ops, " "))
}

func TestSetup(t *testing.T) {
	strip := &fakeStrip{}
	ind := led.New(strip, status.NewHolder(status.Connected), logger.New(&bytes.Buffer{}))
	require.NoError(t, ind.Setup())
	assert.Equal(t, []string{"clear"}, strip.ops)

	strip.clearErr = stderrors.New("no device")
	assert.True(t, errors.HasCode(ind.Setup(), led.ErrSetupFailed))
}

func TestConsoleStrip(t *testing.T) {
	var buf bytes.Buffer
	s := led.NewConsoleStrip(&buf, 1)

	require.NoError(t, s.SetPixel(0, led.Color{G: 30}))
	assert.Equal(t, []led.Color{{}}, s.Pixels(), "staged until refresh")
	require.NoError(t, s.Refresh())
	assert.Equal(t, []led.Color{{G: 30}}, s.Pixels())
	assert.Contains(t, buf.String(), "●")

	require.NoError(t, s.Clear())
	assert.Equal(t, []led.Color{{}}, s.Pixels())

	assert.True(t, errors.HasCode(s.SetPixel(1, led.Color{}), led.ErrInvalidIndex))
}
