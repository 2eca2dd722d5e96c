package report_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"codeberg.org/mutker/wifimon/internal/logger"
	"codeberg.org/mutker/wifimon/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu        sync.Mutex
	snapshots []report.Snapshot
	err       error
}

func (s *recordingSink) Emit(_ context.Context, snapshot *report.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, *snapshot)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshots)
}

func fillSampled(r *report.Report) {
	r.SetRSSI(-42)
	r.SetLatency(17)
	r.SetOFDMA(true)
	r.SetTWT(false)
}

var sampledFields = report.FieldRSSI | report.FieldLatency | report.FieldOFDMA | report.FieldTWT

func quietLogger() logger.Logger {
	return logger.New(&bytes.Buffer{})
}

func TestSettersSetFlags(t *testing.T) {
	r := report.New()
	assert.Equal(t, report.Field(0), r.Received())

	r.SetRSSI(-42)
	assert.Equal(t, report.FieldRSSI, r.Received())

	fillSampled(r)
	s := r.Snapshot()
	assert.Equal(t, -42, s.RSSI)
	assert.Equal(t, uint32(17), s.LatencyMs)
	assert.True(t, s.OFDMAEnabled)
	assert.False(t, s.TWTEnabled)
	assert.Equal(t, sampledFields, s.Received)
	assert.Zero(t, s.JitterMs)
	assert.Zero(t, s.ThroughputKbps)
}

func TestNoEmissionWithUnsampledThroughput(t *testing.T) {
	sink := &recordingSink{}
	r := report.New()
	agg := report.NewAggregator(r, sink, quietLogger())

	for i := 0; i < 50; i++ {
		fillSampled(r)
		assert.False(t, agg.CheckAndEmit(context.Background()))
	}

	assert.Zero(t, sink.count())
	assert.Equal(t, report.AllFields, agg.Required())
}

func TestNoEmissionWhileAnyRequiredFlagMissing(t *testing.T) {
	setters := map[report.Field]func(*report.Report){
		report.FieldRSSI:    func(r *report.Report) { r.SetRSSI(-60) },
		report.FieldLatency: func(r *report.Report) { r.SetLatency(5) },
		report.FieldOFDMA:   func(r *report.Report) { r.SetOFDMA(false) },
		report.FieldTWT:     func(r *report.Report) { r.SetTWT(true) },
	}

	for missing := range setters {
		t.Run(missing.String(), func(t *testing.T) {
			sink := &recordingSink{}
			r := report.New()
			agg := report.NewAggregator(r, sink, quietLogger(), report.WithRequired(sampledFields))

			for f, set := range setters {
				if f != missing {
					set(r)
				}
			}

			assert.False(t, agg.CheckAndEmit(context.Background()))
			assert.Zero(t, sink.count())
		})
	}
}

func TestEmitClearsFlags(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	sink := &recordingSink{}
	r := report.New()
	agg := report.NewAggregator(r, sink, quietLogger(),
		report.WithRequired(sampledFields),
		report.WithClock(func() time.Time { return at }))

	fillSampled(r)
	require.True(t, agg.CheckAndEmit(context.Background()))
	require.Equal(t, 1, sink.count())

	got := sink.snapshots[0]
	assert.Equal(t, at, got.Timestamp)
	assert.Equal(t, -42, got.RSSI)
	assert.Equal(t, uint32(17), got.LatencyMs)
	assert.Equal(t, sampledFields, got.Received)

	assert.Equal(t, report.Field(0), r.Received())
	assert.Equal(t, -42, r.Snapshot().RSSI, "values survive the flag reset")

	// Partial refill keeps the aggregator quiet.
	r.SetRSSI(-50)
	r.SetLatency(9)
	assert.False(t, agg.CheckAndEmit(context.Background()))
	assert.Equal(t, 1, sink.count())

	r.SetOFDMA(true)
	r.SetTWT(true)
	assert.True(t, agg.CheckAndEmit(context.Background()))
	assert.Equal(t, 2, sink.count())
}

func TestSinkErrorStillClearsFlags(t *testing.T) {
	sink := &recordingSink{err: stderrors.New("sink down")}
	r := report.New()
	agg := report.NewAggregator(r, sink, quietLogger(), report.WithRequired(sampledFields))

	fillSampled(r)
	assert.True(t, agg.CheckAndEmit(context.Background()))
	assert.Equal(t, report.Field(0), r.Received())
}

func TestConcurrentWritersAndAggregator(t *testing.T) {
	sink := &recordingSink{}
	r := report.New()
	agg := report.NewAggregator(r, sink, quietLogger(), report.WithRequired(sampledFields))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				fillSampled(r)
			}
		}()
	}

	emitted := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		select {
		case <-done:
			fillSampled(r)
			if agg.CheckAndEmit(context.Background()) {
				emitted++
			}
			assert.Equal(t, emitted, sink.count())
			assert.Positive(t, emitted)
			for _, s := range sink.snapshots {
				assert.Equal(t, sampledFields, s.Received)
			}
			return
		default:
			if agg.CheckAndEmit(context.Background()) {
				emitted++
			}
		}
	}
}

func TestFieldString(t *testing.T) {
	assert.Equal(t, "none", report.Field(0).String())
	assert.Equal(t, "rssi,latency,throughput,ofdma,twt", report.AllFields.String())
	assert.Equal(t, "rssi,twt", (report.FieldRSSI | report.FieldTWT).String())
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := report.NewLogSink(logger.New(&buf))

	err := sink.Emit(context.Background(), &report.Snapshot{RSSI: -42, LatencyMs: 12, OFDMAEnabled: true})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Network Parameters Collected:")
	assert.Contains(t, out, "RSSI: -42 dBm, Latency: 12 ms, Jitter: 0 ms, Throughput: 0 kbps, OFDMA: Enabled, TWT: Disabled")

	assert.Error(t, sink.Emit(context.Background(), nil))
}
