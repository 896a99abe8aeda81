package rtty

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsObserve(t *testing.T) {
	var m = NewMetrics()

	m.Observe(DecoderStats{FramesStarted: 5, Characters: 4, FramingErrors: 1, FiguresShifts: 1, LettersShifts: 2})
	m.Observe(DecoderStats{FramesStarted: 7, Characters: 6, FramingErrors: 1, FiguresShifts: 2, LettersShifts: 2})
	m.AddSamples(1000)
	m.SetAudioLevel(42)

	assert.InDelta(t, 7.0, testutil.ToFloat64(m.frames), 0)
	assert.InDelta(t, 6.0, testutil.ToFloat64(m.characters), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.framingErrors), 0)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.shifts.WithLabelValues("FIGS")), 0)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.shifts.WithLabelValues("LTRS")), 0)
	assert.InDelta(t, 1000.0, testutil.ToFloat64(m.samples), 0)
	assert.InDelta(t, 42.0, testutil.ToFloat64(m.audioLevel), 0)

	var count, err = testutil.GatherAndCount(m.Registry())
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestMetricsServe(t *testing.T) {
	var m = NewMetrics()
	m.AddSamples(3)

	// Find a free port.
	var l, err = net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	var addr = l.Addr().String()
	l.Close()

	var ctx, cancel = context.WithCancel(context.Background())
	var done = make(chan error)
	go func() { done <- m.Serve(ctx, addr) }()

	var body string
	require.Eventually(t, func() bool {
		var resp, getErr = http.Get("http://" + addr + "/metrics") //nolint:noctx
		if getErr != nil {
			return false
		}
		defer resp.Body.Close()

		var b, _ = io.ReadAll(resp.Body)
		body = string(b)

		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	assert.Contains(t, body, "rtty_samples_total 3")

	cancel()
	require.NoError(t, <-done)
}
