package rtty

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for one receiver.
// Each has its own registry so several can exist in one process (tests).
type Metrics struct {
	registry *prometheus.Registry

	samples       prometheus.Counter
	frames        prometheus.Counter
	characters    prometheus.Counter
	framingErrors prometheus.Counter
	shifts        *prometheus.CounterVec
	audioLevel    prometheus.Gauge

	last DecoderStats
}

func NewMetrics() *Metrics {
	var reg = prometheus.NewRegistry()
	var factory = promauto.With(reg)

	return &Metrics{
		registry: reg,
		samples: factory.NewCounter(prometheus.CounterOpts{ //nolint:exhaustruct
			Name: "rtty_samples_total",
			Help: "Baseband samples fed to the decoder",
		}),
		frames: factory.NewCounter(prometheus.CounterOpts{ //nolint:exhaustruct
			Name: "rtty_frames_started_total",
			Help: "Start bits detected",
		}),
		characters: factory.NewCounter(prometheus.CounterOpts{ //nolint:exhaustruct
			Name: "rtty_characters_total",
			Help: "Characters decoded, shift codes included",
		}),
		framingErrors: factory.NewCounter(prometheus.CounterOpts{ //nolint:exhaustruct
			Name: "rtty_framing_errors_total",
			Help: "Frames with no stop bit",
		}),
		shifts: factory.NewCounterVec(prometheus.CounterOpts{ //nolint:exhaustruct
			Name: "rtty_shifts_total",
			Help: "Shift codes received",
		}, []string{"table"}),
		audioLevel: factory.NewGauge(prometheus.GaugeOpts{ //nolint:exhaustruct
			Name: "rtty_audio_level",
			Help: "Receive audio level, 0 to 100ish",
		}),
		last: DecoderStats{}, //nolint:exhaustruct
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe publishes the change in decoder totals since the last call.
func (m *Metrics) Observe(s DecoderStats) {
	m.frames.Add(float64(s.FramesStarted - m.last.FramesStarted))
	m.characters.Add(float64(s.Characters - m.last.Characters))
	m.framingErrors.Add(float64(s.FramingErrors - m.last.FramingErrors))
	m.shifts.WithLabelValues(Figures.String()).Add(float64(s.FiguresShifts - m.last.FiguresShifts))
	m.shifts.WithLabelValues(Letters.String()).Add(float64(s.LettersShifts - m.last.LettersShifts))
	m.last = s
}

func (m *Metrics) AddSamples(n int) {
	m.samples.Add(float64(n))
}

func (m *Metrics) SetAudioLevel(level float64) {
	m.audioLevel.Set(level)
}

// Serve runs a /metrics listener until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	var mux = http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})) //nolint:exhaustruct

	var srv = &http.Server{ //nolint:exhaustruct
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		var shutdownCtx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		srv.Shutdown(shutdownCtx) //nolint:errcheck,contextcheck
	}()

	logger.Info("Metrics listening", "addr", addr)

	var err = srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}
