package infra

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains all Prometheus metrics for the ingestion path.
// A private registry keeps the exposition limited to what we register.
type Metrics struct {
	registry *prometheus.Registry

	FramesTotal   *prometheus.CounterVec
	FramesSkipped prometheus.Counter
	Reconnects    prometheus.Counter
	Connected     prometheus.Gauge
	LastFrameMs   prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		FramesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signal_frames_total",
			Help: "Inbound stream frames by channel",
		}, []string{"channel"}),
		FramesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signal_frames_skipped_total",
			Help: "Frames dropped as malformed or unrecognized",
		}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signal_ws_reconnects_total",
			Help: "Websocket session rebuilds",
		}),
		Connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signal_ws_connected",
			Help: "1 while the stream session is live, 0 otherwise",
		}),
		LastFrameMs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signal_last_frame_timestamp_ms",
			Help: "Wall-clock ms when the last frame arrived",
		}),
	}

	reg.MustRegister(m.FramesTotal, m.FramesSkipped, m.Reconnects, m.Connected, m.LastFrameMs)
	return m
}

// Handler returns the /metrics exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
