package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 把会话记录汇总为 Prometheus 指标
type Metrics struct {
	sessions *prometheus.CounterVec
	duration prometheus.Histogram
	bytes    *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		sessions: f.NewCounterVec(prometheus.CounterOpts{Name: "wsproxy_sessions_total", Help: "Finished sessions by outcome"}, []string{"outcome"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{Name: "wsproxy_session_duration_seconds", Help: "Session lifetime seconds", Buckets: prometheus.ExponentialBuckets(0.001, 4, 12)}),
		bytes:    f.NewCounterVec(prometheus.CounterOpts{Name: "wsproxy_relayed_bytes_total", Help: "Relayed payload bytes by direction"}, []string{"direction"}),
	}
}

func (m *Metrics) Emit(rec Record) {
	m.sessions.WithLabelValues(rec.Outcome).Inc()
	m.duration.Observe(rec.Elapsed.Seconds())
	m.bytes.WithLabelValues("ws_to_tcp").Add(float64(rec.BytesIn))
	m.bytes.WithLabelValues("tcp_to_ws").Add(float64(rec.BytesOut))
}
