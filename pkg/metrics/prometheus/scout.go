// Package prometheus provides the Prometheus implementations of the
// dirscout metrics interfaces. Importing it (usually blank) registers the
// constructors with pkg/metrics.
package prometheus

import (
	"github.com/dirscout/dirscout/internal/protocol/scout"
	"github.com/dirscout/dirscout/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterScoutMetricsConstructor(newScoutMetrics)
}

// scoutMetrics is the Prometheus implementation of scout.Metrics.
type scoutMetrics struct {
	sessionsStarted prometheus.Counter
	sessionsActive  prometheus.Gauge
	authFailures    prometheus.Counter
	commands        *prometheus.CounterVec
	filesTraversed  prometheus.Counter
	bytesStreamed   prometheus.Counter
}

func newScoutMetrics() scout.Metrics {
	reg := metrics.GetRegistry()

	return &scoutMetrics{
		sessionsStarted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "dirscout_sessions_total",
			Help: "Total number of accepted connections",
		}),
		sessionsActive: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "dirscout_sessions_active",
			Help: "Number of sessions currently in flight",
		}),
		authFailures: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "dirscout_auth_failures_total",
			Help: "Total number of rejected authentication handshakes",
		}),
		commands: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "dirscout_commands_total",
			Help: "Total number of dispatched commands by verb",
		}, []string{"verb"}),
		filesTraversed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "dirscout_files_traversed_total",
			Help: "Total number of regular files reported by traversals",
		}),
		bytesStreamed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "dirscout_inspect_bytes_total",
			Help: "Total number of file bytes streamed to peers",
		}),
	}
}

func (m *scoutMetrics) SessionStarted() {
	m.sessionsStarted.Inc()
	m.sessionsActive.Inc()
}

func (m *scoutMetrics) SessionEnded() {
	m.sessionsActive.Dec()
}

func (m *scoutMetrics) AuthFailed() {
	m.authFailures.Inc()
}

func (m *scoutMetrics) CommandReceived(verb string) {
	m.commands.WithLabelValues(verb).Inc()
}

func (m *scoutMetrics) FilesTraversed(count int) {
	m.filesTraversed.Add(float64(count))
}

func (m *scoutMetrics) BytesStreamed(n int) {
	m.bytesStreamed.Add(float64(n))
}
