package metrics

import (
	"github.com/dirscout/dirscout/internal/protocol/scout"
)

// NewScoutMetrics creates a Prometheus-backed scout.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called), in
// which case the protocol server skips collection entirely.
func NewScoutMetrics() scout.Metrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusScoutMetrics()
}

// newPrometheusScoutMetrics is provided by pkg/metrics/prometheus during
// package initialization. The indirection keeps the prometheus
// implementation importable without a cycle.
var newPrometheusScoutMetrics func() scout.Metrics

// RegisterScoutMetricsConstructor registers the Prometheus constructor.
// Called by pkg/metrics/prometheus from its init function.
func RegisterScoutMetricsConstructor(constructor func() scout.Metrics) {
	newPrometheusScoutMetrics = constructor
}
