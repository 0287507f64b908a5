package alert

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for alert creation and lifecycle.
type Metrics struct {
	Created      *prometheus.CounterVec
	DedupSkips   *prometheus.CounterVec
	Transitions  *prometheus.CounterVec
	AutoResolved *prometheus.CounterVec
}

// NewMetrics registers and returns alert metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_alerts_created_total",
			Help: "Alerts materialized, by type and severity.",
		}, []string{"type", "severity"}),
		DedupSkips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_alerts_dedup_skips_total",
			Help: "Candidates skipped because an active duplicate exists.",
		}, []string{"type"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_alert_transitions_total",
			Help: "Lifecycle transitions, by destination status.",
		}, []string{"status"}),
		AutoResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_alerts_auto_resolved_total",
			Help: "Alerts force-resolved because the underlying condition cleared.",
		}, []string{"type"}),
	}

	reg.MustRegister(
		m.Created,
		m.DedupSkips,
		m.Transitions,
		m.AutoResolved,
	)

	return m
}
