package engine

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the orchestrator.
type Metrics struct {
	Runs         *prometheus.CounterVec
	RunDuration  prometheus.Histogram
	RuleDuration *prometheus.HistogramVec
	RuleErrors   *prometheus.CounterVec
	ActiveAlerts *prometheus.GaugeVec
}

// NewMetrics registers and returns engine metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_alert_runs_total",
			Help: "Orchestrator runs by trigger and outcome.",
		}, []string{"trigger", "outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "beacon_alert_run_duration_seconds",
			Help:    "Duration of full orchestrator runs in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s .. ~51s
		}),
		RuleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "beacon_alert_rule_duration_seconds",
			Help:    "Duration of individual rule evaluations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms .. ~5s
		}, []string{"rule"}),
		RuleErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_alert_rule_errors_total",
			Help: "Isolated rule evaluation failures.",
		}, []string{"rule"}),
		ActiveAlerts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "beacon_alerts_active",
			Help: "Currently active alerts, by severity.",
		}, []string{"severity"}),
	}

	reg.MustRegister(
		m.Runs,
		m.RunDuration,
		m.RuleDuration,
		m.RuleErrors,
		m.ActiveAlerts,
	)

	return m
}
