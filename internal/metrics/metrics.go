package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the detection and alerting paths. The
// soft-failure posture of the core (degraded checks, dropped alerts) is only
// visible through logs and these counters, so they matter more than usual.
// All methods are nil-safe so tests can pass a nil *Metrics.
type Metrics struct {
	DetectorDuration *prometheus.HistogramVec
	DetectorFailures *prometheus.CounterVec
	CheckDuration    prometheus.Histogram
	BudgetViolations prometheus.Counter
	AlertsDispatched *prometheus.CounterVec
	DeliveryFailures *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		DetectorDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clearance_detector_duration_seconds",
			Help:    "Duration of individual conflict detector traversals",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"detector"}),

		DetectorFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clearance_detector_failures_total",
			Help: "Total detector traversals that soft-failed to an empty result",
		}, []string{"detector"}),

		CheckDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "clearance_check_duration_seconds",
			Help:    "Duration of full conflict checks including fan-out and ranking",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		BudgetViolations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clearance_check_budget_violations_total",
			Help: "Total checks that exceeded the combined latency budget",
		}),

		AlertsDispatched: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clearance_alerts_dispatched_total",
			Help: "Total alerts dispatched by severity tier and channel",
		}, []string{"tier", "channel"}),

		DeliveryFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clearance_alert_delivery_failures_total",
			Help: "Total alert deliveries that failed and were dropped",
		}, []string{"channel"}),
	}
}

func (m *Metrics) ObserveDetector(detector string, d time.Duration) {
	if m != nil {
		m.DetectorDuration.WithLabelValues(detector).Observe(d.Seconds())
	}
}

func (m *Metrics) IncDetectorFailure(detector string) {
	if m != nil {
		m.DetectorFailures.WithLabelValues(detector).Inc()
	}
}

func (m *Metrics) ObserveCheck(d time.Duration) {
	if m != nil {
		m.CheckDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) IncBudgetViolation() {
	if m != nil {
		m.BudgetViolations.Inc()
	}
}

func (m *Metrics) IncAlertDispatched(tier, channel string) {
	if m != nil {
		m.AlertsDispatched.WithLabelValues(tier, channel).Inc()
	}
}

func (m *Metrics) IncDeliveryFailure(channel string) {
	if m != nil {
		m.DeliveryFailures.WithLabelValues(channel).Inc()
	}
}
