// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Session states exported through the churn_session_state gauge.
var SessionStates = []string{"idle", "predicting", "presented"}

// Metrics holds the prediction pipeline collectors.
type Metrics struct {
	PredictionsTotal   *prometheus.CounterVec
	PredictionFailures *prometheus.CounterVec
	PredictionDuration prometheus.Histogram
	SessionState       *prometheus.GaugeVec
}

// New registers the collectors on reg. A nil reg uses the default
// registerer, which is what the /metrics handler serves.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		PredictionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "churn_predictions_total",
				Help: "Total number of completed churn predictions by label",
			},
			[]string{"label"},
		),
		PredictionFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "churn_prediction_failures_total",
				Help: "Total number of failed prediction requests by error code",
			},
			[]string{"error_code"},
		),
		PredictionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "churn_prediction_duration_seconds",
				Help:    "Duration of classifier invocation in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
		),
		SessionState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "churn_session_state",
				Help: "1 for the state the prediction session is currently in",
			},
			[]string{"state"},
		),
	}
}

func (m *Metrics) ObservePrediction(label string, d time.Duration) {
	if m == nil {
		return
	}
	m.PredictionsTotal.WithLabelValues(label).Inc()
	m.PredictionDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveFailure(code string) {
	if m == nil {
		return
	}
	m.PredictionFailures.WithLabelValues(code).Inc()
}

// SetState flips the state gauge so exactly one state reads 1.
func (m *Metrics) SetState(state string) {
	if m == nil {
		return
	}
	for _, s := range SessionStates {
		v := 0.0
		if s == state {
			v = 1
		}
		m.SessionState.WithLabelValues(s).Set(v)
	}
}
