package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/udaancredit/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Assessment metrics
	Assessments        *prometheus.CounterVec
	AssessmentScore    prometheus.Histogram
	AssessmentDuration prometheus.Histogram

	// Cache metrics
	CacheLookups *prometheus.CounterVec

	// Event metrics
	EventsPublished prometheus.Counter
	EventsFailed    prometheus.Counter
	EventsDropped   prometheus.Counter
}

// New creates all metrics and registers them with reg.
// A nil reg registers with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Assessments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "udaancredit_assessments_total",
				Help: "Total number of ledger assessments by risk category",
			},
			[]string{"risk"},
		),
		AssessmentScore: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "udaancredit_assessment_score",
			Help:    "Distribution of credit scores",
			Buckets: prometheus.LinearBuckets(300, 50, 13),
		}),
		AssessmentDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "udaancredit_assessment_duration_seconds",
			Help:    "Duration of feature extraction and scoring",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}),

		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "udaancredit_cache_lookups_total",
				Help: "Assessment cache lookups by result",
			},
			[]string{"result"},
		),

		EventsPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "udaancredit_events_published_total",
			Help: "Total number of events published",
		}),
		EventsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "udaancredit_events_failed_total",
			Help: "Total number of events that failed to publish",
		}),
		EventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "udaancredit_events_dropped_total",
			Help: "Total number of events dropped because the queue was full",
		}),
	}
}

// ObserveAssessment implements usecase.MetricsRecorder.
func (m *Metrics) ObserveAssessment(risk domain.RiskCategory, score domain.CreditScore, duration time.Duration) {
	m.Assessments.WithLabelValues(string(risk)).Inc()
	m.AssessmentScore.Observe(float64(score))
	m.AssessmentDuration.Observe(duration.Seconds())
}

// ObserveCache implements usecase.MetricsRecorder.
func (m *Metrics) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// ObservePublish records the outcome of publishing one event.
func (m *Metrics) ObservePublish(err error) {
	if err != nil {
		m.EventsFailed.Inc()
		return
	}
	m.EventsPublished.Inc()
}

// ObserveDrop records an event dropped before publishing.
func (m *Metrics) ObserveDrop() {
	m.EventsDropped.Inc()
}
