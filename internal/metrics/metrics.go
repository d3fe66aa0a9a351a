package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics счётчики и гистограммы сервиса.
type Metrics struct {
	LocationUpdates *prometheus.CounterVec
	Reindex         *prometheus.CounterVec
	MatchedEvents   prometheus.Histogram
	DedupDecisions  *prometheus.CounterVec
	Deliveries      *prometheus.CounterVec
	PushAttempts    *prometheus.CounterVec
	RateLimited     prometheus.Counter
}

// New создает метрики и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LocationUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radar",
			Name:      "location_updates_total",
			Help:      "Location updates by result",
		}, []string{"result"}),
		Reindex: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radar",
			Name:      "reindex_decisions_total",
			Help:      "Movement gate decisions",
		}, []string{"decision"}),
		MatchedEvents: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "radar",
			Name:      "matched_events",
			Help:      "Number of nearby events returned per update",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		DedupDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radar",
			Name:      "dedup_decisions_total",
			Help:      "Notification dedup outcomes",
		}, []string{"outcome"}),
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radar",
			Name:      "deliveries_total",
			Help:      "Notification hand-offs to the delivery gateway",
		}, []string{"result"}),
		PushAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radar_worker",
			Name:      "push_total",
			Help:      "Push gateway calls made by the worker",
		}, []string{"result"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "radar",
			Name:      "rate_limited_total",
			Help:      "Location updates rejected by the rate limiter",
		}),
	}
	reg.MustRegister(
		m.LocationUpdates,
		m.Reindex,
		m.MatchedEvents,
		m.DedupDecisions,
		m.Deliveries,
		m.PushAttempts,
		m.RateLimited,
	)
	return m
}

// NewNop метрики без регистрации, для тестов и утилит.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
