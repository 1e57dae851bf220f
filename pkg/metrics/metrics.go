// Package metrics holds the prometheus collectors of the weather bot.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Notification outcomes used as the "outcome" label.
const (
	OutcomeSent    = "sent"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Collector implements ports.CacheMetrics and ports.NotificationMetrics.
type Collector struct {
	CacheHits         *prometheus.CounterVec
	CacheMisses       *prometheus.CounterVec
	CacheFetchErrors  *prometheus.CounterVec
	CacheFetchLatency *prometheus.HistogramVec
	Notifications     *prometheus.CounterVec
	TickDuration      prometheus.Histogram
	DueSubscriptions  prometheus.Gauge
}

// NewCollector registers every collector with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		CacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_cache_hits_total",
				Help: "The total number of external data cache hits",
			},
			[]string{"partition"},
		),
		CacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_cache_misses_total",
				Help: "The total number of external data cache misses",
			},
			[]string{"partition"},
		),
		CacheFetchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_cache_fetch_errors_total",
				Help: "The total number of failed upstream fetches",
			},
			[]string{"partition"},
		),
		CacheFetchLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "weather_cache_fetch_duration_seconds",
				Help:    "Upstream fetch duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"partition"},
		),
		Notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_total",
				Help: "Notifications processed by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		TickDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scheduler_tick_duration_seconds",
				Help:    "Duration of a scheduler tick in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		DueSubscriptions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "scheduler_due_subscriptions",
				Help: "Subscriptions due at the last scheduler tick",
			},
		),
	}
}

func (c *Collector) RecordCacheHit(partition string) {
	c.CacheHits.WithLabelValues(partition).Inc()
}

func (c *Collector) RecordCacheMiss(partition string) {
	c.CacheMisses.WithLabelValues(partition).Inc()
}

func (c *Collector) RecordCacheFetchError(partition string) {
	c.CacheFetchErrors.WithLabelValues(partition).Inc()
}

func (c *Collector) RecordCacheFetchLatency(partition string, duration time.Duration) {
	c.CacheFetchLatency.WithLabelValues(partition).Observe(duration.Seconds())
}

func (c *Collector) RecordNotification(typeCode, outcome string) {
	c.Notifications.WithLabelValues(typeCode, outcome).Inc()
}

// RecordTick observes the tick duration and publishes its due count.
func (c *Collector) RecordTick(due int, duration time.Duration) {
	c.TickDuration.Observe(duration.Seconds())
	c.DueSubscriptions.Set(float64(due))
}
