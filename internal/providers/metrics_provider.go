package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"giftd/internal/structures"
)

// LedgerStats is the slice of the ledger service the gauges read from.
type LedgerStats interface {
	CountContexts() int
	CountUsers() int
}

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCheckins()
	AddPointsAwarded(points int)
	IncRedemptions(result string)
	ObservePersistenceDuration(duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	checkinsTotal       prometheus.Counter
	pointsAwardedTotal  prometheus.Counter
	redemptionsTotal    *prometheus.CounterVec
	persistenceDuration prometheus.Histogram
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCheckins() {
	m.checkinsTotal.Inc()
}

func (m *MetricsProvider) AddPointsAwarded(points int) {
	m.pointsAwardedTotal.Add(float64(points))
}

func (m *MetricsProvider) IncRedemptions(result string) {
	m.redemptionsTotal.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, service LedgerStats) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "giftd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "giftd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		checkinsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "giftd_checkins_total",
			Help: "Total number of successful check-ins",
		}),

		pointsAwardedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "giftd_checkin_points_total",
			Help: "Total points awarded by check-ins",
		}),

		redemptionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "giftd_redemptions_total",
			Help: "Total number of redemption attempts by result",
		}, []string{"result"}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "giftd_persistence_duration_seconds",
			Help:    "Duration of persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "giftd_contexts_total",
		Help: "Total number of contexts in the ledger",
	}, func() float64 {
		return float64(service.CountContexts())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "giftd_users_total",
		Help: "Total number of user accounts across contexts",
	}, func() float64 {
		return float64(service.CountUsers())
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCheckins()                                     {}
func (n *noopMetrics) AddPointsAwarded(_ int)                           {}
func (n *noopMetrics) IncRedemptions(_ string)                          {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
