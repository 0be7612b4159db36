package gateway

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}
	factory := promauto.With(reg)
	return &metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ordergate",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "HTTP requests handled, by route, encoding, and status code.",
		}, []string{"route", "encoding", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ordergate",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Request handling latency, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

func (m *metrics) observe(route, encoding string, status int, start time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, encoding, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}
