package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	PollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kbridge_polls_total",
			Help: "Number of poll calls by result",
		},
		[]string{"endpoint", "result"}, // records|empty|error
	)
	RecordsPolled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kbridge_records_polled_total",
			Help: "Number of records fetched from the broker",
		},
		[]string{"endpoint", "topic"},
	)
	DispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kbridge_dispatch_total",
			Help: "Number of batch dispatches by result",
		},
		[]string{"endpoint", "result"}, // ok|failed|rejected
	)
	DispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kbridge_dispatch_duration_seconds",
			Help:    "Batch delivery duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	CommitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kbridge_commits_total",
			Help: "Number of async offset commits by result",
		},
		[]string{"endpoint", "result"}, // ok|failed
	)
	ActivePollers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kbridge_active_pollers",
			Help: "Number of registered poller tasks",
		},
		[]string{"endpoint"},
	)
	WorkInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kbridge_work_in_flight",
			Help: "Number of work items currently executing",
		},
	)
)

var (
	CacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Cache operations",
		},
		[]string{"op"}, // hit|miss|evicted|expired
	)
	CacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_size",
			Help: "Number of items currently in cache",
		},
	)
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kbridge_http_requests_total",
			Help: "Admin API requests by route and status class",
		},
		[]string{"method", "route", "status"}, // 2xx|4xx|5xx
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kbridge_http_request_duration_seconds",
			Help:    "Admin API request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

var registerOnce sync.Once

// MustRegister — регистрация в глобальном реестре; повторные вызовы ничего не делают.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			PollsTotal, RecordsPolled, DispatchTotal, DispatchDuration, CommitsTotal, ActivePollers, WorkInFlight,
			CacheOps, CacheSize,
			HTTPRequests, HTTPDuration,
		)
	})
}
