package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	blobOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "folio",
			Name:      "blob_operations_total",
			Help:      "Blob store operations grouped by operation and result.",
		},
		[]string{"op", "result"},
	)
	blobCompensationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "folio",
			Name:      "blob_compensations_total",
			Help:      "Compensating blob removals after a failed row commit.",
		},
		[]string{"result"},
	)
	orphanBlobsSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "folio",
			Name:      "orphan_blobs_swept_total",
			Help:      "Unreferenced blobs removed by the sweeper.",
		},
	)
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "folio",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests grouped by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "folio",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func init() {
	Register()
}

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			blobOperationsTotal,
			blobCompensationsTotal,
			orphanBlobsSweptTotal,
			httpRequestsTotal,
			httpRequestDuration,
		)
	})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func ObserveBlobOp(op string, err error) {
	blobOperationsTotal.WithLabelValues(op, result(err)).Inc()
}

func ObserveCompensation(err error) {
	blobCompensationsTotal.WithLabelValues(result(err)).Inc()
}

func AddOrphansSwept(n int) {
	orphanBlobsSweptTotal.Add(float64(n))
}

func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
