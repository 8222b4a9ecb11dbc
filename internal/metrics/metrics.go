package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const service = "inventory"

var (
	// HTTP request counter
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status", "service"},
	)

	// HTTP request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "service"},
	)

	// Inventory operations counter
	InventoryOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_operations_total",
			Help: "Total number of inventory operations",
		},
		[]string{"operation", "status", "service"},
	)

	ReservationsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name:        "reservations_expired_total",
			Help:        "Reservations released back to inventory by the expiry sweep",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)

	StoreConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_conflicts_total",
			Help: "Transactions aborted by a concurrent modification",
		},
		[]string{"operation", "service"},
	)
)

// ObserveOperation counts one inventory operation by outcome.
func ObserveOperation(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	InventoryOperations.WithLabelValues(operation, status, service).Inc()
}

// ObserveConflict counts a conflicted transaction attempt.
func ObserveConflict(operation string) {
	StoreConflicts.WithLabelValues(operation, service).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument records request count and latency under a fixed route label.
func Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status), service).Inc()
		RequestDuration.WithLabelValues(r.Method, route, service).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
