package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "path", "status_code"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status_code"})

	calculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cartera_calculations_total",
		Help: "Portfolio calculations by operation and outcome.",
	}, []string{"operation", "outcome"})

	calculationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cartera_calculation_duration_seconds",
		Help:    "Duration of portfolio calculations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	cvClassifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cartera_cv_classifications_total",
		Help: "Loans classified by weekly CV status.",
	}, []string{"status"})

	reportCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cartera_report_cache_total",
		Help: "Report cache lookups by result.",
	}, []string{"result"})
)

// ObserveCalculation records one run of operation started at start.
func ObserveCalculation(operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	calculationsTotal.WithLabelValues(operation, outcome).Inc()
	calculationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// CountCVStatus records the classification of one loan.
func CountCVStatus(status string) {
	cvClassifications.WithLabelValues(status).Inc()
}

// CountCacheLookup records a report cache hit or miss.
func CountCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	reportCacheTotal.WithLabelValues(result).Inc()
}

// Middleware records request count and latency per mux route template.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		code := strconv.Itoa(rec.status)
		httpRequestsTotal.WithLabelValues(r.Method, path, code).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path, code).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}
