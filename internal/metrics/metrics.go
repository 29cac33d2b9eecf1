package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dailyyield",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dailyyield",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dailyyield",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	purchases = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dailyyield",
			Subsystem: "wallet",
			Name:      "purchases_total",
			Help:      "Package purchase attempts by outcome.",
		},
		[]string{"outcome"},
	)

	accrualRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dailyyield",
			Subsystem: "accrual",
			Name:      "runs_total",
			Help:      "Accrual passes by trigger and outcome.",
		},
		[]string{"trigger", "success"},
	)

	accrualDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dailyyield",
			Subsystem: "accrual",
			Name:      "run_duration_seconds",
			Help:      "Duration of accrual passes.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"trigger"},
	)

	accrualUsers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dailyyield",
			Subsystem: "accrual",
			Name:      "users_credited_total",
			Help:      "Wallet credits applied by accrual passes.",
		},
	)

	accrualAmount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dailyyield",
			Subsystem: "accrual",
			Name:      "amount_credited_total",
			Help:      "Sum credited to wallets by accrual passes.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		purchases,
		accrualRuns,
		accrualDuration,
		accrualUsers,
		accrualAmount,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
// Requests are labelled with the chi route pattern to keep cardinality bounded.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := routePattern(r)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

// RecordPurchase counts a buy attempt; outcome is "success" or an error kind.
func RecordPurchase(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	purchases.WithLabelValues(outcome).Inc()
}

// RecordAccrual records a completed or failed accrual pass.
func RecordAccrual(trigger string, duration time.Duration, users int, amount decimal.Decimal, success bool) {
	if trigger == "" {
		trigger = "unknown"
	}
	accrualRuns.WithLabelValues(trigger, strconv.FormatBool(success)).Inc()
	accrualDuration.WithLabelValues(trigger).Observe(duration.Seconds())
	if !success {
		return
	}
	accrualUsers.Add(float64(users))
	accrualAmount.Add(amount.InexactFloat64())
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
