// Package metrics holds the Prometheus collectors for Rays.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rays",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rays",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rays",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path"},
	)

	searches = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rays",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Duration of sticker searches.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"mode"},
	)

	shares = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rays",
			Subsystem: "share",
			Name:      "total",
			Help:      "Stickers shared, by target app.",
		},
		[]string{"target", "success"},
	)

	exports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rays",
			Subsystem: "export",
			Name:      "stickers_total",
			Help:      "Sticker files exported.",
		},
		[]string{"success"},
	)

	imports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rays",
			Subsystem: "import",
			Name:      "files_total",
			Help:      "Files offered to the importer, by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		searches,
		shares,
		exports,
		imports,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
// Paths are labelled by their chi route pattern so sticker uuids do not blow
// up the label space.
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

		path := routePattern(r)
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

// ObserveSearch records how long a search took. mode is "like" or "regex".
func ObserveSearch(mode string, d time.Duration) {
	searches.WithLabelValues(mode).Observe(d.Seconds())
}

func RecordShare(target string, success bool) {
	if target == "" {
		target = "chooser"
	}
	shares.WithLabelValues(target, strconv.FormatBool(success)).Inc()
}

func RecordExport(success bool) {
	exports.WithLabelValues(strconv.FormatBool(success)).Inc()
}

// RecordImport counts one importer outcome: added, updated, skipped or failed.
func RecordImport(outcome string) {
	imports.WithLabelValues(outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
