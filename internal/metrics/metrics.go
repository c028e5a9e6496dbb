// Package metrics exposes Prometheus collectors for sheet updates.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	tasksTotal           *prometheus.CounterVec
	taskDurationSeconds  *prometheus.HistogramVec
	upsertsTotal         *prometheus.CounterVec
	extractFallbackTotal *prometheus.CounterVec
	activeWorkers        prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		tasksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prosheet_tasks_total",
				Help: "Total number of player tasks processed, labeled by status.",
			},
			[]string{"status"},
		)

		taskDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "prosheet_task_duration_seconds",
				Help:    "Histogram of fetch+extract+upsert durations, labeled by status.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"status"},
		)

		upsertsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prosheet_upserts_total",
				Help: "Total number of sheet writes, labeled by kind (update, append, error).",
			},
			[]string{"kind"},
		)

		extractFallbackTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prosheet_extract_fallbacks_total",
				Help: "Fields resolved by a secondary locator or a default, labeled by field and kind.",
			},
			[]string{"field", "kind"},
		)

		activeWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "prosheet_active_workers",
				Help: "Number of workers currently processing a player.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Router mounts the metrics handler under /metrics.
func Router() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

// ObserveTask records one finished task.
func ObserveTask(status string, duration time.Duration) {
	Init()
	tasksTotal.WithLabelValues(status).Inc()
	taskDurationSeconds.WithLabelValues(status).Observe(duration.Seconds())
}

// ObserveUpsert counts a sheet write.
func ObserveUpsert(kind string) {
	Init()
	upsertsTotal.WithLabelValues(kind).Inc()
}

// ObserveFallback counts a field that was not read from its primary locator.
func ObserveFallback(field, kind string) {
	Init()
	extractFallbackTotal.WithLabelValues(field, kind).Inc()
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	Init()
	activeWorkers.Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	Init()
	activeWorkers.Dec()
}
