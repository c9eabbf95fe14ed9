// Package metrics holds the Prometheus collectors of fintrack.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector. A nil *Registry is valid and records
// nothing.
type Registry struct {
	reg *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	StoreOps      *prometheus.CounterVec
	StoreDuration *prometheus.HistogramVec

	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	RowsSynced *prometheus.CounterVec
}

func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_http_requests_total",
				Help: "HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "code"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fintrack_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),

		StoreOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_store_operations_total",
				Help: "Spreadsheet store operations by operation, sheet and result",
			},
			[]string{"op", "sheet", "result"},
		),
		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fintrack_store_operation_duration_seconds",
				Help:    "Spreadsheet store latency by operation",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"op"},
		),

		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_cache_hits_total",
				Help: "Read cache hits by sheet",
			},
			[]string{"sheet"},
		),
		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_cache_misses_total",
				Help: "Read cache misses by sheet",
			},
			[]string{"sheet"},
		),

		RowsSynced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_rows_synced_total",
				Help: "Rows mirrored from SQLite to Google Sheets by result",
			},
			[]string{"result"},
		),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.HTTPRequests,
		r.HTTPDuration,
		r.StoreOps,
		r.StoreDuration,
		r.CacheHits,
		r.CacheMisses,
		r.RowsSynced,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func (r *Registry) ObserveHTTP(route, method string, code int, d time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	r.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (r *Registry) ObserveStore(op, sheet string, err error, d time.Duration) {
	if r == nil {
		return
	}
	r.StoreOps.WithLabelValues(op, sheet, result(err)).Inc()
	r.StoreDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (r *Registry) CacheHit(sheet string) {
	if r != nil {
		r.CacheHits.WithLabelValues(sheet).Inc()
	}
}

func (r *Registry) CacheMiss(sheet string) {
	if r != nil {
		r.CacheMisses.WithLabelValues(sheet).Inc()
	}
}

func (r *Registry) RowSynced(err error) {
	if r != nil {
		r.RowsSynced.WithLabelValues(result(err)).Inc()
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
