// Package metrics exposes Prometheus collectors for the toast lifecycle and
// the HTTP control API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jmylchreest/toastd/internal/model"
	"github.com/jmylchreest/toastd/internal/toast"
)

// Metrics holds the toastd collectors and the registry they are registered with.
type Metrics struct {
	registry *prometheus.Registry

	NotificationsShown   *prometheus.CounterVec
	NotificationsRemoved *prometheus.CounterVec
	NotificationsLive    *prometheus.GaugeVec
	HTTPRequests         *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec
}

// New creates the collectors on a dedicated registry. Go runtime and
// process collectors are registered alongside.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		NotificationsShown: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toastd_notifications_shown_total",
				Help: "Total number of notifications shown",
			},
			[]string{"color"},
		),
		NotificationsRemoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toastd_notifications_removed_total",
				Help: "Total number of notifications removed, by reason",
			},
			[]string{"reason"},
		),
		NotificationsLive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "toastd_notifications_live",
				Help: "Number of live notifications, by phase",
			},
			[]string{"phase"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toastd_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toastd_http_request_duration_seconds",
				Help:    "Histogram of response durations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
	}

	m.registry.MustRegister(
		m.NotificationsShown,
		m.NotificationsRemoved,
		m.NotificationsLive,
		m.HTTPRequests,
		m.RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Both phases are exported from the start so dashboards see zeros.
	m.NotificationsLive.WithLabelValues(model.PhaseActive.String())
	m.NotificationsLive.WithLabelValues(model.PhaseLeaving.String())
	return m
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe is a toast.Listener that keeps the lifecycle collectors current.
func (m *Metrics) Observe(ev toast.Event) {
	switch ev.Type {
	case toast.EventShown:
		m.NotificationsShown.WithLabelValues(colorLabel(ev.Notification.Color)).Inc()
		m.NotificationsLive.WithLabelValues(model.PhaseActive.String()).Inc()
	case toast.EventLeaving:
		m.NotificationsLive.WithLabelValues(model.PhaseActive.String()).Dec()
		m.NotificationsLive.WithLabelValues(model.PhaseLeaving.String()).Inc()
	case toast.EventRemoved:
		m.NotificationsRemoved.WithLabelValues(string(ev.Reason)).Inc()
		m.NotificationsLive.WithLabelValues(ev.Phase.String()).Dec()
	}
}

// colorLabel bounds label cardinality: hex colors collapse to "custom".
func colorLabel(c model.Color) string {
	switch {
	case c == model.ColorNone:
		return "none"
	case c.IsSemantic():
		return string(c)
	default:
		return "custom"
	}
}

// UnmatchedRoute is the path label of requests that matched no route.
const UnmatchedRoute = "unmatched"

// Middleware records request counts and durations. The path label is the
// matched chi route pattern, so ids in URLs do not create new series.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	h := func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)
		duration := time.Since(start).Seconds()

		path := UnmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.HTTPRequests.WithLabelValues(path, r.Method, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(path, r.Method).Observe(duration)
	}

	return http.HandlerFunc(h)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
