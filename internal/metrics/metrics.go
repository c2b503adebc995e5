// Package metrics holds the Prometheus collectors of one application.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "webshell"

// Invoke outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

// Invoke routes.
const (
	RouteModule  = "module"
	RoutePlugin  = "plugin"
	RouteCommand = "command"
	RoutePage    = "page_load"
)

// Metrics is a registry plus the collectors the shell updates. Each
// application owns one so tests can build several side by side.
type Metrics struct {
	registry *prometheus.Registry

	invokesTotal    *prometheus.CounterVec
	invokeDuration  *prometheus.HistogramVec
	windowsOpen     prometheus.Gauge
	eventsTriggered prometheus.Counter
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New creates a registry with the shell collectors and the Go runtime
// collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		invokesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invokes_total",
				Help:      "Total number of invoke messages by route and outcome",
			},
			[]string{"route", "outcome"},
		),
		invokeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "invoke_duration_seconds",
				Help:      "Time from receiving an invoke to delivering its result",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		windowsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "windows_open",
			Help:      "Number of attached windows",
		}),
		eventsTriggered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_triggered_total",
			Help:      "Total number of events triggered on the host bus",
		}),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"path", "method", "status"},
		),
	}
	m.registry.MustRegister(
		m.invokesTotal,
		m.invokeDuration,
		m.windowsOpen,
		m.eventsTriggered,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveInvoke records one finished invoke.
func (m *Metrics) ObserveInvoke(route, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.invokesTotal.WithLabelValues(route, outcome).Inc()
	m.invokeDuration.WithLabelValues(route).Observe(time.Since(started).Seconds())
}

// WindowAttached increments the open window gauge.
func (m *Metrics) WindowAttached() {
	if m == nil {
		return
	}
	m.windowsOpen.Inc()
}

// WindowDestroyed decrements the open window gauge.
func (m *Metrics) WindowDestroyed() {
	if m == nil {
		return
	}
	m.windowsOpen.Dec()
}

// EventTriggered counts a host-side trigger.
func (m *Metrics) EventTriggered() {
	if m == nil {
		return
	}
	m.eventsTriggered.Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming handlers working behind the middleware.
func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware instruments HTTP requests.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sr, r)
		path := routePatternOrPath(r)
		status := strconv.Itoa(sr.status)
		m.httpRequests.WithLabelValues(path, r.Method, status).Inc()
		m.httpDuration.WithLabelValues(path, r.Method, status).Observe(time.Since(start).Seconds())
	})
}

// routePatternOrPath prefers the chi route pattern to keep label
// cardinality bounded.
func routePatternOrPath(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
