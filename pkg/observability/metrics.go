package observability

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/coredata/pkg/domain"
)

// Metrics collects resolver activity.
type Metrics struct {
	registry prometheus.Gatherer

	Requests   *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	Dispatches *prometheus.CounterVec
	Errors     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coredata_requests_total",
				Help: "REST requests issued by resolvers",
			},
			[]string{"resolver", "status"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coredata_request_duration_seconds",
				Help:    "Duration of REST requests issued by resolvers",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"resolver"},
		),
		Dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coredata_dispatches_total",
				Help: "Actions dispatched to the client store",
			},
			[]string{"resolver", "action"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coredata_resolver_errors_total",
				Help: "Resolvers that finished with an error",
			},
			[]string{"resolver"},
		),
	}
	reg.MustRegister(m.Requests, m.Duration, m.Dispatches, m.Errors)
	return m
}

// Hooks returns runner hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnResponse: func(_ context.Context, e *domain.RequestEvent) {
			m.Requests.WithLabelValues(e.Resolver, statusLabel(e)).Inc()
			m.Duration.WithLabelValues(e.Resolver).Observe(e.Duration.Seconds())
		},
		OnDispatch: func(_ context.Context, e *domain.DispatchEvent) {
			m.Dispatches.WithLabelValues(e.Resolver, string(e.Action)).Inc()
		},
		OnError: func(_ context.Context, e *domain.ErrorEvent) {
			m.Errors.WithLabelValues(e.Resolver).Inc()
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func statusLabel(e *domain.RequestEvent) string {
	switch {
	case e.Status != 0:
		return strconv.Itoa(e.Status)
	case e.IsError:
		return "error"
	default:
		return "ok"
	}
}

// Chain merges hooks so several observers can watch the same runner.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRequest: func(ctx context.Context, e *domain.RequestEvent) {
			for _, h := range hooks {
				if h.OnRequest != nil {
					h.OnRequest(ctx, e)
				}
			}
		},
		OnResponse: func(ctx context.Context, e *domain.RequestEvent) {
			for _, h := range hooks {
				if h.OnResponse != nil {
					h.OnResponse(ctx, e)
				}
			}
		},
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			for _, h := range hooks {
				if h.OnDispatch != nil {
					h.OnDispatch(ctx, e)
				}
			}
		},
		OnError: func(ctx context.Context, e *domain.ErrorEvent) {
			for _, h := range hooks {
				if h.OnError != nil {
					h.OnError(ctx, e)
				}
			}
		},
	}
}
