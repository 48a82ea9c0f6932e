// Package metrics exports action and store counters for Prometheus.
package metrics

import (
	"context"
	"net/http"

	"github.com/alexanderramin/agendacycle/internal/domain"
	"github.com/alexanderramin/agendacycle/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "agendacycle"

// Metrics observes lifecycle actions and store mutations.
type Metrics struct {
	registry *prometheus.Registry

	actions        *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
	mutations      prometheus.Counter
	facts          *prometheus.CounterVec
	guardRejects   prometheus.Counter
}

// New registers the collectors on a fresh registry together with the Go
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Lifecycle actions by name and outcome code.",
		}, []string{"action", "code"}),
		actionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "Lifecycle action latency.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"action"}),
		mutations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_mutations_total",
			Help:      "Store mutations that changed at least one fact.",
		}),
		facts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_facts_total",
			Help:      "Facts changed by store mutations.",
		}, []string{"op"}),
		guardRejects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_busy_total",
			Help:      "Actions rejected because another action held the guard.",
		}),
	}
	reg.MustRegister(
		m.actions,
		m.actionDuration,
		m.mutations,
		m.facts,
		m.guardRejects,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveMutation implements graph.MutationObserver.
func (m *Metrics) ObserveMutation(deleted, inserted int) {
	m.mutations.Inc()
	m.facts.WithLabelValues("deleted").Add(float64(deleted))
	m.facts.WithLabelValues("inserted").Add(float64(inserted))
}

// ObserveUseCase implements service.UseCaseObserver.
func (m *Metrics) ObserveUseCase(_ context.Context, e service.UseCaseEvent) {
	m.RecordAction(e.Name, domain.CodeOf(e.Err), e.Duration.Seconds())
}

// RecordAction counts one action outcome. Busy rejections never reach the
// controller, so the action surface reports them here directly.
func (m *Metrics) RecordAction(action string, code domain.Code, seconds float64) {
	m.actions.WithLabelValues(action, string(code)).Inc()
	if code == domain.CodeBusy {
		m.guardRejects.Inc()
		return
	}
	m.actionDuration.WithLabelValues(action).Observe(seconds)
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
