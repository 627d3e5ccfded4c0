// Package metricsvc exposes bulk action counters to prometheus.
package metricsvc

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/ratiba/core/bulk"
	"github.com/trezcool/ratiba/core/workload"
)

// Outcomes
const (
	outcomeOK      = "ok"
	outcomeRefused = "refused" // empty scope
	outcomeError   = "error"
)

// Observer counts bulk actions. It owns its registry so several instances can coexist (eg. in tests).
type Observer struct {
	registry *prometheus.Registry
	actions  *prometheus.CounterVec
	teachers *prometheus.CounterVec
	deleted  prometheus.Counter
}

var _ bulk.Observer = (*Observer)(nil)

func NewObserver(namespace string) *Observer {
	obs := &Observer{
		registry: prometheus.NewRegistry(),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_actions_total",
			Help:      "Bulk actions by action, scope and outcome.",
		}, []string{"action", "scope", "outcome"}),
		teachers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_action_teachers_total",
			Help:      "Teachers covered by successful bulk actions.",
		}, []string{"action"}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_deleted_assignments_total",
			Help:      "Assignments deleted by bulk deletes.",
		}),
	}
	obs.registry.MustRegister(obs.actions, obs.teachers, obs.deleted)
	return obs
}

func (obs *Observer) ActionCompleted(ev bulk.Event) {
	outcome := outcomeOK
	switch {
	case workload.IsEmptyScope(ev.Err):
		outcome = outcomeRefused
	case ev.Err != nil:
		outcome = outcomeError
	}
	obs.actions.WithLabelValues(string(ev.Action), string(ev.Scope), outcome).Inc()
	if ev.Err == nil {
		obs.teachers.WithLabelValues(string(ev.Action)).Add(float64(ev.Teachers))
		obs.deleted.Add(float64(ev.Deleted))
	}
}

// Handler serves the registry in the prometheus exposition format.
func (obs *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(obs.registry, promhttp.HandlerOpts{Registry: obs.registry})
}

func (obs *Observer) Registry() *prometheus.Registry { return obs.registry }
