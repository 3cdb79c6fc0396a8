// Package metrics exposes editor and validation activity as Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/techwithparamesh/agentflow/pkg/editor"
	"github.com/techwithparamesh/agentflow/pkg/validation"
)

// Metrics holds the collectors. Each instance owns its registry so tests and
// multiple workspaces never collide.
type Metrics struct {
	registry    *prometheus.Registry
	commands    *prometheus.CounterVec
	validations *prometheus.CounterVec
	duration    prometheus.Histogram
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agentflow",
				Name:      "editor_commands_total",
				Help:      "Editor commands by command name and outcome (apply, undo, redo).",
			},
			[]string{"command", "op"},
		),
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agentflow",
				Name:      "workflow_validations_total",
				Help:      "Workflow validation runs by resulting stage.",
			},
			[]string{"stage"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agentflow",
			Name:      "workflow_validation_duration_seconds",
			Help:      "Time spent validating a workflow.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		}),
	}
	m.registry.MustRegister(m.commands, m.validations, m.duration)
	return m
}

// EditorHooks counts every applied, undone and redone command.
func (m *Metrics) EditorHooks() editor.Hooks {
	return editor.Hooks{
		OnApply: func(c string) { m.commands.WithLabelValues(c, "apply").Inc() },
		OnUndo:  func(c string) { m.commands.WithLabelValues(c, "undo").Inc() },
		OnRedo:  func(c string) { m.commands.WithLabelValues(c, "redo").Inc() },
	}
}

// ValidationObserver records the stage and duration of each validation run.
func (m *Metrics) ValidationObserver() validation.Observer {
	return func(res validation.WorkflowValidationResult, took time.Duration) {
		m.validations.WithLabelValues(string(res.Stage)).Inc()
		m.duration.Observe(took.Seconds())
	}
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
