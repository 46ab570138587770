// Package metrics exposes Prometheus counters for editor and response activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
)

// Metrics groups the service counters
type Metrics struct {
	registry *prometheus.Registry

	Mutations      *prometheus.CounterVec
	RulesDropped   prometheus.Counter
	Responses      prometheus.Counter
	HiddenAnswers  prometheus.Counter
	ParseFallbacks prometheus.Counter
}

// New creates the counters on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "surveyeditor",
			Name:      "editor_mutations_total",
			Help:      "Editor mutations by operation and result.",
		}, []string{"op", "result"}),
		RulesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surveyeditor",
			Name:      "branch_rules_dropped_total",
			Help:      "Display-logic rules dropped because their trigger became invalid.",
		}),
		Responses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surveyeditor",
			Name:      "responses_total",
			Help:      "Survey responses stored.",
		}),
		HiddenAnswers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surveyeditor",
			Name:      "hidden_answers_discarded_total",
			Help:      "Submitted answers discarded because display logic hid the question.",
		}),
		ParseFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surveyeditor",
			Name:      "editor_parse_fallbacks_total",
			Help:      "Editing sessions started empty because the stored questions could not be parsed.",
		}),
	}
	m.registry.MustRegister(m.Mutations, m.RulesDropped, m.Responses, m.HiddenAnswers, m.ParseFallbacks)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry, mainly for tests
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}
