// Package metrics collects Prometheus counters/histograms for the Agent
// Loop, tool executor, and channels, grounded on haasonsaas-nexus's
// observability.Metrics (promauto-registered CounterVec/HistogramVec per
// concern), trimmed to the operations SPEC_FULL.md actually names —
// message queue depth, webhook-specific counters, and cost/context-window
// tracking from the fuller nexus implementation have no corresponding
// RRClaw component and are not carried over.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector RRClaw registers.
type Metrics struct {
	MessagesTotal *prometheus.CounterVec // labels: channel, direction

	LLMRequestDuration *prometheus.HistogramVec // labels: provider, model
	LLMRequestsTotal   *prometheus.CounterVec   // labels: provider, model, status

	ToolExecutionDuration *prometheus.HistogramVec // labels: tool, status
	ToolExecutionsTotal   *prometheus.CounterVec   // labels: tool, status

	InjectionBlocksTotal *prometheus.CounterVec // labels: tool

	ActiveSessions *prometheus.GaugeVec // labels: channel

	RoutineRunsTotal *prometheus.CounterVec // labels: job, status
}

// New registers and returns the full metric set. Must be called once at
// startup; calling it twice in the same process panics via promauto's
// default-registry collision.
func New() *Metrics {
	return &Metrics{
		MessagesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rrclaw_messages_total",
				Help: "Total number of messages processed by channel and direction",
			},
			[]string{"channel", "direction"},
		),
		LLMRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rrclaw_llm_request_duration_seconds",
				Help:    "Duration of LLM API requests in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider", "model"},
		),
		LLMRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rrclaw_llm_requests_total",
				Help: "Total number of LLM requests by provider, model, and status",
			},
			[]string{"provider", "model", "status"},
		),
		ToolExecutionDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rrclaw_tool_execution_duration_seconds",
				Help:    "Duration of tool executions in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{"tool", "status"},
		),
		ToolExecutionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rrclaw_tool_executions_total",
				Help: "Total number of tool executions by tool and status",
			},
			[]string{"tool", "status"},
		),
		InjectionBlocksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rrclaw_injection_blocks_total",
				Help: "Total number of tool outputs flagged by the injection inspector",
			},
			[]string{"tool"},
		),
		ActiveSessions: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rrclaw_active_sessions",
				Help: "Current number of active conversation sessions",
			},
			[]string{"channel"},
		),
		RoutineRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rrclaw_routine_runs_total",
				Help: "Total number of scheduled routine runs by job and status",
			},
			[]string{"job", "status"},
		),
	}
}

// ObserveToolExecution records one tool invocation's outcome and latency.
func (m *Metrics) ObserveToolExecution(tool string, success bool, d time.Duration) {
	status := statusLabel(success)
	m.ToolExecutionsTotal.WithLabelValues(tool, status).Inc()
	m.ToolExecutionDuration.WithLabelValues(tool, status).Observe(d.Seconds())
}

// ObserveLLMRequest records one provider call's outcome and latency.
func (m *Metrics) ObserveLLMRequest(provider, model string, success bool, d time.Duration) {
	status := statusLabel(success)
	m.LLMRequestsTotal.WithLabelValues(provider, model, status).Inc()
	m.LLMRequestDuration.WithLabelValues(provider, model).Observe(d.Seconds())
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
