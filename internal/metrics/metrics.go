// Package metrics provides Prometheus metrics for the orchestration core.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the core's Prometheus collectors.
type Metrics struct {
	RunsStarted      prometheus.Counter
	RunsFinished     *prometheus.CounterVec // label: status
	RunDuration      prometheus.Histogram
	PollTicks        prometheus.Counter
	ToolRounds       prometheus.Counter
	ToolExecutions   *prometheus.CounterVec // labels: tool, status
	MessagesSynced   prometheus.Counter
	ConflictRetries  prometheus.Counter
	RunTimeouts      prometheus.Counter
	ActiveOperations prometheus.Gauge
}

var (
	defaultMetrics *Metrics
	defaultOnce    sync.Once
)

// Default returns the process-wide metrics collectors, registering them on the
// default registry on first use. promauto panics on double registration, hence
// the sync.Once.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = &Metrics{
			RunsStarted: promauto.NewCounter(prometheus.CounterOpts{
				Name: "assistant_runs_started_total",
				Help: "Total number of runs started",
			}),
			RunsFinished: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "assistant_runs_finished_total",
				Help: "Total number of runs that reached a terminal state, by status",
			}, []string{"status"}),
			RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "assistant_run_duration_seconds",
				Help:    "Wall-clock duration from run start to terminal state",
				Buckets: []float64{1, 2, 5, 10, 30, 60, 120, 300},
			}),
			PollTicks: promauto.NewCounter(prometheus.CounterOpts{
				Name: "assistant_run_poll_ticks_total",
				Help: "Total number of run status polls",
			}),
			ToolRounds: promauto.NewCounter(prometheus.CounterOpts{
				Name: "assistant_tool_rounds_total",
				Help: "Total number of requires-action rounds resolved",
			}),
			ToolExecutions: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "assistant_tool_executions_total",
				Help: "Total number of tool executions, by tool and final status",
			}, []string{"tool", "status"}),
			MessagesSynced: promauto.NewCounter(prometheus.CounterOpts{
				Name: "assistant_messages_synced_total",
				Help: "Total number of remote messages mirrored into local records",
			}),
			ConflictRetries: promauto.NewCounter(prometheus.CounterOpts{
				Name: "assistant_conflict_retries_total",
				Help: "Total number of append retries after an active-run rejection",
			}),
			RunTimeouts: promauto.NewCounter(prometheus.CounterOpts{
				Name: "assistant_run_timeouts_total",
				Help: "Total number of runs abandoned after the await timeout",
			}),
			ActiveOperations: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "assistant_active_operations",
				Help: "Send-message operations currently in flight",
			}),
		}
	})
	return defaultMetrics
}
