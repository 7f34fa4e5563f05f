// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the runtime: planning,
// process lifecycle, and action execution.
type Metrics struct {
	registry *prometheus.Registry

	plannerExploredNodes *prometheus.HistogramVec
	plannerPlanLength    *prometheus.HistogramVec
	plannerPlanCost      *prometheus.HistogramVec
	plannerFailures      *prometheus.CounterVec

	processesStarted *prometheus.CounterVec
	processesEnded   *prometheus.CounterVec
	processDuration  *prometheus.HistogramVec

	actionCalls     *prometheus.CounterVec
	actionDuration  *prometheus.HistogramVec
	actionRetries   *prometheus.CounterVec
}

// NewMetrics builds a Metrics registered under cfg.Namespace, or
// returns nil when metrics are disabled — every Record* method is a
// nil-safe no-op, matching the teacher's pattern of letting a nil
// receiver silently swallow calls instead of forcing callers to check.
func NewMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}

	m := &Metrics{registry: prometheus.NewRegistry()}
	ns := cfg.Namespace

	m.plannerExploredNodes = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns, Subsystem: "planner", Name: "explored_nodes",
		Help:    "Number of A* nodes explored per Plan call.",
		Buckets: prometheus.ExponentialBuckets(8, 2, 14), // 8 .. ~131k
	}, []string{"agent"})
	m.plannerPlanLength = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns, Subsystem: "planner", Name: "plan_length",
		Help:    "Number of actions in the plan returned by Plan.",
		Buckets: prometheus.LinearBuckets(1, 2, 10),
	}, []string{"agent"})
	m.plannerPlanCost = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns, Subsystem: "planner", Name: "plan_cost",
		Help:    "Total cost of the plan returned by Plan.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"agent"})
	m.plannerFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "planner", Name: "failures_total",
		Help: "Total Plan calls that returned no plan.",
	}, []string{"agent"})

	m.processesStarted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "process", Name: "started_total",
		Help: "Total AgentProcess runs started.",
	}, []string{"agent"})
	m.processesEnded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "process", Name: "ended_total",
		Help: "Total AgentProcess runs reaching a terminal status.",
	}, []string{"agent", "status"})
	m.processDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns, Subsystem: "process", Name: "duration_seconds",
		Help:    "Wall-clock time from process start to a terminal status.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 16),
	}, []string{"agent", "status"})

	m.actionCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "action", Name: "calls_total",
		Help: "Total action executions attempted.",
	}, []string{"action", "outcome"})
	m.actionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns, Subsystem: "action", Name: "duration_seconds",
		Help:    "Action execution duration in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 15),
	}, []string{"action"})
	m.actionRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "action", Name: "retries_total",
		Help: "Total retries issued after a transient action failure.",
	}, []string{"action"})

	m.registry.MustRegister(
		m.plannerExploredNodes, m.plannerPlanLength, m.plannerPlanCost, m.plannerFailures,
		m.processesStarted, m.processesEnded, m.processDuration,
		m.actionCalls, m.actionDuration, m.actionRetries,
	)
	return m
}

func (m *Metrics) RecordPlan(agent string, exploredNodes, planLength int, planCost float64) {
	if m == nil {
		return
	}
	m.plannerExploredNodes.WithLabelValues(agent).Observe(float64(exploredNodes))
	m.plannerPlanLength.WithLabelValues(agent).Observe(float64(planLength))
	m.plannerPlanCost.WithLabelValues(agent).Observe(planCost)
}

func (m *Metrics) RecordPlanFailure(agent string) {
	if m == nil {
		return
	}
	m.plannerFailures.WithLabelValues(agent).Inc()
}

func (m *Metrics) RecordProcessStarted(agent string) {
	if m == nil {
		return
	}
	m.processesStarted.WithLabelValues(agent).Inc()
}

func (m *Metrics) RecordProcessEnded(agent, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.processesEnded.WithLabelValues(agent, status).Inc()
	m.processDuration.WithLabelValues(agent, status).Observe(duration.Seconds())
}

func (m *Metrics) RecordAction(action, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.actionCalls.WithLabelValues(action, outcome).Inc()
	m.actionDuration.WithLabelValues(action).Observe(duration.Seconds())
}

func (m *Metrics) RecordActionRetry(action string) {
	if m == nil {
		return
	}
	m.actionRetries.WithLabelValues(action).Inc()
}

// Handler returns the HTTP handler serving this registry's metrics in
// the Prometheus exposition format, or a 503 handler when m is nil.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("metrics not enabled"))
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying Prometheus registry, or nil.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
