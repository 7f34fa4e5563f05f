package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/kadirpekel/agentry/internal/planner"
	"github.com/kadirpekel/agentry/internal/worldstate"
)

func TestConfig_SetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	assert.Equal(t, "agentry", cfg.Tracing.ServiceName)
	assert.Equal(t, "otlp", cfg.Tracing.Exporter)
	assert.Equal(t, 1.0, cfg.Tracing.SamplingRate)
	assert.Equal(t, "agentry", cfg.Metrics.Namespace)
}

func TestConfig_ValidateRejectsBadSamplingRate(t *testing.T) {
	cfg := Config{Tracing: TracingConfig{Enabled: true, Exporter: "otlp", SamplingRate: 2}}
	assert.Error(t, cfg.Validate())
}

func TestConfig_ValidateRejectsUnknownExporter(t *testing.T) {
	cfg := Config{Tracing: TracingConfig{Enabled: true, Exporter: "jaeger", SamplingRate: 1}}
	assert.Error(t, cfg.Validate())
}

func TestNewManager_Disabled(t *testing.T) {
	mgr, err := NewManager(context.Background(), Config{})
	require.NoError(t, err)
	assert.Nil(t, mgr.Metrics())
	assert.NotNil(t, mgr.Tracer("test"))
	assert.NoError(t, mgr.Shutdown(context.Background()))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordPlan("greeter", 1, 1, 1)
	m.RecordPlanFailure("greeter")
	m.RecordProcessStarted("greeter")
	m.RecordProcessEnded("greeter", "COMPLETED", time.Second)
	m.RecordAction("ingest", "SUCCESS", time.Millisecond)
	m.RecordActionRetry("ingest")
	assert.Nil(t, m.Registry())
}

func TestMetrics_RecordPlanObserves(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, Namespace: "agentry"})
	require.NotNil(t, m)
	m.RecordPlan("greeter", 42, 3, 6.5)

	mf, err := m.Registry().Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mf)

	found := false
	for _, f := range mf {
		if f.GetName() == "agentry_planner_explored_nodes" {
			found = true
		}
	}
	assert.True(t, found, "expected agentry_planner_explored_nodes metric family")
}

func TestDecoratePlan_RecordsAttributesAndMetrics(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, Namespace: "agentry"})
	tracer := noop.NewTracerProvider().Tracer("test")

	calls := 0
	inner := func(now func() time.Time, actions []planner.Action, goal planner.Goal, start worldstate.WorldState, opts planner.Options) (planner.Plan, error) {
		calls++
		return planner.Plan{Actions: []planner.Action{{Name: "ingest"}}, Cost: 1, ExploredNodes: 5}, nil
	}

	decorated := DecoratePlan(tracer, m, "greeter", inner)
	plan, err := decorated(time.Now, nil, planner.Goal{}, worldstate.WorldState{}, planner.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Len(t, plan.Actions, 1)
}
