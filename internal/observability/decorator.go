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
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kadirpekel/agentry/internal/planner"
	"github.com/kadirpekel/agentry/internal/process"
	"github.com/kadirpekel/agentry/internal/worldstate"
)

// DecoratePlan wraps planFn (ordinarily planner.PlanWith) with a
// planner.plan span carrying explored_nodes/plan_length/plan_cost
// attributes, plus the matching Prometheus observations. The planner
// itself never imports this package: every call here only touches
// planFn's inputs and outputs, never its internals, so instrumentation
// can never influence a planning decision.
func DecoratePlan(tracer trace.Tracer, metrics *Metrics, agent string, planFn process.PlanFunc) process.PlanFunc {
	return func(now func() time.Time, actions []planner.Action, goal planner.Goal, start worldstate.WorldState, opts planner.Options) (planner.Plan, error) {
		_, span := tracer.Start(context.Background(), "planner.plan")
		defer span.End()

		plan, err := planFn(now, actions, goal, start, opts)

		span.SetAttributes(
			attribute.Int("explored_nodes", plan.ExploredNodes),
			attribute.Int("plan_length", len(plan.Actions)),
			attribute.Float64("plan_cost", plan.Cost),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.RecordPlanFailure(agent)
			return plan, err
		}
		if len(plan.Actions) == 0 {
			metrics.RecordPlanFailure(agent)
		}
		metrics.RecordPlan(agent, plan.ExploredNodes, len(plan.Actions), plan.Cost)
		return plan, err
	}
}
