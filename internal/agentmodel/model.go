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

package agentmodel

import (
	"time"

	"github.com/kadirpekel/agentry/internal/planner"
)

// Action is the runtime action: a planner.Action plus the executor
// metadata (internal/process dispatches on ExecutorType/Prompt; the
// planner only ever sees the embedded planner.Action). Timeout, if
// nonzero, overrides internal/process's default per-action timeout.
type Action struct {
	planner.Action
	ExecutorType   string
	ExecutorPrompt string
	Timeout        time.Duration
}

// Goal is the runtime goal: a planner.Goal plus its declared name.
type Goal struct {
	planner.Goal
}

// Agent is one catalog agent: its actions and goals, ready to feed
// internal/worldstate.Determine and internal/planner.Plan.
type Agent struct {
	Name    string
	Actions []Action
	Goals   []Goal
}

// Keys returns every precondition/effect key referenced by any of the
// agent's actions or goals, deduplicated, in first-seen order — the
// key set internal/worldstate.Determine needs to build a WorldState
// covering "every key appearing in any action or goal of the agent"
// (spec.md §4.3).
func (a *Agent) Keys() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(m map[string]bool) {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	for _, act := range a.Actions {
		add(act.Preconditions)
		add(act.Effects)
	}
	for _, g := range a.Goals {
		add(g.Preconditions)
	}
	return out
}

// PlannerActions returns the agent's actions as plain planner.Action
// values, the shape planner.PlanWith consumes.
func (a *Agent) PlannerActions() []planner.Action {
	out := make([]planner.Action, len(a.Actions))
	for i, act := range a.Actions {
		out[i] = act.Action
	}
	return out
}
