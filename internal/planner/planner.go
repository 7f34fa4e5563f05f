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

// Package planner implements the GOAP A* search (spec.md §4.4): given a
// set of actions, a goal, and a start WorldState, it returns an ordered
// list of actions whose sequential effects satisfy the goal's
// preconditions at minimum total cost. The planner is pure — it never
// performs I/O and never touches a blackboard; internal/worldstate is
// the only bridge between blackboard state and the WorldState values
// consumed here.
package planner

import (
	"container/heap"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kadirpekel/agentry/internal/worldstate"
)

// Action is the planner's view of a catalog action: a named, costed
// state transition gated by preconditions. Cost is precomputed by the
// caller (internal/agentmodel may derive it from a token-estimated LLM
// prompt) so the planner itself never evaluates a cost function with
// side effects.
type Action struct {
	Name          string
	Preconditions map[string]bool
	Effects       map[string]bool
	Cost          float64
}

// specificity is the tie-breaking metric: higher precondition count
// wins equal-f ties (spec.md §4.4 step 5).
func (a Action) specificity() int { return len(a.Preconditions) }

// Goal is a named set of required precondition values.
type Goal struct {
	Name          string
	Preconditions map[string]bool
}

// Plan is the ordered list of actions to execute, plus the search
// statistics SPEC_FULL.md's observability layer reports as span
// attributes and a Prometheus histogram.
type Plan struct {
	Actions       []Action
	Cost          float64
	ExploredNodes int
}

// Options bounds the search per spec.md §4.4 step 7: "explored-node cap
// and wall-clock cap; exceeding either returns no plan."
type Options struct {
	MaxExploredNodes int
	MaxDuration      time.Duration
}

// DefaultOptions matches the budget spec.md calls for on "small graphs"
// (reachability prune "well under 100ms").
func DefaultOptions() Options {
	return Options{MaxExploredNodes: 10_000, MaxDuration: 2 * time.Second}
}

// ErrNoPlan is returned (wrapped with context) whenever no action
// sequence reaches the goal, whether by reachability prune, A*
// exhaustion, or budget exceeded.
type ErrNoPlan struct {
	Reason string
}

func (e *ErrNoPlan) Error() string { return "planner: no plan: " + e.Reason }

// PlanWith runs the search. now is injected so the wall-clock cap is
// testable without sleeping; callers pass time.Now in production.
func PlanWith(now func() time.Time, actions []Action, goal Goal, start worldstate.WorldState, opts Options) (Plan, error) {
	if start.Satisfied(goal.Preconditions) {
		return Plan{Actions: nil, Cost: 0, ExploredNodes: 0}, nil
	}

	if unreachable := firstUnreachableKey(actions, goal, start); unreachable != "" {
		return Plan{}, &ErrNoPlan{Reason: fmt.Sprintf("goal precondition %q is outside the action effect closure", unreachable)}
	}

	deadline := now().Add(opts.MaxDuration)
	pq := &priorityQueue{}
	heap.Init(pq)

	seq := 0
	heap.Push(pq, &node{
		state: start,
		g:     0,
		h:     heuristic(start, goal),
		seq:   seq,
	})

	best := map[string]float64{stateKey(start): 0}
	explored := 0

	for pq.Len() > 0 {
		if explored >= opts.MaxExploredNodes {
			return Plan{}, &ErrNoPlan{Reason: "explored-node cap exceeded"}
		}
		if opts.MaxDuration > 0 && now().After(deadline) {
			return Plan{}, &ErrNoPlan{Reason: "wall-clock cap exceeded"}
		}

		n := heap.Pop(pq).(*node)
		explored++

		if n.state.Satisfied(goal.Preconditions) {
			return Plan{Actions: n.path, Cost: n.g, ExploredNodes: explored}, nil
		}

		// A node may have been superseded by a cheaper path discovered
		// after it was pushed; skip stale entries.
		if bg, ok := best[stateKey(n.state)]; ok && n.g > bg {
			continue
		}

		for _, a := range actions {
			if !n.state.SatisfiedOrUnknown(a.Preconditions) {
				continue
			}
			s2 := n.state.Overlay(a.Effects)
			if statesEqual(s2, n.state) {
				continue // pure no-op: no progress, no regression
			}

			g2 := n.g + a.Cost
			key := stateKey(s2)
			// Strictly worse paths to an already-seen state are pruned.
			// Equal-cost paths are NOT pruned here: they must reach the
			// priority queue so the (specificity, insertion order)
			// tie-break in Less can choose among them, per spec.md §4.4
			// step 5. Bounded instead by the explored-node/wall-clock caps.
			if bg, ok := best[key]; ok {
				if g2 > bg {
					continue
				}
				if g2 < bg {
					best[key] = g2
				}
			} else {
				best[key] = g2
			}

			seq++
			path2 := make([]Action, len(n.path)+1)
			copy(path2, n.path)
			path2[len(n.path)] = a

			heap.Push(pq, &node{
				state:       s2,
				g:           g2,
				path:        path2,
				seq:         seq,
				specificity: a.specificity(),
				h:           heuristic(s2, goal),
			})
		}
	}

	return Plan{}, &ErrNoPlan{Reason: "search space exhausted"}
}

// Plan is the production entry point using the real clock and default
// budget.
func (o Options) Plan(actions []Action, goal Goal, start worldstate.WorldState) (Plan, error) {
	return PlanWith(time.Now, actions, goal, start, o)
}

// heuristic counts unsatisfied goal preconditions in s — admissible
// because each needs at least one action to flip (spec.md §4.4 step 2).
func heuristic(s worldstate.WorldState, goal Goal) int {
	n := 0
	for k, want := range goal.Preconditions {
		v, ok := s[k]
		if !ok || v == worldstate.Unknown || (v == worldstate.True) != want {
			n++
		}
	}
	return n
}

// firstUnreachableKey implements the reachability prune: a goal
// precondition key that is neither already satisfied in start nor ever
// mentioned in any action's effects can never be reached.
func firstUnreachableKey(actions []Action, goal Goal, start worldstate.WorldState) string {
	closure := make(map[string]bool)
	for _, a := range actions {
		for k := range a.Effects {
			closure[k] = true
		}
	}
	for k, want := range goal.Preconditions {
		if v, ok := start[k]; ok && v != worldstate.Unknown && (v == worldstate.True) == want {
			continue
		}
		if !closure[k] {
			return k
		}
	}
	return ""
}

func statesEqual(a, b worldstate.WorldState) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

// stateKey canonicalizes a WorldState into a comparable string for the
// closed-set / best-g map.
func stateKey(s worldstate.WorldState) string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(s[k].String())
		sb.WriteByte(';')
	}
	return sb.String()
}

// node is one A* search node on the priority queue.
type node struct {
	state       worldstate.WorldState
	path        []Action
	g           float64
	h           int
	seq         int
	specificity int
	index       int // heap bookkeeping
}

func (n *node) f() float64 { return n.g + float64(n.h) }

// priorityQueue implements container/heap.Interface with the strict
// tie-break order from spec.md §4.4 step 5: lower f first; equal f,
// higher specificity first; equal specificity, lower seq (earlier
// discovery / deterministic insertion order) first.
type priorityQueue []*node

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	a, b := pq[i], pq[j]
	if a.f() != b.f() {
		return a.f() < b.f()
	}
	if a.specificity != b.specificity {
		return a.specificity > b.specificity
	}
	return a.seq < b.seq
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	n := x.(*node)
	n.index = len(*pq)
	*pq = append(*pq, n)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}
