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

// Package process implements the AgentProcess state machine (spec.md
// §4.5): NEW → READY → PLANNING → (EXECUTING → OBSERVING → PLANNING)* →
// (COMPLETED | FAILED | CANCELLED | STUCK). Step advances the process by
// exactly one transition; Run drives it to a terminal status.
package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kadirpekel/agentry/internal/agentmodel"
	"github.com/kadirpekel/agentry/internal/blackboard"
	"github.com/kadirpekel/agentry/internal/domain"
	"github.com/kadirpekel/agentry/internal/errs"
	"github.com/kadirpekel/agentry/internal/expr"
	"github.com/kadirpekel/agentry/internal/planner"
	"github.com/kadirpekel/agentry/internal/worldstate"
)

// Status is one node of the process state machine.
type Status string

const (
	StatusNew       Status = "NEW"
	StatusReady     Status = "READY"
	StatusPlanning  Status = "PLANNING"
	StatusExecuting Status = "EXECUTING"
	StatusObserving Status = "OBSERVING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
	StatusStuck     Status = "STUCK"
)

// Terminal reports whether s has no outgoing transition.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusStuck:
		return true
	default:
		return false
	}
}

// Outcome classifies how one action execution ended.
type Outcome string

const (
	OutcomeSuccess   Outcome = "SUCCESS"
	OutcomeTransient Outcome = "TRANSIENT_FAILURE"
	OutcomePermanent Outcome = "PERMANENT_FAILURE"
)

// PlanStep is one immutable history entry, appended after every executed
// action (spec.md §4.5: "every step appended; recoverable, immutable
// after append").
type PlanStep struct {
	ActionName string
	Outcome    Outcome
	ErrorKind  errs.Kind
	Attempt    int
}

// ProducedValue is one value an executor wants appended (Name == "") or
// bound (Name != "") to the process's blackboard.
type ProducedValue struct {
	Name  string
	Value any
	Type  *domain.Type
}

// ActionResult is what an Executor returns on success: the values it
// produced and any superseded handles to hide.
type ActionResult struct {
	ProducedValues []ProducedValue
	Hide           []blackboard.Handle
}

// Executor runs one action's effect against the world outside the
// blackboard (an LLM call, a tool invocation, ...). A non-nil error
// classified via errs.IsTransient as transient is retried; anything
// else ends the process FAILED.
type Executor interface {
	Execute(ctx context.Context, proc *AgentProcess, action agentmodel.Action) (ActionResult, error)
}

// InitialInput is one value bound into the blackboard on NEW → READY.
type InitialInput struct {
	Name  string
	Value any
	Type  *domain.Type
}

// Options configures one AgentProcess run.
type Options struct {
	// Goal names the agent.Goals entry this process pursues. May be
	// omitted only if the agent declares exactly one goal.
	Goal string

	MaxRetriesPerAction  int
	DefaultActionTimeout time.Duration
	RetryBaseDelay       time.Duration
	PlannerOptions       planner.Options

	// Now, if set, overrides time.Now for the planner's wall-clock cap
	// (tests only; production processes leave this nil).
	Now func() time.Time
	// Sleep, if set, overrides time.Sleep for retry backoff (tests only).
	Sleep func(time.Duration)

	// Persist, if set, is called on every OBSERVING → PLANNING
	// transition so a Store can checkpoint blackboard state and
	// history after each completed action (spec.md §6's optional
	// "(processId, agentRef, blackboard snapshot, history)" tuple).
	// Persistence is best-effort: a failing Persist call is logged and
	// never fails the process.
	Persist PersistFunc

	// Plan, if set, replaces planner.PlanWith as the function stepPlanning
	// calls to produce the next plan. internal/observability wraps this
	// to add tracing/metrics around planning without the planner itself
	// (or this package) knowing observability exists.
	Plan PlanFunc
}

// PersistFunc checkpoints a running process. internal/persistence.Store
// is the reference implementation; process itself stays independent of
// any storage backend.
type PersistFunc func(proc *AgentProcess) error

// PlanFunc produces a plan from the current world state. Its signature
// matches planner.PlanWith exactly so any decorator can wrap that
// function directly.
type PlanFunc func(now func() time.Time, actions []planner.Action, goal planner.Goal, start worldstate.WorldState, opts planner.Options) (planner.Plan, error)

func (o Options) withDefaults() Options {
	if o.MaxRetriesPerAction <= 0 {
		o.MaxRetriesPerAction = 3
	}
	if o.DefaultActionTimeout <= 0 {
		o.DefaultActionTimeout = 30 * time.Second
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = 200 * time.Millisecond
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Sleep == nil {
		o.Sleep = time.Sleep
	}
	if o.Plan == nil {
		o.Plan = planner.PlanWith
	}
	return o
}

// AgentProcess is one running instance of an agentmodel.Agent pursuing
// one goal over its own blackboard.
type AgentProcess struct {
	ID     string
	Agent  *agentmodel.Agent
	Board  *blackboard.Blackboard
	Dict   *domain.DataDictionary
	Parser expr.Parser
	Events EventSink

	opts    Options
	goal    planner.Goal
	initial []InitialInput

	mu            sync.Mutex
	status        Status
	history       []PlanStep
	cancelled     bool
	retries       map[string]int
	plan          planner.Plan
	currentAction *agentmodel.Action
	stuckReason   string
}

// New constructs an AgentProcess in status NEW. initial is bound into
// the blackboard on the first Step call (NEW → READY).
func New(id string, agent *agentmodel.Agent, dict *domain.DataDictionary, board *blackboard.Blackboard, parser expr.Parser, initial []InitialInput, opts Options) (*AgentProcess, error) {
	goal, err := selectGoal(agent, opts.Goal)
	if err != nil {
		return nil, err
	}
	return &AgentProcess{
		ID:      id,
		Agent:   agent,
		Board:   board,
		Dict:    dict,
		Parser:  parser,
		Events:  NopEventSink{},
		opts:    opts.withDefaults(),
		goal:    goal.Goal,
		initial: initial,
		status:  StatusNew,
		retries: make(map[string]int),
	}, nil
}

func selectGoal(agent *agentmodel.Agent, name string) (agentmodel.Goal, error) {
	if name == "" {
		if len(agent.Goals) == 1 {
			return agent.Goals[0], nil
		}
		return agentmodel.Goal{}, fmt.Errorf("process: agent %q declares %d goals, must name one via Options.Goal", agent.Name, len(agent.Goals))
	}
	for _, g := range agent.Goals {
		if g.Name == name {
			return g, nil
		}
	}
	return agentmodel.Goal{}, fmt.Errorf("process: agent %q has no goal named %q", agent.Name, name)
}

// Status returns the current state machine node.
func (p *AgentProcess) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// History returns a snapshot copy of every appended PlanStep.
func (p *AgentProcess) History() []PlanStep {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PlanStep, len(p.history))
	copy(out, p.history)
	return out
}

// Cancel requests cooperative cancellation. Checked between states,
// never mid-executor (spec.md §4.5).
func (p *AgentProcess) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled = true
}

func (p *AgentProcess) isCancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelled
}

func (p *AgentProcess) setStatus(s Status) {
	p.mu.Lock()
	p.status = s
	p.mu.Unlock()
}

func (p *AgentProcess) appendHistory(step PlanStep) {
	p.mu.Lock()
	p.history = append(p.history, step)
	p.mu.Unlock()
}

// Run drives Step until the process reaches a terminal status or ctx is
// cancelled.
func (p *AgentProcess) Run(ctx context.Context, executor Executor) error {
	for !p.Status().Terminal() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := p.Step(ctx, executor); err != nil {
			return err
		}
	}
	return nil
}

// Step advances the process by exactly one state machine transition.
// Calling Step on a terminal process is a no-op.
func (p *AgentProcess) Step(ctx context.Context, executor Executor) error {
	if p.Status().Terminal() {
		return nil
	}
	if p.isCancelled() {
		p.setStatus(StatusCancelled)
		p.Events.ProcessEnded(p, StatusCancelled)
		return nil
	}

	switch p.Status() {
	case StatusNew:
		return p.stepNew()
	case StatusReady:
		p.setStatus(StatusPlanning)
		return nil
	case StatusPlanning:
		return p.stepPlanning()
	case StatusExecuting:
		return p.stepExecuting(ctx, executor)
	case StatusObserving:
		p.persist()
		p.setStatus(StatusPlanning)
		return nil
	default:
		return nil
	}
}

func (p *AgentProcess) stepNew() error {
	for _, in := range p.initial {
		var err error
		if in.Name == "" {
			_, err = p.Board.Append(in.Value, in.Type)
		} else {
			_, err = p.Board.Bind(in.Name, in.Value, in.Type)
		}
		if err != nil {
			return fmt.Errorf("process %s: binding initial input: %w", p.ID, err)
		}
	}
	p.setStatus(StatusReady)
	p.Events.ProcessStarted(p)
	return nil
}

// stepPlanning implements READY/OBSERVING → PLANNING's body: determine
// world state, decide COMPLETED/STUCK/EXECUTING within this single call
// (spec.md §4.5 and §8's state-machine-progress invariant).
func (p *AgentProcess) stepPlanning() error {
	ws := worldstate.Determine(p.Board, p.Dict, p.Parser, p.Agent.Keys())

	if ws.Satisfied(p.goal.Preconditions) {
		p.setStatus(StatusCompleted)
		p.Events.ProcessEnded(p, StatusCompleted)
		return nil
	}

	plannerOpts := p.opts.PlannerOptions
	if plannerOpts == (planner.Options{}) {
		plannerOpts = planner.DefaultOptions()
	}
	plan, err := p.opts.Plan(p.opts.Now, p.Agent.PlannerActions(), p.goal, ws, plannerOpts)
	if err != nil || len(plan.Actions) == 0 {
		p.mu.Lock()
		p.stuckReason = planErrorReason(err)
		p.mu.Unlock()
		p.setStatus(StatusStuck)
		p.Events.ProcessEnded(p, StatusStuck)
		return nil
	}

	next := plan.Actions[0]
	action := p.lookupAction(next.Name)
	if action == nil {
		return fmt.Errorf("process %s: planner returned unknown action %q", p.ID, next.Name)
	}

	p.mu.Lock()
	p.plan = plan
	p.currentAction = action
	p.mu.Unlock()

	p.setStatus(StatusExecuting)
	p.Events.Planned(p, plan)
	return nil
}

func planErrorReason(err error) string {
	if err == nil {
		return "planner returned an empty plan"
	}
	return err.Error()
}

func (p *AgentProcess) lookupAction(name string) *agentmodel.Action {
	for i := range p.Agent.Actions {
		if p.Agent.Actions[i].Name == name {
			return &p.Agent.Actions[i]
		}
	}
	return nil
}

func (p *AgentProcess) stepExecuting(ctx context.Context, executor Executor) error {
	p.mu.Lock()
	action := p.currentAction
	p.mu.Unlock()
	if action == nil {
		return fmt.Errorf("process %s: EXECUTING with no current action", p.ID)
	}

	p.Events.ActionStarted(p, *action)

	timeout := action.Timeout
	if timeout <= 0 {
		timeout = p.opts.DefaultActionTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	result, err := executor.Execute(execCtx, p, *action)
	cancel()

	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		err = errs.Wrap(errs.ActionFailurePermanent, fmt.Sprintf("action %q timed out", action.Name), errs.New(errs.Timeout, "deadline exceeded"))
	}

	if err != nil {
		return p.handleActionFailure(action.Name, err)
	}

	p.applyResult(result)
	p.mu.Lock()
	p.retries[action.Name] = 0
	p.mu.Unlock()

	step := PlanStep{ActionName: action.Name, Outcome: OutcomeSuccess}
	p.appendHistory(step)
	p.setStatus(StatusObserving)
	p.Events.ActionCompleted(p, step)
	return nil
}

func (p *AgentProcess) handleActionFailure(actionName string, err error) error {
	if errs.IsTransient(err) {
		p.mu.Lock()
		p.retries[actionName]++
		attempt := p.retries[actionName]
		p.mu.Unlock()

		if attempt > p.opts.MaxRetriesPerAction {
			step := PlanStep{ActionName: actionName, Outcome: OutcomePermanent, ErrorKind: errs.ActionFailurePermanent, Attempt: attempt}
			p.appendHistory(step)
			p.setStatus(StatusFailed)
			p.Events.ActionFailed(p, step)
			p.Events.ProcessEnded(p, StatusFailed)
			return nil
		}

		step := PlanStep{ActionName: actionName, Outcome: OutcomeTransient, ErrorKind: errs.ActionFailureTransient, Attempt: attempt}
		p.appendHistory(step)
		p.Events.ActionFailed(p, step)

		backoff := p.opts.RetryBaseDelay * time.Duration(1<<uint(attempt-1))
		p.opts.Sleep(backoff)

		// each retry re-checks preconditions before re-executing.
		p.setStatus(StatusPlanning)
		return nil
	}

	kind := errs.KindOf(err)
	step := PlanStep{ActionName: actionName, Outcome: OutcomePermanent, ErrorKind: kind}
	p.appendHistory(step)
	p.setStatus(StatusFailed)
	p.Events.ActionFailed(p, step)
	p.Events.ProcessEnded(p, StatusFailed)
	return nil
}

func (p *AgentProcess) applyResult(result ActionResult) {
	for _, h := range result.Hide {
		p.Board.Hide(h)
	}
	for _, v := range result.ProducedValues {
		if v.Name == "" {
			p.Board.Append(v.Value, v.Type)
		} else {
			p.Board.Bind(v.Name, v.Value, v.Type)
		}
	}
}

// StuckReason returns why a STUCK process has no plan. Empty unless
// Status() == StatusStuck.
func (p *AgentProcess) StuckReason() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stuckReason
}

// CurrentPlan returns the most recently computed plan (empty before the
// first PLANNING transition).
func (p *AgentProcess) CurrentPlan() planner.Plan {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plan
}

func (p *AgentProcess) persist() {
	if p.opts.Persist == nil {
		return
	}
	if err := p.opts.Persist(p); err != nil {
		slog.Warn("process: checkpoint failed", "process_id", p.ID, "error", err)
	}
}
