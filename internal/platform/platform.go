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

// Package platform implements the AgentPlatform: a concurrent registry
// of running AgentProcess instances plus the fire-and-forget event bus
// they publish through (SPEC_FULL.md §4.5/§9). It owns dispatch — how
// many processes run at once — but not process semantics, which live
// entirely in internal/process.
package platform

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kadirpekel/agentry/internal/process"
	"github.com/kadirpekel/agentry/internal/registry"
)

// Platform dispatches submitted processes onto a bounded worker pool,
// the same SetLimit-bounded errgroup idiom the teacher's component
// manager uses for concurrent provider initialization.
type Platform struct {
	processes *registry.BaseRegistry[*process.AgentProcess]
	Events    *EventBus
	group     *errgroup.Group
}

// New constructs a Platform that runs at most concurrency processes at
// once. concurrency <= 0 means unbounded.
func New(concurrency int) *Platform {
	g := &errgroup.Group{}
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	return &Platform{
		processes: registry.NewBaseRegistry[*process.AgentProcess](),
		Events:    NewEventBus(),
		group:     g,
	}
}

// Submit registers proc and schedules it to run to completion against
// executor, subject to the platform's concurrency bound. Submit returns
// as soon as scheduling succeeds; it does not wait for the process to
// finish. proc.Events is rebound to the platform's bus.
func (p *Platform) Submit(ctx context.Context, proc *process.AgentProcess, executor process.Executor) error {
	if err := p.processes.Register(proc.ID, proc); err != nil {
		return fmt.Errorf("platform: submit: %w", err)
	}
	proc.Events = p.Events

	p.group.Go(func() error {
		return proc.Run(ctx, executor)
	})
	return nil
}

// Status returns the current state machine status of the process
// registered under id.
func (p *Platform) Status(id string) (process.Status, error) {
	proc, ok := p.processes.Get(id)
	if !ok {
		return "", fmt.Errorf("platform: no process %q", id)
	}
	return proc.Status(), nil
}

// History returns the full PlanStep history for the process registered
// under id.
func (p *Platform) History(id string) ([]process.PlanStep, error) {
	proc, ok := p.processes.Get(id)
	if !ok {
		return nil, fmt.Errorf("platform: no process %q", id)
	}
	return proc.History(), nil
}

// Cancel requests cooperative cancellation of the process registered
// under id.
func (p *Platform) Cancel(id string) error {
	proc, ok := p.processes.Get(id)
	if !ok {
		return fmt.Errorf("platform: no process %q", id)
	}
	proc.Cancel()
	return nil
}

// Get returns the AgentProcess registered under id.
func (p *Platform) Get(id string) (*process.AgentProcess, bool) {
	return p.processes.Get(id)
}

// List returns every currently registered process, in no particular
// order.
func (p *Platform) List() []*process.AgentProcess {
	return p.processes.List()
}

// Wait blocks until every submitted process has run to completion, for
// graceful shutdown and tests. Returns the first non-nil error any
// process's Run returned, if any.
func (p *Platform) Wait() error {
	return p.group.Wait()
}
