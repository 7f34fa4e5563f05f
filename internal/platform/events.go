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

package platform

import (
	"sync"

	"github.com/kadirpekel/agentry/internal/agentmodel"
	"github.com/kadirpekel/agentry/internal/planner"
	"github.com/kadirpekel/agentry/internal/process"
)

// EventKind names one point in an AgentProcess's lifecycle.
type EventKind string

const (
	EventProcessStarted  EventKind = "process_started"
	EventPlanned         EventKind = "planned"
	EventActionStarted   EventKind = "action_started"
	EventActionCompleted EventKind = "action_completed"
	EventActionFailed    EventKind = "action_failed"
	EventProcessEnded    EventKind = "process_ended"
)

// Event is one notification fanned out to EventBus subscribers. Only the
// field relevant to Kind is populated.
type Event struct {
	ProcessID string
	Kind      EventKind
	Status    process.Status
	Plan      planner.Plan
	Action    agentmodel.Action
	Step      process.PlanStep
}

// Subscriber receives Events. Must not assume delivery order across
// different processes, and should not block — EventBus does not wait
// for a subscriber to return before considering an event delivered.
type Subscriber func(Event)

// EventBus fans out AgentProcess lifecycle events to any number of
// subscribers, fire-and-forget, with no back-pressure on the process
// loop (SPEC_FULL.md §4.5/§9). It implements process.EventSink, so it
// can be assigned directly to AgentProcess.Events.
type EventBus struct {
	mu   sync.RWMutex
	subs map[int]Subscriber
	next int
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[int]Subscriber)}
}

// Subscribe registers fn and returns an unsubscribe function.
func (b *EventBus) Subscribe(fn Subscriber) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *EventBus) publish(evt Event) {
	b.mu.RLock()
	fns := make([]Subscriber, 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		go fn(evt)
	}
}

func (b *EventBus) ProcessStarted(p *process.AgentProcess) {
	b.publish(Event{ProcessID: p.ID, Kind: EventProcessStarted})
}

func (b *EventBus) Planned(p *process.AgentProcess, plan planner.Plan) {
	b.publish(Event{ProcessID: p.ID, Kind: EventPlanned, Plan: plan})
}

func (b *EventBus) ActionStarted(p *process.AgentProcess, action agentmodel.Action) {
	b.publish(Event{ProcessID: p.ID, Kind: EventActionStarted, Action: action})
}

func (b *EventBus) ActionCompleted(p *process.AgentProcess, step process.PlanStep) {
	b.publish(Event{ProcessID: p.ID, Kind: EventActionCompleted, Step: step})
}

func (b *EventBus) ActionFailed(p *process.AgentProcess, step process.PlanStep) {
	b.publish(Event{ProcessID: p.ID, Kind: EventActionFailed, Step: step})
}

func (b *EventBus) ProcessEnded(p *process.AgentProcess, status process.Status) {
	b.publish(Event{ProcessID: p.ID, Kind: EventProcessEnded, Status: status})
}

var _ process.EventSink = (*EventBus)(nil)
