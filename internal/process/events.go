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

package process

import (
	"github.com/kadirpekel/agentry/internal/agentmodel"
	"github.com/kadirpekel/agentry/internal/planner"
)

// EventSink receives lifecycle notifications from an AgentProcess.
// Implementations must not block — internal/platform's event bus fans
// these out to subscribers fire-and-forget (SPEC_FULL.md §4.5/§9).
type EventSink interface {
	ProcessStarted(p *AgentProcess)
	Planned(p *AgentProcess, plan planner.Plan)
	ActionStarted(p *AgentProcess, action agentmodel.Action)
	ActionCompleted(p *AgentProcess, step PlanStep)
	ActionFailed(p *AgentProcess, step PlanStep)
	ProcessEnded(p *AgentProcess, status Status)
}

// NopEventSink discards every event. New installs it as the default
// AgentProcess.Events.
type NopEventSink struct{}

func (NopEventSink) ProcessStarted(*AgentProcess)                  {}
func (NopEventSink) Planned(*AgentProcess, planner.Plan)            {}
func (NopEventSink) ActionStarted(*AgentProcess, agentmodel.Action) {}
func (NopEventSink) ActionCompleted(*AgentProcess, PlanStep)        {}
func (NopEventSink) ActionFailed(*AgentProcess, PlanStep)           {}
func (NopEventSink) ProcessEnded(*AgentProcess, Status)             {}

var _ EventSink = NopEventSink{}
