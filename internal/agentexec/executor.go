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

// Package agentexec is the reference process.Executor backing the
// catalog's `executor: {type: llm, prompt: "..."}` action kind
// (SPEC_FULL.md §4.5 "LLM-backed action cost"). It renders the action's
// prompt template against the current blackboard state and calls the
// injected llm.LlmClient; every other executor type is dispatched to a
// caller-supplied fallback, keeping this package agnostic of whatever
// other action kinds a catalog declares.
package agentexec

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/kadirpekel/agentry/internal/agentmodel"
	"github.com/kadirpekel/agentry/internal/blackboard"
	"github.com/kadirpekel/agentry/internal/llm"
	"github.com/kadirpekel/agentry/internal/process"
)

// Fallback executes any action whose ExecutorType isn't "llm". Returning
// an error here that errs.IsTransient does not report as transient ends
// the process FAILED, its history step recording errs.KindOf(err)
// (InternalInvariant for an unclassified error), so a catalog that
// declares a non-llm action kind without supplying a Fallback fails
// fast rather than silently no-opping.
type Fallback func(ctx context.Context, proc *process.AgentProcess, action agentmodel.Action) (process.ActionResult, error)

// Executor dispatches `executor: {type: llm}` actions to an LlmClient
// and everything else to Fallback.
type Executor struct {
	Client   llm.LlmClient
	Fallback Fallback
}

// New builds an Executor. A nil fallback rejects every non-llm action.
func New(client llm.LlmClient, fallback Fallback) *Executor {
	if fallback == nil {
		fallback = rejectFallback
	}
	return &Executor{Client: client, Fallback: fallback}
}

func rejectFallback(_ context.Context, _ *process.AgentProcess, action agentmodel.Action) (process.ActionResult, error) {
	return process.ActionResult{}, fmt.Errorf("agentexec: no fallback registered for executor type %q (action %q)", action.ExecutorType, action.Name)
}

// Execute implements process.Executor.
func (e *Executor) Execute(ctx context.Context, proc *process.AgentProcess, action agentmodel.Action) (process.ActionResult, error) {
	if action.ExecutorType != "llm" {
		return e.Fallback(ctx, proc, action)
	}

	prompt, err := renderPrompt(action.ExecutorPrompt, proc.Board, action.Preconditions)
	if err != nil {
		return process.ActionResult{}, fmt.Errorf("agentexec: rendering prompt for action %q: %w", action.Name, err)
	}

	text, err := e.Client.Generate(ctx, prompt, llm.GenerateOptions{})
	if err != nil {
		return process.ActionResult{}, fmt.Errorf("agentexec: llm generate for action %q: %w", action.Name, err)
	}

	produced := valuesForEffects(action.Effects, text)
	return process.ActionResult{ProducedValues: produced}, nil
}

// renderPrompt executes tmplText as a text/template, exposing one key
// per "it:X" precondition the action declares — the bound value
// currently on the board assignable to X, if any. This is how the
// catalog's "{{.UserInput.text}}" resolves: UserInput names the
// precondition type, .text indexes into its (map-shaped, for dynamic
// types) value.
func renderPrompt(tmplText string, board *blackboard.Blackboard, preconditions map[string]bool) (string, error) {
	data := make(map[string]any, len(preconditions))
	for key := range preconditions {
		typeName, ok := strings.CutPrefix(key, "it:")
		if !ok {
			continue
		}
		if v, ok := board.GetValue(blackboard.DefaultBinding, typeName); ok {
			data[typeName] = v
		}
	}

	tmpl, err := template.New("action-prompt").Parse(tmplText)
	if err != nil {
		return "", fmt.Errorf("parsing prompt template: %w", err)
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing prompt template: %w", err)
	}
	return buf.String(), nil
}

// valuesForEffects appends one anonymous ProducedValue per effect key
// the action declares, tagged with that key's type name so
// worldstate.Determine's nominal "type" tag match picks it up. The raw
// generated text is the value's sole content — a catalog wanting
// structured fields should use GenerateStructured via a dedicated
// action kind instead, which this executor does not attempt to infer.
func valuesForEffects(effects map[string]bool, text string) []process.ProducedValue {
	out := make([]process.ProducedValue, 0, len(effects))
	for key, want := range effects {
		if !want {
			continue
		}
		typeName, ok := strings.CutPrefix(key, "it:")
		if !ok {
			continue
		}
		out = append(out, process.ProducedValue{
			Value: map[string]any{"type": typeName, "text": text},
		})
	}
	return out
}
