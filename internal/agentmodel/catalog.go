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

// Package agentmodel loads the YAML catalog of data dictionaries,
// agents, actions, and goals (SPEC_FULL.md §3 "Catalog file format")
// and builds the in-memory types internal/domain, internal/planner, and
// internal/worldstate consume. Catalog decode follows the teacher's
// config-loading shape: plain yaml.v3 struct tags throughout, including
// the precondition/effect maps, which are fixed-shape
// map[string]bool fields rather than a freeform fragment.
package agentmodel

// PropertyDef is one dictionary type property in catalog form.
type PropertyDef struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// TypeDef is one dictionary type entry. Kind is "dynamic" (the common
// case — name/parents/properties declared directly in YAML) or
// "reflected" (bound to a Go type registered at compile time via
// RegisterReflected; see reflected.go).
type TypeDef struct {
	Name          string        `yaml:"name"`
	Kind          string        `yaml:"kind"`
	Properties    []PropertyDef `yaml:"properties,omitempty"`
	Parents       []string      `yaml:"parents,omitempty"`
	AggregationOf []string      `yaml:"aggregationOf,omitempty"`
}

// DictionaryDef is the catalog's `dictionary:` block.
type DictionaryDef struct {
	Types []TypeDef `yaml:"types"`
}

// ExecutorDef declares how an action is carried out. Type "llm" adds a
// cost derived from the token count of the Prompt template text, counted
// as written and not rendered, to the action's literal Cost field
// (SPEC_FULL.md §4.5); any other Type uses the literal Cost field alone.
type ExecutorDef struct {
	Type   string `yaml:"type"`
	Prompt string `yaml:"prompt,omitempty"`
}

// ActionDef is one action entry under an agent. TimeoutMs overrides the
// process-wide default action timeout (spec.md §4.5 "Timeouts per
// action"); zero means "use the process default".
type ActionDef struct {
	Name          string          `yaml:"name"`
	Preconditions map[string]bool `yaml:"preconditions,omitempty"`
	Effects       map[string]bool `yaml:"effects,omitempty"`
	Cost          float64         `yaml:"cost"`
	TimeoutMs     int             `yaml:"timeoutMs,omitempty"`
	Executor      ExecutorDef     `yaml:"executor"`
}

// GoalDef is one goal entry under an agent.
type GoalDef struct {
	Name          string          `yaml:"name"`
	Preconditions map[string]bool `yaml:"preconditions,omitempty"`
}

// AgentDef is one `agents:` catalog entry.
type AgentDef struct {
	Name    string      `yaml:"name"`
	Actions []ActionDef `yaml:"actions,omitempty"`
	Goals   []GoalDef   `yaml:"goals,omitempty"`
}

// Catalog is the top-level YAML document.
type Catalog struct {
	Dictionary DictionaryDef `yaml:"dictionary"`
	Agents     []AgentDef    `yaml:"agents"`
}
