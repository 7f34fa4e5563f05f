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

// Package llm declares the LlmClient contract an AgentProcess's
// `executor: {type: llm}` action calls through (spec.md §6). This
// package defines the interface only — no vendor backend is wired here,
// matching the explicit "no language-model implementation" Non-goal.
package llm

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateOptions are the sampling/shape knobs spec.md §6 enumerates.
type GenerateOptions struct {
	Temperature      float64
	TopP             float64
	TopK             int
	PresencePenalty  float64
	FrequencyPenalty float64
	MaxTokens        int
	Tools            []string
}

// StructuredOutputConfig binds a Go type to the JSON schema
// GenerateStructured asks the model to conform to, built with the same
// reflector settings the teacher's function-tool schema generator uses
// (inlined definitions, no $schema/$id noise, required-from-tag).
type StructuredOutputConfig struct {
	Schema map[string]any
}

// NewStructuredOutputConfig reflects T into a StructuredOutputConfig.
func NewStructuredOutputConfig[T any]() (StructuredOutputConfig, error) {
	reflector := &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		DoNotReference:             true,
	}
	schema := reflector.Reflect(new(T))

	data, err := json.Marshal(schema)
	if err != nil {
		return StructuredOutputConfig{}, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return StructuredOutputConfig{}, err
	}
	delete(m, "$schema")
	delete(m, "$id")
	return StructuredOutputConfig{Schema: m}, nil
}

// LlmClient is the injected contract an `executor: {type: llm}` action
// invokes. Implementations convert provider-specific failures into the
// errors.go taxonomy at the boundary — no vendor error type crosses it.
type LlmClient interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	GenerateStructured(ctx context.Context, prompt string, cfg StructuredOutputConfig) (map[string]any, error)
}

// NopClient is a reference LlmClient: Generate echoes the prompt back
// (useful for tests and for documenting the contract's shape), and
// GenerateStructured returns an empty object whatever the schema. No
// network call is ever made.
type NopClient struct{}

func (NopClient) Generate(_ context.Context, prompt string, _ GenerateOptions) (string, error) {
	return prompt, nil
}

func (NopClient) GenerateStructured(_ context.Context, _ string, _ StructuredOutputConfig) (map[string]any, error) {
	return map[string]any{}, nil
}

var _ LlmClient = NopClient{}
