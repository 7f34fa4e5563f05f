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
	"fmt"
	"time"

	"github.com/kadirpekel/agentry/internal/domain"
	"github.com/kadirpekel/agentry/internal/planner"
	"github.com/kadirpekel/agentry/internal/tokencount"
)

// BuildOptions configures catalog construction.
type BuildOptions struct {
	// Reflected resolves `kind: reflected` type entries. May be nil if
	// the catalog declares no reflected types.
	Reflected *ReflectedRegistry

	// CostPer1kTokens scales the token count of an `executor: {type:
	// llm}` action's prompt template (unrendered) into a planner cost
	// added to its declared Cost (SPEC_FULL.md §4.5). Zero means LLM actions contribute zero extra cost beyond
	// their declared Cost field.
	CostPer1kTokens float64
}

// Build converts a parsed Catalog into a DataDictionary and a set of
// runtime Agents. Dynamic types are built in two passes so that parent
// and aggregation-component references may appear before or after their
// target's own declaration in YAML.
func Build(cat *Catalog, opts BuildOptions) (*domain.DataDictionary, []*Agent, error) {
	dict, err := buildDictionary(cat.Dictionary, opts)
	if err != nil {
		return nil, nil, err
	}

	counter, counterErr := tokencount.Shared()

	agents := make([]*Agent, 0, len(cat.Agents))
	for _, ad := range cat.Agents {
		agent, err := buildAgent(ad, opts, counter, counterErr)
		if err != nil {
			return nil, nil, fmt.Errorf("agent %q: %w", ad.Name, err)
		}
		agents = append(agents, agent)
	}
	return dict, agents, nil
}

func buildDictionary(def DictionaryDef, opts BuildOptions) (*domain.DataDictionary, error) {
	dict := domain.NewDataDictionary()
	byName := make(map[string]*domain.Type, len(def.Types))

	// Pass 1: construct every non-aggregation type with empty
	// parents/properties so forward references resolve.
	for _, td := range def.Types {
		switch td.Kind {
		case "", "dynamic":
			if len(td.AggregationOf) > 0 {
				continue // built in pass 3, once components exist
			}
			t := domain.NewDynamicType(td.Name, nil, nil)
			byName[td.Name] = t
		case "reflected":
			if opts.Reflected == nil {
				return nil, fmt.Errorf("dictionary type %q: kind reflected but no ReflectedRegistry configured", td.Name)
			}
			rt := opts.Reflected.Lookup(td.Name)
			if rt == nil {
				return nil, fmt.Errorf("dictionary type %q: no Go type registered under this name", td.Name)
			}
			byName[td.Name] = domain.NewReflectedType(rt)
		default:
			return nil, fmt.Errorf("dictionary type %q: unknown kind %q", td.Name, td.Kind)
		}
	}

	// Pass 2: fill in properties and parents for dynamic types (parents
	// must themselves be dynamic, per domain.NewDynamicType's contract).
	for _, td := range def.Types {
		if td.Kind != "" && td.Kind != "dynamic" {
			continue
		}
		if len(td.AggregationOf) > 0 {
			continue
		}
		t := byName[td.Name]
		props := make([]domain.PropertyDefinition, 0, len(td.Properties))
		for _, pd := range td.Properties {
			props = append(props, domain.PropertyDefinition{Name: pd.Name, ScalarType: pd.Type})
		}
		parents := make([]*domain.Type, 0, len(td.Parents))
		for _, pname := range td.Parents {
			p, ok := byName[pname]
			if !ok {
				return nil, fmt.Errorf("dictionary type %q: parent %q not declared", td.Name, pname)
			}
			if p.Kind() != domain.KindDynamic {
				return nil, fmt.Errorf("dictionary type %q: parent %q is not dynamic", td.Name, pname)
			}
			parents = append(parents, p)
		}
		t.SetDynamicFields(props, parents)
	}

	// Pass 3: aggregation types, now that every component exists.
	for _, td := range def.Types {
		if len(td.AggregationOf) == 0 {
			continue
		}
		components := make([]*domain.Type, 0, len(td.AggregationOf))
		for _, cname := range td.AggregationOf {
			c, ok := byName[cname]
			if !ok {
				return nil, fmt.Errorf("dictionary type %q: aggregation component %q not declared", td.Name, cname)
			}
			components = append(components, c)
		}
		byName[td.Name] = domain.NewAggregationType(td.Name, components)
	}

	for _, t := range byName {
		dict.Add(t)
	}
	return dict, nil
}

func buildAgent(ad AgentDef, opts BuildOptions, counter *tokencount.Counter, counterErr error) (*Agent, error) {
	agent := &Agent{Name: ad.Name}

	for _, actDef := range ad.Actions {
		cost := actDef.Cost
		if actDef.Executor.Type == "llm" && actDef.Executor.Prompt != "" {
			if counterErr != nil {
				return nil, fmt.Errorf("action %q: token counter unavailable: %w", actDef.Name, counterErr)
			}
			tokens := counter.Count(actDef.Executor.Prompt)
			cost += tokencount.EstimateCost(tokens, opts.CostPer1kTokens)
		}
		agent.Actions = append(agent.Actions, Action{
			Action: planner.Action{
				Name:          actDef.Name,
				Preconditions: actDef.Preconditions,
				Effects:       actDef.Effects,
				Cost:          cost,
			},
			ExecutorType:   actDef.Executor.Type,
			ExecutorPrompt: actDef.Executor.Prompt,
			Timeout:        time.Duration(actDef.TimeoutMs) * time.Millisecond,
		})
	}

	for _, goalDef := range ad.Goals {
		agent.Goals = append(agent.Goals, Goal{
			Goal: planner.Goal{Name: goalDef.Name, Preconditions: goalDef.Preconditions},
		})
	}

	return agent, nil
}
