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

// Package aggregation implements on-demand synthesis of composite
// blackboard values (spec.md §4.6). Triggered from
// blackboard.Blackboard.GetValue when no direct value matches a typeName:
// for an aggregation DomainType A, every DomainTyped (component) property
// of A is resolved independently against the blackboard — hidden values
// included — and, only if every component resolves, an A instance is
// constructed and returned. Construction is idempotent and side-effect
// free: the synthesized instance is never written back to the
// blackboard.
package aggregation

import (
	"github.com/kadirpekel/agentry/internal/blackboard"
	"github.com/kadirpekel/agentry/internal/domain"
)

// Resolver implements blackboard.Resolver against a DataDictionary:
// typeName is looked up as a catalog Type, and its DomainTyped
// properties are treated as the aggregation's required components.
type Resolver struct {
	// KeepHiddenForAggregation mirrors config.BlackboardConfig's
	// keepHiddenForAggregation key (spec.md §6): when true, a hidden
	// component value still satisfies the aggregation (the default,
	// spec.md §4.6). When false, a hidden component is treated the same
	// as a missing one, so hiding a value also removes it from any
	// aggregation composed from it.
	KeepHiddenForAggregation bool
}

// NewResolver builds a dictionary-driven aggregation Resolver. It is
// stateless; dictionary and blackboard are supplied per call.
func NewResolver(keepHiddenForAggregation bool) *Resolver {
	return &Resolver{KeepHiddenForAggregation: keepHiddenForAggregation}
}

// Resolve implements blackboard.Resolver.
func (r *Resolver) Resolve(b *blackboard.Blackboard, typeName string, dict *domain.DataDictionary) (any, *domain.Type, bool) {
	if dict == nil {
		return nil, nil, false
	}
	t := dict.ByName(typeName)
	if t == nil {
		return nil, nil, false
	}

	components := componentProperties(t)
	if len(components) == 0 {
		return nil, nil, false
	}

	instance := make(map[string]any, len(components))
	for _, p := range components {
		targetName := p.Name
		if p.Target != nil {
			targetName = p.Target.Name()
		}
		v, ok := r.find(b, targetName)
		if !ok {
			return nil, nil, false
		}
		instance[p.Name] = v
	}
	return instance, t, true
}

func (r *Resolver) find(b *blackboard.Blackboard, typeName string) (any, bool) {
	if r.KeepHiddenForAggregation {
		return b.FindIncludingHidden(typeName)
	}
	return b.Find(typeName)
}

// componentProperties returns t's DomainTyped properties — the fields an
// aggregation instance is composed from.
func componentProperties(t *domain.Type) []domain.PropertyDefinition {
	var out []domain.PropertyDefinition
	for _, p := range t.Properties() {
		if p.IsDomainTyped {
			out = append(out, p)
		}
	}
	return out
}

var _ blackboard.Resolver = (*Resolver)(nil)
