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

// Package worldstate derives a WorldState — a map from precondition/
// effect key to tri-state truth value — from a blackboard snapshot
// (spec.md §4.3). The planner (internal/planner) consumes WorldState
// values but never calls back into a blackboard itself; this package is
// the only bridge between the stateful blackboard and the pure planner.
package worldstate

import (
	"strings"

	"github.com/kadirpekel/agentry/internal/blackboard"
	"github.com/kadirpekel/agentry/internal/domain"
	"github.com/kadirpekel/agentry/internal/expr"
)

// TriState is a three-valued truth value. UNKNOWN is distinct from
// FALSE: it never satisfies a goal precondition but also never blocks an
// action precondition (planner treats it as a wildcard, spec.md §4.4).
type TriState int

const (
	Unknown TriState = iota
	True
	False
)

func (s TriState) String() string {
	switch s {
	case True:
		return "TRUE"
	case False:
		return "FALSE"
	default:
		return "UNKNOWN"
	}
}

// FromBool converts a plain bool to True/False.
func FromBool(b bool) TriState {
	if b {
		return True
	}
	return False
}

// WorldState is an immutable snapshot keyed by precondition/effect key
// ("it:X", "name:X", "expr:..."). Overlay produces a new WorldState with
// effects applied, never mutating the receiver — the planner relies on
// this to explore alternate branches from the same parent node.
type WorldState map[string]TriState

// Satisfied reports whether ws satisfies every key in preconditions with
// the tri-state value the precondition's own map says it must have.
// TRUE matches TRUE, FALSE matches FALSE; UNKNOWN never satisfies
// (spec.md §4.4 step 4).
func (ws WorldState) Satisfied(preconditions map[string]bool) bool {
	for k, want := range preconditions {
		v, ok := ws[k]
		if !ok || v == Unknown {
			return false
		}
		if (v == True) != want {
			return false
		}
	}
	return true
}

// SatisfiedOrUnknown reports whether no precondition is explicitly
// violated — TRUE/FALSE values must match their requirement, but a
// missing or UNKNOWN key never blocks. Used by the planner's successor
// filter: "preconditions all satisfied or unknown" (spec.md §4.4 step 3).
func (ws WorldState) SatisfiedOrUnknown(preconditions map[string]bool) bool {
	for k, want := range preconditions {
		v, ok := ws[k]
		if !ok || v == Unknown {
			continue
		}
		if (v == True) != want {
			return false
		}
	}
	return true
}

// Overlay returns a new WorldState equal to ws with effects applied on
// top (effects win on key collision).
func (ws WorldState) Overlay(effects map[string]bool) WorldState {
	out := make(WorldState, len(ws)+len(effects))
	for k, v := range ws {
		out[k] = v
	}
	for k, v := range effects {
		out[k] = FromBool(v)
	}
	return out
}

// Clone returns a shallow copy.
func (ws WorldState) Clone() WorldState {
	out := make(WorldState, len(ws))
	for k, v := range ws {
		out[k] = v
	}
	return out
}

// Determine produces a WorldState over exactly the given keys, evaluated
// against b and dict per spec.md §4.3. keys is gathered by the caller
// (typically internal/agentmodel) from every precondition/effect key
// referenced by the agent's actions and goals.
func Determine(b *blackboard.Blackboard, dict *domain.DataDictionary, parser expr.Parser, keys []string) WorldState {
	ws := make(WorldState, len(keys))
	for _, key := range keys {
		ws[key] = determineOne(b, parser, key)
	}
	return ws
}

func determineOne(b *blackboard.Blackboard, parser expr.Parser, key string) TriState {
	switch {
	case strings.HasPrefix(key, "it:"):
		return determineIt(b, strings.TrimPrefix(key, "it:"))
	case strings.HasPrefix(key, "name:"):
		return determineName(b, strings.TrimPrefix(key, "name:"))
	case strings.HasPrefix(key, "expr:"):
		return determineExpr(b, parser, strings.TrimPrefix(key, "expr:"))
	default:
		return Unknown
	}
}

// determineIt: TRUE iff the blackboard has any non-hidden value
// assignable to a dictionary type named X (simple or fully-qualified).
// Resolution rides on the blackboard's own bound DataDictionary (set at
// construction) rather than a per-call parameter.
func determineIt(b *blackboard.Blackboard, typeName string) TriState {
	if _, ok := b.GetValue(blackboard.DefaultBinding, typeName); ok {
		return True
	}
	return False
}

// determineName: TRUE iff a value bound to name exists and is
// assignable to X (or, for a raw map, nominally tagged X).
func determineName(b *blackboard.Blackboard, spec string) TriState {
	name, typeName, ok := splitNameSpec(spec)
	if !ok {
		return Unknown
	}
	if _, ok := b.GetValue(name, typeName); ok {
		return True
	}
	// distinguish "binding absent" (Unknown would be wrong per spec —
	// spec.md §4.3 says name:X is FALSE whenever the bound value isn't
	// assignable to X, including when no value is bound at all).
	return False
}

// splitNameSpec parses "binding/TypeName" out of a name: key body. The
// catalog encodes name keys as "name:binding/TypeName"; callers that
// pass a bare type name (no binding) are rejected as undecidable since
// the binding is mandatory for this key form.
func splitNameSpec(spec string) (name, typeName string, ok bool) {
	idx := strings.Index(spec, "/")
	if idx < 0 {
		return "", "", false
	}
	return spec[:idx], spec[idx+1:], true
}

// determineExpr delegates to the configured expression parser.
func determineExpr(b *blackboard.Blackboard, parser expr.Parser, source string) TriState {
	if parser == nil {
		return Unknown
	}
	v, err := parser.Evaluate(source, conditionLookup(b))
	if err != nil {
		return Unknown
	}
	switch v {
	case expr.True:
		return True
	case expr.False:
		return False
	default:
		return Unknown
	}
}

func conditionLookup(b *blackboard.Blackboard) expr.ConditionLookup {
	return func(key string) (bool, bool) {
		return b.GetCondition(key)
	}
}
