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

// Package blackboard implements the ordered, append-mostly workspace of
// typed domain objects described in spec.md §3/§4.1: bindings, hiding,
// name/type lookup, and the condition map. A Blackboard is created when
// an AgentProcess starts and destroyed when it terminates; it is owned
// exclusively by that process (spec.md §3, Lifecycle).
package blackboard

import (
	"sync"

	"github.com/kadirpekel/agentry/internal/domain"
	"github.com/kadirpekel/agentry/internal/errs"
)

// Handle is an opaque, monotonically increasing identity assigned to
// every appended value. spec.md §9 calls for reference identity where
// available and an "opaque handle" fallback for value-typed domains;
// since Go values stored in an `any` are boxed, using a handle
// uniformly (rather than pointer identity) avoids divergent behavior
// between pointer-shaped and value-shaped domain objects.
type Handle uint64

// Binding is one (optional-name, value) entry in the blackboard.
type Binding struct {
	Handle Handle
	Name   string // empty for append(); non-empty for bind(name, v)
	Value  any
	Type   *domain.Type
}

// DefaultBinding (spec.md's DEFAULT_BINDING) is the sentinel passed to
// GetValue to search the whole blackboard rather than a single named
// binding, per spec.md §4.1.
const DefaultBinding = ""

// Resolver synthesizes aggregation values on demand when GetValue finds
// no direct match (spec.md §4.6). Implemented by internal/aggregation;
// injected here to avoid a dependency cycle (aggregation needs to read
// the blackboard, blackboard needs to call aggregation).
type Resolver interface {
	Resolve(b *Blackboard, typeName string, dict *domain.DataDictionary) (any, *domain.Type, bool)
}

// Blackboard is the per-process workspace. Safe for concurrent use,
// though spec.md §5 notes ordering guarantees only matter within one
// process's sequential plan/act/observe loop; the lock exists to allow
// a long-running action executor to append from a goroutine it spawned
// without corrupting the slice.
type Blackboard struct {
	mu         sync.Mutex
	bindings   []Binding
	hidden     map[Handle]bool
	conditions map[string]bool
	nextHandle Handle
	resolver   Resolver
	dict       *domain.DataDictionary
}

// New creates an empty Blackboard against the given data dictionary.
// resolver may be nil, in which case aggregation resolution is skipped
// (GetValue behaves as if no aggregation ever matches).
func New(dict *domain.DataDictionary, resolver Resolver) *Blackboard {
	return &Blackboard{
		hidden:     make(map[Handle]bool),
		conditions: make(map[string]bool),
		resolver:   resolver,
		dict:       dict,
	}
}

// Append adds an unnamed value, typed via t, and returns its Handle.
// O(1); concurrent appends are serialized by mu. Appending a nil value
// is rejected as InvalidInput (spec.md §4.1).
func (b *Blackboard) Append(value any, t *domain.Type) (Handle, error) {
	return b.bind("", value, t)
}

// Bind adds a named value, typed via t, and returns its Handle.
func (b *Blackboard) Bind(name string, value any, t *domain.Type) (Handle, error) {
	if name == "" {
		return 0, errs.New(errs.InvalidInput, "bind: name must not be empty")
	}
	return b.bind(name, value, t)
}

func (b *Blackboard) bind(name string, value any, t *domain.Type) (Handle, error) {
	if value == nil {
		return 0, errs.New(errs.InvalidInput, "blackboard: cannot append a nil value")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	h := b.nextHandle
	b.nextHandle++
	b.bindings = append(b.bindings, Binding{Handle: h, Name: name, Value: value, Type: t})
	return h, nil
}

// Hide marks the value at handle hidden. Idempotent; hiding a handle
// that was never appended (or already hidden) is a no-op, per spec.md
// §4.1/§8 ("hide monotonicity").
func (b *Blackboard) Hide(h Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if h >= b.nextHandle {
		return
	}
	b.hidden[h] = true
}

// HideValue hides the newest non-hidden binding whose Value is v
// (by reference-identity semantics approximated via ==, since Go gives
// us no pointer-identity hook for interface values beyond equality).
// This mirrors the spec.md API shape `hide(value)`; prefer Hide(handle)
// when the handle is already known (e.g. returned from Append).
func (b *Blackboard) HideValue(v any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.bindings) - 1; i >= 0; i-- {
		bd := b.bindings[i]
		if b.hidden[bd.Handle] {
			continue
		}
		if bd.Value == v {
			b.hidden[bd.Handle] = true
			return
		}
	}
}

func (b *Blackboard) isHiddenLocked(h Handle) bool {
	return b.hidden[h]
}

// Get returns the newest binding with the given name that is not
// hidden, or (nil, false).
func (b *Blackboard) Get(name string) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.bindings) - 1; i >= 0; i-- {
		bd := b.bindings[i]
		if bd.Name == name && !b.isHiddenLocked(bd.Handle) {
			return bd.Value, true
		}
	}
	return nil, false
}

// Bindings returns a snapshot of all bindings in insertion order,
// including hidden ones (used by aggregation resolution and by history
// snapshots for persistence). Callers must not mutate the returned slice.
func (b *Blackboard) Bindings() []Binding {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Binding, len(b.bindings))
	copy(out, b.bindings)
	return out
}

// IsHidden reports whether handle h is currently hidden.
func (b *Blackboard) IsHidden(h Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.isHiddenLocked(h)
}

// GetValue resolves typeName against binding (DefaultBinding to search
// the whole board, or a specific name to search one binding), falling
// back to aggregation resolution per spec.md §4.1/§4.6.
func (b *Blackboard) GetValue(binding string, typeName string) (any, bool) {
	if binding == DefaultBinding {
		if v, ok := b.findAssignable(typeName); ok {
			return v, true
		}
	} else {
		if v, ok := b.findNamedAssignable(binding, typeName); ok {
			return v, true
		}
	}

	if b.resolver != nil {
		if v, _, ok := b.resolver.Resolve(b, typeName, b.dict); ok {
			return v, true
		}
	}
	return nil, false
}

// findAssignable searches from newest to oldest for a non-hidden value
// whose DomainType is assignable to a dictionary type matching typeName
// by label or by name. A raw map value (no domain.Type attached) is
// matched by a nominal "type" tag if present.
func (b *Blackboard) findAssignable(typeName string) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.bindings) - 1; i >= 0; i-- {
		bd := b.bindings[i]
		if b.isHiddenLocked(bd.Handle) {
			continue
		}
		if b.matches(bd, typeName) {
			return bd.Value, true
		}
	}
	return nil, false
}

// findNamedAssignable locates the newest non-hidden value bound to name
// and tests it against typeName.
func (b *Blackboard) findNamedAssignable(name, typeName string) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.bindings) - 1; i >= 0; i-- {
		bd := b.bindings[i]
		if bd.Name != name || b.isHiddenLocked(bd.Handle) {
			continue
		}
		if b.matches(bd, typeName) {
			return bd.Value, true
		}
		return nil, false // newest binding for name found but type mismatch
	}
	return nil, false
}

// Find searches newest-to-oldest for a non-hidden value matching
// typeName. Unlike GetValue it never falls back to aggregation
// resolution — it is the non-hidden counterpart to FindIncludingHidden,
// used by the aggregation resolver when keepHiddenForAggregation is
// false so a hidden component is treated as absent rather than synthesized.
func (b *Blackboard) Find(typeName string) (any, bool) {
	return b.findAssignable(typeName)
}

// FindIncludingHidden searches newest-to-oldest for a value matching
// typeName, hidden bindings included. Used by the aggregation resolver,
// which per spec.md §4.6 "sees everything" when resolving an
// aggregation's composed fields.
func (b *Blackboard) FindIncludingHidden(typeName string) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.bindings) - 1; i >= 0; i-- {
		bd := b.bindings[i]
		if b.matches(bd, typeName) {
			return bd.Value, true
		}
	}
	return nil, false
}

func (b *Blackboard) matches(bd Binding, typeName string) bool {
	if bd.Type != nil && b.dict != nil {
		if b.dict.AssignableToName(bd.Type, typeName) {
			return true
		}
	}
	if m, ok := bd.Value.(map[string]any); ok {
		if tag, ok := m["type"].(string); ok {
			return tag == typeName
		}
	}
	return false
}

// SetCondition is a last-write-wins scalar condition store.
func (b *Blackboard) SetCondition(key string, v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conditions[key] = v
}

// GetCondition returns the last-set value for key, or (false, false) if
// never set.
func (b *Blackboard) GetCondition(key string) (bool, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.conditions[key]
	return v, ok
}

// Conditions returns a snapshot copy of the condition map.
func (b *Blackboard) Conditions() map[string]bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]bool, len(b.conditions))
	for k, v := range b.conditions {
		out[k] = v
	}
	return out
}

// Dictionary returns the data dictionary this blackboard resolves
// against.
func (b *Blackboard) Dictionary() *domain.DataDictionary {
	return b.dict
}
