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

// Package domain implements the unified description of blackboard value
// types (spec.md §3/§4.2): DomainType as a Reflected/Dynamic variant,
// PropertyDefinition, Relationship, and the DataDictionary that ties a
// catalog of types together and derives allowed relationships between
// them.
package domain

import "reflect"

// Cardinality describes how many values a DomainTyped property may hold.
type Cardinality string

const (
	CardinalityOne      Cardinality = "ONE"
	CardinalityOptional Cardinality = "OPTIONAL"
	CardinalityList     Cardinality = "LIST"
	CardinalitySet      Cardinality = "SET"
)

// Kind distinguishes the two DomainType variants. Cross-kind
// assignability is always false — this is load-bearing per spec.md §3
// and §9 ("preserve this or test suites break").
type Kind string

const (
	KindReflected Kind = "reflected"
	KindDynamic   Kind = "dynamic"
)

// PropertyDefinition describes one field of a DomainType. Exactly one of
// ScalarType (Simple) or Target (DomainTyped) is meaningful, selected by
// IsDomainTyped.
type PropertyDefinition struct {
	Name          string
	Description   string
	IsDomainTyped bool

	// Simple variant.
	ScalarType string

	// DomainTyped variant.
	Target      *Type
	Cardinality Cardinality
}

// Type is the polymorphic DomainType. Construct via NewReflectedType or
// NewDynamicType; do not build the zero value directly since assignability
// dispatch depends on kind being set consistently with the populated
// fields.
type Type struct {
	kind Kind

	// name is the DomainType's identifying name: a Go type's fully
	// qualified name for Reflected, or the declared name for Dynamic.
	name string

	// Reflected-only.
	reflectType reflect.Type

	// Dynamic-only.
	ownProperties []PropertyDefinition
	parents       []*Type // explicit parents; transitive closure computed lazily

	// Reflected also carries ownProperties, discovered by field
	// enumeration at construction time (spec.md §3: "properties
	// discovered by field enumeration").
}

// NewReflectedType builds a Type bound to a host Go type. Properties are
// discovered by enumerating t's exported struct fields, after unwrapping
// pointer types; an interface type yields no properties. Parents are not modeled explicitly
// for Reflected types — ancestry is delegated entirely to reflect's
// AssignableTo/Implements at query time.
func NewReflectedType(t reflect.Type) *Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	dt := &Type{
		kind:        KindReflected,
		name:        fullName(t),
		reflectType: t,
	}
	dt.ownProperties = reflectProperties(t)
	return dt
}

// NewDynamicType builds a name-identified Type with explicit parents and
// own properties. Parents must themselves be Dynamic; a Dynamic type
// with a Reflected parent is a configuration error the catalog loader
// rejects before constructing the Type (see agentmodel's loader).
func NewDynamicType(name string, ownProperties []PropertyDefinition, parents []*Type) *Type {
	return &Type{
		kind:          KindDynamic,
		name:          name,
		ownProperties: ownProperties,
		parents:       parents,
	}
}

// NewAggregationType builds a Dynamic Type whose own properties are one
// CardinalityOne DomainTyped property per component, named after the
// component's simple name (catalog `aggregationOf: [A, B]` shorthand).
// Resolution of an aggregation Type's instance happens in
// internal/aggregation, per spec.md §4.6: every component property must
// resolve from the blackboard (hidden values included) before an
// instance is synthesized.
func NewAggregationType(name string, components []*Type) *Type {
	props := make([]PropertyDefinition, 0, len(components))
	for _, c := range components {
		props = append(props, PropertyDefinition{
			Name:          simpleName(c.Name()),
			IsDomainTyped: true,
			Target:        c,
			Cardinality:   CardinalityOne,
		})
	}
	return NewDynamicType(name, props, nil)
}

// SetDynamicFields fills in a Dynamic Type's own properties and parents
// after construction. It exists so a catalog loader can create every
// declared type up front (so forward references by name resolve) and
// then backfill each one's properties/parents in a second pass. No-op
// on a Reflected Type.
func (t *Type) SetDynamicFields(ownProperties []PropertyDefinition, parents []*Type) {
	if t.kind != KindDynamic {
		return
	}
	t.ownProperties = ownProperties
	t.parents = parents
}

// Kind reports whether t is Reflected or Dynamic.
func (t *Type) Kind() Kind { return t.kind }

// Name returns t's fully-qualified (Reflected) or declared (Dynamic) name.
func (t *Type) Name() string { return t.name }

// ReflectType returns the underlying reflect.Type for a Reflected Type,
// or nil for Dynamic.
func (t *Type) ReflectType() reflect.Type {
	if t.kind != KindReflected {
		return nil
	}
	return t.reflectType
}

// Parents returns t's direct parents (Dynamic only; empty for Reflected,
// whose ancestry lives entirely in the reflect.Type machinery).
func (t *Type) Parents() []*Type {
	out := make([]*Type, len(t.parents))
	copy(out, t.parents)
	return out
}

// OwnProperties returns properties declared directly on t, excluding
// ancestor-declared ones.
func (t *Type) OwnProperties() []PropertyDefinition {
	out := make([]PropertyDefinition, len(t.ownProperties))
	copy(out, t.ownProperties)
	return out
}

// Properties returns the deduplicated union of t's own properties and
// all ancestor properties, first-seen (most-derived) wins on name
// collision.
func (t *Type) Properties() []PropertyDefinition {
	seen := make(map[string]bool)
	var out []PropertyDefinition

	var walk func(cur *Type)
	walk = func(cur *Type) {
		for _, p := range cur.ownProperties {
			if seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			out = append(out, p)
		}
		if cur.kind == KindReflected {
			return // Reflected types have no explicit parents to walk
		}
		for _, parent := range cur.parents {
			walk(parent)
		}
	}
	walk(t)
	return out
}

// Labels returns t's own simple name plus the simple names of its
// Dynamic ancestors, transitively. Reflected types carry no explicit
// parents, so their labels are their own simple name only; interfaces
// a Reflected type implements are not listed.
func (t *Type) Labels() []string {
	seen := make(map[string]bool)
	var out []string

	var walk func(cur *Type)
	walk = func(cur *Type) {
		simple := simpleName(cur.name)
		if !seen[simple] {
			seen[simple] = true
			out = append(out, simple)
		}
		for _, parent := range cur.parents {
			walk(parent)
		}
	}
	walk(t)
	return out
}

// IsAssignableFrom reports whether a value of type other may stand in
// wherever a t is required (t.IsAssignableFrom(other)).
//
// Reflected vs Reflected: delegates to reflect's AssignableTo and, for an
// interface t, Implements; struct embedding does not make one struct
// type assignable to another.
// Dynamic vs Dynamic: equal by name, or other has t transitively among
// its parents. Cross-kind: always false.
func (t *Type) IsAssignableFrom(other *Type) bool {
	if t == nil || other == nil {
		return false
	}
	if t.kind != other.kind {
		return false
	}
	switch t.kind {
	case KindReflected:
		if other.reflectType == nil || t.reflectType == nil {
			return false
		}
		if other.reflectType.AssignableTo(t.reflectType) {
			return true
		}
		if t.reflectType.Kind() == reflect.Interface {
			return other.reflectType.Implements(t.reflectType)
		}
		return false
	case KindDynamic:
		if t.name == other.name {
			return true
		}
		return other.hasAncestor(t.name)
	default:
		return false
	}
}

// IsAssignableTo is the mirror of IsAssignableFrom: t.IsAssignableTo(target)
// == target.IsAssignableFrom(t).
func (t *Type) IsAssignableTo(target *Type) bool {
	return target.IsAssignableFrom(t)
}

func (t *Type) hasAncestor(name string) bool {
	for _, p := range t.parents {
		if p.name == name || p.hasAncestor(name) {
			return true
		}
	}
	return false
}

// IsAssignableFromClass is the "class assignability helper" from
// spec.md §4.2: accepts a raw reflect.Type as shorthand for a Reflected
// query without requiring the caller to wrap it in a Type first.
func (t *Type) IsAssignableFromClass(rt reflect.Type) bool {
	if t.kind != KindReflected {
		return false
	}
	return t.IsAssignableFrom(NewReflectedType(rt))
}

func fullName(t reflect.Type) string {
	if pkg := t.PkgPath(); pkg != "" {
		return pkg + "." + t.Name()
	}
	return t.Name()
}

func simpleName(fullyQualified string) string {
	for i := len(fullyQualified) - 1; i >= 0; i-- {
		if fullyQualified[i] == '.' {
			return fullyQualified[i+1:]
		}
	}
	return fullyQualified
}

// reflectProperties enumerates t's exported direct fields as
// PropertyDefinitions, inferring cardinality for slice/map/pointer-shaped
// fields per spec.md §4.2. An embedded struct is listed as one
// domain-typed property named after its type; its fields are not promoted.
func reflectProperties(t reflect.Type) []PropertyDefinition {
	if t.Kind() != reflect.Struct {
		return nil
	}
	var out []PropertyDefinition
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" { // unexported
			continue
		}
		ft := f.Type
		card := CardinalityOne
		isDomainTyped := false
		switch ft.Kind() {
		case reflect.Slice, reflect.Array:
			card = CardinalityList
			isDomainTyped = true
		case reflect.Map:
			card = CardinalitySet
			isDomainTyped = true
		case reflect.Ptr:
			card = CardinalityOptional
			isDomainTyped = true
		case reflect.Struct, reflect.Interface:
			isDomainTyped = true
		}

		if isDomainTyped {
			elem := ft
			for elem.Kind() == reflect.Ptr || elem.Kind() == reflect.Slice || elem.Kind() == reflect.Array || elem.Kind() == reflect.Map {
				elem = elem.Elem()
			}
			if elem.Kind() == reflect.Struct || elem.Kind() == reflect.Interface {
				out = append(out, PropertyDefinition{
					Name:          f.Name,
					IsDomainTyped: true,
					Target:        NewReflectedType(elem),
					Cardinality:   card,
				})
				continue
			}
		}

		out = append(out, PropertyDefinition{
			Name:       f.Name,
			ScalarType: ft.String(),
		})
	}
	return out
}
