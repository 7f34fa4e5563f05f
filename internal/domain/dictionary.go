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

package domain

// Relationship describes one DomainTyped property edge between two
// catalog types (spec.md §3).
type Relationship struct {
	From        *Type
	To          *Type
	Name        string
	Cardinality Cardinality
}

// DataDictionary holds the catalog of DomainTypes a runtime knows about.
// It resolves simple/fully-qualified names to Types and derives
// Relationships across the whole catalog.
type DataDictionary struct {
	types []*Type
}

// NewDataDictionary builds a dictionary over the given types.
func NewDataDictionary(types ...*Type) *DataDictionary {
	return &DataDictionary{types: append([]*Type(nil), types...)}
}

// Add registers an additional type.
func (d *DataDictionary) Add(t *Type) {
	d.types = append(d.types, t)
}

// Types returns all catalog types.
func (d *DataDictionary) Types() []*Type {
	out := make([]*Type, len(d.types))
	copy(out, d.types)
	return out
}

// ByName resolves typeName against every catalog type's fully-qualified
// name first, then its labels (simple name ∪ ancestor simple names),
// matching the resolution order spec.md §4.3 requires ("fully-qualified
// name matching always succeeds... simple-name matching must consider
// all labels").
func (d *DataDictionary) ByName(typeName string) *Type {
	for _, t := range d.types {
		if t.Name() == typeName {
			return t
		}
	}
	for _, t := range d.types {
		for _, label := range t.Labels() {
			if label == typeName {
				return t
			}
		}
	}
	return nil
}

// AssignableToName reports whether t is assignable to the dictionary
// type named typeName, resolving typeName the same way ByName does but
// without requiring a single winning Type (a value can satisfy several
// simple-name labels along its ancestor chain simultaneously).
func (d *DataDictionary) AssignableToName(t *Type, typeName string) bool {
	if t == nil {
		return false
	}
	if t.Name() == typeName {
		return true
	}
	for _, label := range t.Labels() {
		if label == typeName {
			return true
		}
	}
	// Fall back to dictionary-wide assignability: typeName may name an
	// ancestor dictionary type that t is assignable to even if it is
	// not in t's own label set (e.g. a Reflected interface ancestor
	// discovered only via the dictionary's registered types).
	target := d.ByName(typeName)
	if target == nil {
		return false
	}
	return target.IsAssignableFrom(t)
}

// AllowedRelationships returns, for every type T in the dictionary and
// every DomainTyped property of T (including inherited), a Relationship
// whose target resolves to another dictionary type. Inherited
// relationships are emitted for every descendant, per spec.md §3.
func (d *DataDictionary) AllowedRelationships() []Relationship {
	var out []Relationship
	for _, t := range d.types {
		for _, p := range t.Properties() {
			if !p.IsDomainTyped || p.Target == nil {
				continue
			}
			target := d.resolveRelationshipTarget(p.Target)
			if target == nil {
				continue
			}
			out = append(out, Relationship{
				From:        t,
				To:          target,
				Name:        p.Name,
				Cardinality: p.Cardinality,
			})
		}
	}
	return out
}

// resolveRelationshipTarget finds a dictionary type U such that
// U.IsAssignableFrom(propertyType) (Reflected) or U is name-equal to
// propertyType (Dynamic), per spec.md §4.2.
func (d *DataDictionary) resolveRelationshipTarget(propertyType *Type) *Type {
	for _, u := range d.types {
		switch propertyType.Kind() {
		case KindReflected:
			if u.Kind() == KindReflected && u.IsAssignableFrom(propertyType) {
				return u
			}
		case KindDynamic:
			if u.Kind() == KindDynamic && u.Name() == propertyType.Name() {
				return u
			}
		}
	}
	return nil
}
