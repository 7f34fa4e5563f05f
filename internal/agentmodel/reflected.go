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

import "reflect"

// ReflectedRegistry maps a catalog type's declared name to a Go type,
// the compile-time registration spec.md §9 calls for in hosts without
// first-class reflection; Go has reflection, but the catalog itself is
// just YAML text, so a `kind: reflected` entry still needs a bridge
// from a string name to an actual reflect.Type.
type ReflectedRegistry struct {
	byName map[string]reflect.Type
}

// NewReflectedRegistry builds an empty registry.
func NewReflectedRegistry() *ReflectedRegistry {
	return &ReflectedRegistry{byName: make(map[string]reflect.Type)}
}

// Register associates name with the type of instance. Pass a zero value
// of the target struct (or a nil typed pointer, e.g. (*MyType)(nil)) —
// Register unwraps pointer kinds the same way domain.NewReflectedType
// does.
func (r *ReflectedRegistry) Register(name string, instance any) {
	t := reflect.TypeOf(instance)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	r.byName[name] = t
}

// Lookup returns the reflect.Type registered for name, or nil.
func (r *ReflectedRegistry) Lookup(name string) reflect.Type {
	return r.byName[name]
}
