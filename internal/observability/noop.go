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

package observability

import "context"

// Disabled returns a Manager equivalent to the zero-value Config: a
// no-op tracer and nil metrics. Used where observability wiring is
// skipped outright, e.g. unit tests and tools that never call Shutdown.
func Disabled() *Manager {
	mgr, err := NewManager(context.Background(), Config{})
	if err != nil {
		// Config{} always validates; a failure here is a programming error.
		panic(err)
	}
	return mgr
}
