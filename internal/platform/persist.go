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

package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kadirpekel/agentry/internal/persistence"
	"github.com/kadirpekel/agentry/internal/process"
)

// bindingSnapshot is the JSON shape one blackboard.Binding is persisted
// as: value and type name, not the live domain.Type or Go value.
type bindingSnapshot struct {
	Name  string `json:"name,omitempty"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// PersistWith adapts a persistence.Store into a process.PersistFunc,
// serializing the process's current blackboard bindings and full plan
// history to JSON on every OBSERVING → PLANNING transition.
func PersistWith(store *persistence.Store) process.PersistFunc {
	return func(proc *process.AgentProcess) error {
		bindings := proc.Board.Bindings()
		snaps := make([]bindingSnapshot, 0, len(bindings))
		for _, b := range bindings {
			typeName := ""
			if b.Type != nil {
				typeName = b.Type.Name()
			}
			snaps = append(snaps, bindingSnapshot{Name: b.Name, Type: typeName, Value: b.Value})
		}

		boardJSON, err := json.Marshal(snaps)
		if err != nil {
			return fmt.Errorf("platform: marshalling blackboard snapshot: %w", err)
		}
		historyJSON, err := json.Marshal(proc.History())
		if err != nil {
			return fmt.Errorf("platform: marshalling history: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return store.Save(ctx, persistence.Snapshot{
			ProcessID:  proc.ID,
			AgentRef:   proc.Agent.Name,
			Blackboard: boardJSON,
			History:    historyJSON,
			UpdatedAt:  time.Now().UTC(),
		})
	}
}
