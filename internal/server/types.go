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

package server

import "github.com/kadirpekel/agentry/internal/process"

// submitRequest is the JSON body of POST /processes.
type submitRequest struct {
	Agent  string         `json:"agent"`
	Goal   string         `json:"goal,omitempty"`
	Inputs []inputRequest `json:"inputs,omitempty"`
}

type inputRequest struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
	Type  string `json:"type,omitempty"`
}

type submitResponse struct {
	ID string `json:"id"`
}

type statusResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	StuckReason string `json:"stuckReason,omitempty"`
}

type planStepResponse struct {
	ActionName string `json:"actionName"`
	Outcome    string `json:"outcome"`
	ErrorKind  string `json:"errorKind,omitempty"`
	Attempt    int    `json:"attempt"`
}

type historyResponse struct {
	ID      string             `json:"id"`
	History []planStepResponse `json:"history"`
}

func toHistoryResponse(id string, steps []process.PlanStep) historyResponse {
	out := historyResponse{ID: id, History: make([]planStepResponse, len(steps))}
	for i, s := range steps {
		out.History[i] = planStepResponse{
			ActionName: s.ActionName,
			Outcome:    string(s.Outcome),
			ErrorKind:  string(s.ErrorKind),
			Attempt:    s.Attempt,
		}
	}
	return out
}

type errorResponse struct {
	Error string `json:"error"`
}
