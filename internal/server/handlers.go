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

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kadirpekel/agentry/internal/blackboard"
	"github.com/kadirpekel/agentry/internal/process"
)

// handleSubmit handles POST /processes: builds a fresh AgentProcess for
// the named agent, binds the request's inputs into a new blackboard,
// and submits it to the platform for async execution.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	agent, ok := s.cfg.Agents[req.Agent]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown agent "+req.Agent)
		return
	}

	board := blackboard.New(s.cfg.Dict, s.cfg.Resolver)
	initial := make([]process.InitialInput, len(req.Inputs))
	for i, in := range req.Inputs {
		initial[i] = process.InitialInput{Name: in.Name, Value: in.Value, Type: s.cfg.Dict.ByName(in.Type)}
	}

	opts := s.cfg.NewOptions(req.Goal)
	opts.Goal = req.Goal

	id := newProcessID()
	proc, err := process.New(id, agent, s.cfg.Dict, board, s.cfg.Parser, initial, opts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.cfg.Platform.Submit(context.Background(), proc, s.cfg.Executor); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, submitResponse{ID: id})
}

// handleStatus handles GET /processes/{id}.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status, err := s.cfg.Platform.Status(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	resp := statusResponse{ID: id, Status: string(status)}
	if proc, ok := s.cfg.Platform.Get(id); ok && status == process.StatusStuck {
		resp.StuckReason = proc.StuckReason()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHistory handles GET /processes/{id}/history.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	history, err := s.cfg.Platform.History(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toHistoryResponse(id, history))
}

// handleCancel handles POST /processes/{id}/cancel.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.cfg.Platform.Cancel(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "cancelling"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
