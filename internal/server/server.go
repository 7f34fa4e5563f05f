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

// Package server exposes AgentPlatform's submit/status/cancel/history
// operations over a chi-routed JSON API (SPEC_FULL.md "HTTP transport
// for the exposed AgentPlatform interface"). It is strictly a
// transport: every handler's body is a thin translation between an
// HTTP request and a platform.Platform call, never a reimplementation
// of process or planning semantics.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/kadirpekel/agentry/internal/agentmodel"
	"github.com/kadirpekel/agentry/internal/auth"
	"github.com/kadirpekel/agentry/internal/blackboard"
	"github.com/kadirpekel/agentry/internal/domain"
	"github.com/kadirpekel/agentry/internal/expr"
	"github.com/kadirpekel/agentry/internal/observability"
	"github.com/kadirpekel/agentry/internal/platform"
	"github.com/kadirpekel/agentry/internal/process"
)

// NewProcessOptions builds the process.Options used for every process
// this server submits, given a submit request's goal name. Injected so
// cmd/agentryd can fold in its Persist/Plan decorators (observability,
// persistence) without this package importing either.
type NewProcessOptions func(goal string) process.Options

// Config wires a Server to its collaborators. Validator and Observ may
// be nil: a nil Validator disables auth entirely, a nil Observ makes
// /metrics answer 503 "metrics not enabled".
type Config struct {
	Platform   *platform.Platform
	Dict       *domain.DataDictionary
	Agents     map[string]*agentmodel.Agent
	Executor   process.Executor
	Parser     expr.Parser
	Resolver   blackboard.Resolver
	NewOptions NewProcessOptions
	Validator  auth.TokenValidator
	Observ     *observability.Manager
	Logger     *slog.Logger
}

// Server is the HTTP front door onto a platform.Platform.
type Server struct {
	cfg    Config
	router chi.Router
}

// New builds a Server and wires its full route table. cfg.Logger,
// cfg.NewOptions and cfg.Parser fall back to slog.Default(),
// process.Options{} and expr.Minimal{} respectively if left zero.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.NewOptions == nil {
		cfg.NewOptions = func(string) process.Options { return process.Options{} }
	}
	if cfg.Parser == nil {
		cfg.Parser = expr.Minimal{}
	}

	s := &Server{cfg: cfg}
	s.router = s.routes()
	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	excluded := []string{"/healthz", "/metrics"}
	if s.cfg.Validator != nil {
		r.Use(auth.MiddlewareWithExclusions(s.cfg.Validator, excluded))
	}

	r.Get("/healthz", s.handleHealthz)
	r.Get("/metrics", s.metricsHandler())

	r.Route("/processes", func(r chi.Router) {
		r.With(s.requireRole("operator", "admin")).Post("/", s.handleSubmit)
		r.Get("/{id}", s.handleStatus)
		r.Get("/{id}/history", s.handleHistory)
		r.With(s.requireRole("operator", "admin")).Post("/{id}/cancel", s.handleCancel)
	})

	return r
}

// requireRole is a no-op when no Validator is configured: without auth
// there are no roles to check.
func (s *Server) requireRole(roles ...string) func(http.Handler) http.Handler {
	if s.cfg.Validator == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return auth.RequireRole(roles...)
}

func (s *Server) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.cfg.Observ.MetricsHandler().ServeHTTP(w, r)
	}
}

func (s *Server) requestLogger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			s.cfg.Logger.Info("http request",
				"method", r.Method, "path", r.URL.Path,
				"status", ww.Status(), "duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func newProcessID() string {
	return uuid.NewString()
}
