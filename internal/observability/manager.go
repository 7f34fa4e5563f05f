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

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"
)

// Manager owns the lifecycle of the tracer provider and metrics
// registry built from a Config, and is the thing cmd/agentryd
// constructs once at startup and shuts down once at exit.
type Manager struct {
	cfg      Config
	provider trace.TracerProvider
	shutdown func(context.Context) error
	metrics  *Metrics
}

// NewManager initializes tracing and metrics from cfg. A nil or
// all-disabled cfg yields a Manager whose Tracer() returns a no-op
// tracer and whose Metrics() returns nil — every caller of those two
// accessors can proceed unconditionally.
func NewManager(ctx context.Context, cfg Config) (*Manager, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("observability: invalid config: %w", err)
	}

	provider, shutdown, err := newTracerProvider(ctx, cfg.Tracing)
	if err != nil {
		return nil, err
	}
	if cfg.Tracing.Enabled {
		slog.Info("observability: tracing initialized",
			"exporter", cfg.Tracing.Exporter, "endpoint", cfg.Tracing.Endpoint,
			"sampling_rate", cfg.Tracing.SamplingRate)
	}

	metrics := NewMetrics(cfg.Metrics)
	if metrics != nil {
		slog.Info("observability: metrics initialized", "namespace", cfg.Metrics.Namespace)
	}

	return &Manager{cfg: cfg, provider: provider, shutdown: shutdown, metrics: metrics}, nil
}

// Tracer returns a named tracer. Safe to call even when tracing is
// disabled: spans it starts are discarded by the no-op provider.
func (mgr *Manager) Tracer(name string) trace.Tracer {
	return mgr.provider.Tracer(name)
}

// Metrics returns the metrics collector, or nil if metrics are disabled.
func (mgr *Manager) Metrics() *Metrics {
	if mgr == nil {
		return nil
	}
	return mgr.metrics
}

// MetricsHandler returns the /metrics HTTP handler.
func (mgr *Manager) MetricsHandler() http.Handler {
	return mgr.Metrics().Handler()
}

// Shutdown flushes and closes the trace exporter.
func (mgr *Manager) Shutdown(ctx context.Context) error {
	if mgr == nil || mgr.shutdown == nil {
		return nil
	}
	return mgr.shutdown(ctx)
}
