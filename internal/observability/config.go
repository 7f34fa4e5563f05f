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

// Package observability wires OpenTelemetry tracing and Prometheus
// metrics around the runtime without touching its decision logic: the
// planner, executor and process packages stay import-free of this
// package, and every exported hook here is a decorator applied at
// construction time (see DecoratePlan in decorator.go).
package observability

import (
	"fmt"
	"time"
)

// TracingConfig configures the OpenTelemetry trace pipeline.
type TracingConfig struct {
	// Enabled turns on span export. Default: false.
	Enabled bool `yaml:"enabled,omitempty"`

	// Exporter selects the span exporter. Values: "otlp", "stdout".
	// Default: "otlp".
	Exporter string `yaml:"exporter,omitempty"`

	// Endpoint is the OTLP gRPC collector address ("host:4317").
	Endpoint string `yaml:"endpoint,omitempty"`

	// SamplingRate is the fraction of traces sampled, 0.0 to 1.0.
	SamplingRate float64 `yaml:"sampling_rate,omitempty"`

	// ServiceName identifies this process in emitted spans.
	ServiceName string `yaml:"service_name,omitempty"`

	// Insecure disables TLS on the OTLP connection.
	Insecure bool `yaml:"insecure,omitempty"`

	// Timeout bounds exporter network calls.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// MetricsConfig configures Prometheus metrics collection.
type MetricsConfig struct {
	// Enabled turns on metrics registration and the /metrics handler.
	Enabled bool `yaml:"enabled,omitempty"`

	// Addr is the address the metrics HTTP server listens on, e.g.
	// ":9090". Only meaningful when the caller uses ListenAndServe;
	// internal/server may instead mount Handler() on its own mux.
	Addr string `yaml:"addr,omitempty"`

	// Namespace prefixes every metric name (e.g. "agentry").
	Namespace string `yaml:"namespace,omitempty"`
}

// Config configures both pillars of the observability stack.
type Config struct {
	Tracing TracingConfig `yaml:"tracing,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
}

// SetDefaults fills zero-valued fields with production defaults.
func (c *Config) SetDefaults() {
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "agentry"
	}
	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = "otlp"
	}
	if c.Tracing.SamplingRate == 0 {
		c.Tracing.SamplingRate = 1.0
	}
	if c.Tracing.Timeout == 0 {
		c.Tracing.Timeout = 10 * time.Second
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "agentry"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9090"
	}
}

// Validate reports configuration errors that would make initialization
// fail later with a less helpful message.
func (c *Config) Validate() error {
	if !c.Tracing.Enabled {
		return nil
	}
	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		return fmt.Errorf("observability: sampling_rate must be between 0 and 1, got %f", c.Tracing.SamplingRate)
	}
	switch c.Tracing.Exporter {
	case "otlp", "stdout":
	default:
		return fmt.Errorf("observability: invalid exporter %q (valid: otlp, stdout)", c.Tracing.Exporter)
	}
	return nil
}
