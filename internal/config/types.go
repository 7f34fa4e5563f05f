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

// Package config loads the runtime's operational settings: planner
// limits, process retry/timeout defaults, blackboard aggregation
// retention, logging, and the ambient server/persistence/observability
// settings the core itself stays silent on (spec.md §6 says format is
// an implementation choice). Loading is koanf-based and supports file,
// Consul, etcd, and Zookeeper backends with optional hot reload.
package config

import (
	"fmt"
	"time"
)

// PlannerConfig bounds the GOAP search (spec.md §6).
type PlannerConfig struct {
	MaxExploredNodes int `yaml:"maxExploredNodes"`
	WallClockMs      int `yaml:"wallClockMs"`
}

// ProcessConfig bounds action retry/timeout behavior (spec.md §6).
type ProcessConfig struct {
	MaxRetriesPerAction    int `yaml:"maxRetriesPerAction"`
	DefaultActionTimeoutMs int `yaml:"defaultActionTimeoutMs"`
}

// BlackboardConfig controls aggregation retention (spec.md §6).
type BlackboardConfig struct {
	KeepHiddenForAggregation bool `yaml:"keepHiddenForAggregation"`
}

// LoggingConfig selects level and sinks (spec.md §6).
type LoggingConfig struct {
	Level string   `yaml:"level"`
	Sinks []string `yaml:"sinks"`
}

// ServerConfig configures the (NEW) HTTP transport over AgentPlatform.
type ServerConfig struct {
	Addr       string `yaml:"addr"`
	JWKSURL    string `yaml:"jwksUrl"`
	AuthIssuer string `yaml:"authIssuer"`
}

// PersistenceConfig configures the (NEW) pluggable SQL process store.
type PersistenceConfig struct {
	Driver string `yaml:"driver"` // "sqlite3", "mysql", "postgres"
	DSN    string `yaml:"dsn"`
}

// ObservabilityConfig configures the (NEW) OpenTelemetry/Prometheus
// wiring around the planner and executor.
type ObservabilityConfig struct {
	ServiceName    string `yaml:"serviceName"`
	OTLPEndpoint   string `yaml:"otlpEndpoint"`
	PrometheusAddr string `yaml:"prometheusAddr"`
}

// Config is the full set of operator-tunable settings.
type Config struct {
	Planner       PlannerConfig       `yaml:"planner"`
	Process       ProcessConfig       `yaml:"process"`
	Blackboard    BlackboardConfig    `yaml:"blackboard"`
	Logging       LoggingConfig       `yaml:"logging"`
	Server        ServerConfig        `yaml:"server"`
	Persistence   PersistenceConfig   `yaml:"persistence"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// Default returns a Config with the same explored-node, retry and
// action-timeout fallbacks internal/planner and internal/process use on
// their own; its planner wall clock (5000 ms) is longer than
// planner.DefaultOptions' 2s. An empty YAML file (or no file at all)
// still yields a runnable configuration.
func Default() *Config {
	return &Config{
		Planner: PlannerConfig{
			MaxExploredNodes: 10000,
			WallClockMs:      5000,
		},
		Process: ProcessConfig{
			MaxRetriesPerAction:    3,
			DefaultActionTimeoutMs: 30000,
		},
		Blackboard: BlackboardConfig{
			KeepHiddenForAggregation: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			Sinks: []string{"stdout"},
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Persistence: PersistenceConfig{
			Driver: "sqlite3",
			DSN:    "agentry.db",
		},
		Observability: ObservabilityConfig{
			ServiceName: "agentry",
		},
	}
}

// DefaultActionTimeout is the process.defaultActionTimeoutMs field as a
// time.Duration, for direct use in process.Options.
func (c *Config) DefaultActionTimeout() time.Duration {
	return time.Duration(c.Process.DefaultActionTimeoutMs) * time.Millisecond
}

// PlannerWallClock is the planner.wallClockMs field as a time.Duration.
func (c *Config) PlannerWallClock() time.Duration {
	return time.Duration(c.Planner.WallClockMs) * time.Millisecond
}

// Validate rejects settings that would make the runtime unable to make
// progress (spec.md §6 enumerates these as integer/boolean knobs, not as
// contracts that bound their own ranges, so validation lives here).
func (c *Config) Validate() error {
	if c.Planner.MaxExploredNodes <= 0 {
		return fmt.Errorf("config: planner.maxExploredNodes must be positive")
	}
	if c.Planner.WallClockMs <= 0 {
		return fmt.Errorf("config: planner.wallClockMs must be positive")
	}
	if c.Process.MaxRetriesPerAction < 0 {
		return fmt.Errorf("config: process.maxRetriesPerAction must be >= 0")
	}
	if c.Process.DefaultActionTimeoutMs <= 0 {
		return fmt.Errorf("config: process.defaultActionTimeoutMs must be positive")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: logging.level %q is not one of debug/info/warn/error", c.Logging.Level)
	}
	return nil
}
