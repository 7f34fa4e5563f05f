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

// Command agentryd is the AgentPlatform server: it loads a catalog and
// an operational config, wires the planner/process/platform core to its
// ambient stack (persistence, tracing/metrics, auth), and serves the
// result over internal/server's chi-routed JSON API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/kadirpekel/agentry/internal/agentexec"
	"github.com/kadirpekel/agentry/internal/agentmodel"
	"github.com/kadirpekel/agentry/internal/aggregation"
	"github.com/kadirpekel/agentry/internal/auth"
	"github.com/kadirpekel/agentry/internal/config"
	"github.com/kadirpekel/agentry/internal/domain"
	"github.com/kadirpekel/agentry/internal/expr"
	"github.com/kadirpekel/agentry/internal/llm"
	"github.com/kadirpekel/agentry/internal/logger"
	"github.com/kadirpekel/agentry/internal/observability"
	"github.com/kadirpekel/agentry/internal/persistence"
	"github.com/kadirpekel/agentry/internal/planner"
	"github.com/kadirpekel/agentry/internal/platform"
	"github.com/kadirpekel/agentry/internal/process"
	"github.com/kadirpekel/agentry/internal/server"
)

// CLI is the agentryd command-line surface.
type CLI struct {
	Config  string `short:"c" help:"Path to the operational config file." type:"path"`
	Catalog string `short:"k" help:"Path to the agent catalog (dictionary + agents)." type:"path" required:""`
	Source  string `help:"Config source: file, consul, etcd, zookeeper." default:"file"`
	Watch   bool   `help:"Re-read the operational config on change; the running server keeps the config it started with."`
}

func main() {
	var cli CLI
	kong.Parse(&cli, kong.Description("agentryd runs an AgentPlatform server over the configured catalog."))

	if err := run(cli); err != nil {
		slog.Error("agentryd: fatal", "error", err)
		os.Exit(1)
	}
}

func run(cli CLI) error {
	_ = godotenv.Load() // .env is optional; ignore a missing file

	cfg, err := loadConfig(cli)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, closeLog, err := logger.New(cfg.Logging.Level, cfg.Logging.Sinks)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer closeLog()
	slog.SetDefault(log)

	dict, agents, err := loadCatalog(cli.Catalog)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info("agentryd: shutting down")
		cancel()
	}()

	obs, err := observability.NewManager(ctx, observability.Config{
		Tracing: observability.TracingConfig{
			Enabled:     cfg.Observability.OTLPEndpoint != "",
			Endpoint:    cfg.Observability.OTLPEndpoint,
			ServiceName: cfg.Observability.ServiceName,
		},
		Metrics: observability.MetricsConfig{
			Enabled: cfg.Observability.PrometheusAddr != "",
			Addr:    cfg.Observability.PrometheusAddr,
		},
	})
	if err != nil {
		return fmt.Errorf("initializing observability: %w", err)
	}
	defer obs.Shutdown(context.Background())

	var store *persistence.Store
	if cfg.Persistence.Driver != "" {
		store, err = persistence.Open(cfg.Persistence.Driver, cfg.Persistence.DSN)
		if err != nil {
			return fmt.Errorf("opening persistence store: %w", err)
		}
		defer store.Close()
	}

	validator, err := auth.NewValidatorFromConfig(cfg.Server)
	if err != nil {
		return fmt.Errorf("building auth validator: %w", err)
	}

	executor := agentexec.New(llm.NopClient{}, nil)
	plat := platform.New(0)

	plannerOpts := planner.Options{
		MaxExploredNodes: cfg.Planner.MaxExploredNodes,
		MaxDuration:      cfg.PlannerWallClock(),
	}
	plannerTracer := obs.Tracer("agentry/planner")

	newOptions := func(goal string) process.Options {
		opts := process.Options{
			Goal:                 goal,
			MaxRetriesPerAction:  cfg.Process.MaxRetriesPerAction,
			DefaultActionTimeout: cfg.DefaultActionTimeout(),
			PlannerOptions:       plannerOpts,
			Plan:                 observability.DecoratePlan(plannerTracer, obs.Metrics(), goal, planner.PlanWith),
		}
		if store != nil {
			opts.Persist = platform.PersistWith(store)
		}
		return opts
	}

	srv := server.New(server.Config{
		Platform:   plat,
		Dict:       dict,
		Agents:     agents,
		Executor:   executor,
		Parser:     expr.Minimal{},
		Resolver:   aggregation.NewResolver(cfg.Blackboard.KeepHiddenForAggregation),
		NewOptions: newOptions,
		Validator:  validator,
		Observ:     obs,
		Logger:     log,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("agentryd: listening", "addr", cfg.Server.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

func loadCatalog(path string) (*domain.DataDictionary, map[string]*agentmodel.Agent, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading catalog: %w", err)
	}
	cat, err := agentmodel.LoadBytes(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing catalog: %w", err)
	}
	dict, agentList, err := agentmodel.Build(cat, agentmodel.BuildOptions{CostPer1kTokens: 0.002})
	if err != nil {
		return nil, nil, fmt.Errorf("building agent catalog: %w", err)
	}
	agents := make(map[string]*agentmodel.Agent, len(agentList))
	for _, a := range agentList {
		agents[a.Name] = a
	}
	return dict, agents, nil
}

func loadConfig(cli CLI) (*config.Config, error) {
	if cli.Config == "" {
		return config.Default(), nil
	}
	sourceType, err := config.ParseSourceType(cli.Source)
	if err != nil {
		return nil, err
	}
	return config.Load(config.LoaderOptions{
		Type:  sourceType,
		Path:  cli.Config,
		Watch: cli.Watch,
	})
}
