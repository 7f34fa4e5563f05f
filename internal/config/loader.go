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

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/consul/api"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	consulp "github.com/knadh/koanf/providers/consul"
	etcdp "github.com/knadh/koanf/providers/etcd"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kadirpekel/agentry/internal/config/provider"
)

// SourceType selects where the Loader reads configuration from.
type SourceType string

const (
	SourceFile      SourceType = "file"
	SourceConsul    SourceType = "consul"
	SourceEtcd      SourceType = "etcd"
	SourceZookeeper SourceType = "zookeeper"
)

// ParseSourceType parses the CLI/YAML-friendly spelling of a SourceType.
func ParseSourceType(s string) (SourceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "file", "":
		return SourceFile, nil
	case "consul":
		return SourceConsul, nil
	case "etcd":
		return SourceEtcd, nil
	case "zookeeper", "zk":
		return SourceZookeeper, nil
	default:
		return "", fmt.Errorf("config: invalid source type %q (valid: file, consul, etcd, zookeeper)", s)
	}
}

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	Type SourceType

	// Path is the config file path for SourceFile, or the key/prefix
	// path for Consul/etcd/Zookeeper.
	Path string

	// Endpoints addresses the remote backend; defaults are filled in
	// per Type when empty.
	Endpoints []string

	// Watch starts a background goroutine that reloads on change and
	// invokes OnChange.
	Watch bool

	OnChange func(*Config) error
}

// watcher is implemented by providers that can signal configuration
// changes out of band (the zookeeper provider here, koanf's own
// providers for consul/etcd/file).
type watcher interface {
	Watch(cb func(event any, err error)) error
}

// Loader reads, env-expands, validates, and (optionally) hot-reloads a
// Config from one of the supported backends.
type Loader struct {
	k       *koanf.Koanf
	opts    LoaderOptions
	yparser *yaml.YAML

	fileWatch *provider.FileProvider
	stop      chan struct{}
}

// NewLoader builds a Loader for the given options, filling in default
// endpoints for remote backends left unspecified.
func NewLoader(opts LoaderOptions) (*Loader, error) {
	if opts.Type == "" {
		opts.Type = SourceFile
	}
	if opts.Path == "" {
		return nil, fmt.Errorf("config: path is required")
	}
	if len(opts.Endpoints) == 0 {
		switch opts.Type {
		case SourceConsul:
			opts.Endpoints = []string{"localhost:8500"}
		case SourceEtcd:
			opts.Endpoints = []string{"localhost:2379"}
		case SourceZookeeper:
			opts.Endpoints = []string{"localhost:2181"}
		}
	}

	return &Loader{
		k:       koanf.New("."),
		opts:    opts,
		yparser: yaml.Parser(),
		stop:    make(chan struct{}),
	}, nil
}

// Load reads the configured source once, applies env expansion, and
// returns a validated Config. If LoaderOptions.Watch is set, a
// background watch loop is started that re-runs this pipeline on change
// and invokes OnChange.
func (l *Loader) Load() (*Config, error) {
	src, err := l.buildSource()
	if err != nil {
		return nil, err
	}

	if err := l.loadOnce(src); err != nil {
		return nil, err
	}

	cfg, err := l.unmarshal()
	if err != nil {
		return nil, err
	}

	if l.opts.Watch {
		go l.watch(src)
	}

	return cfg, nil
}

func (l *Loader) buildSource() (koanf.Provider, error) {
	switch l.opts.Type {
	case SourceFile:
		return file.Provider(l.opts.Path), nil

	case SourceConsul:
		cfg := api.DefaultConfig()
		cfg.Address = l.opts.Endpoints[0]
		return consulp.Provider(consulp.Config{Cfg: cfg, Key: l.opts.Path}), nil

	case SourceEtcd:
		return etcdp.Provider(etcdp.Config{
			Endpoints:   l.opts.Endpoints,
			Key:         l.opts.Path,
			DialTimeout: 5 * time.Second,
		}), nil

	case SourceZookeeper:
		return newZookeeperProvider(l.opts.Endpoints, l.opts.Path)

	default:
		return nil, fmt.Errorf("config: unsupported source type %q", l.opts.Type)
	}
}

func (l *Loader) parserFor() koanf.Parser {
	if l.opts.Type == SourceFile || l.opts.Type == SourceZookeeper {
		return l.yparser
	}
	return nil
}

func (l *Loader) loadOnce(src koanf.Provider) error {
	if err := l.k.Load(src, l.parserFor()); err != nil {
		return fmt.Errorf("config: loading from %s: %w", l.opts.Type, err)
	}
	return l.expandEnv()
}

func (l *Loader) expandEnv() error {
	expanded, ok := ExpandEnvVarsInData(l.k.Raw()).(map[string]any)
	if !ok {
		return fmt.Errorf("config: unexpected shape after env expansion")
	}
	next := koanf.New(".")
	if err := next.Load(confmap.Provider(expanded, "."), nil); err != nil {
		return fmt.Errorf("config: reloading expanded config: %w", err)
	}
	l.k = next
	return nil
}

func (l *Loader) unmarshal() (*Config, error) {
	cfg := Default()
	if err := l.k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("config: unmarshalling: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// watch drives hot reload: file sources use internal/config/provider's
// fsnotify-backed FileProvider rather than the koanf file provider's own
// Watch, remote sources use the watcher interface koanf's consul/etcd
// providers and our zookeeper provider implement.
func (l *Loader) watch(src koanf.Provider) {
	if l.opts.Type == SourceFile {
		l.watchFile()
		return
	}

	w, ok := src.(watcher)
	if !ok {
		slog.Warn("config: source does not support watching", "type", l.opts.Type)
		return
	}

	err := w.Watch(func(event any, err error) {
		select {
		case <-l.stop:
			return
		default:
		}
		if err != nil {
			slog.Warn("config: watch error", "error", err)
			return
		}
		l.reload()
	})
	if err != nil {
		slog.Warn("config: watch loop ended", "error", err)
	}
}

func (l *Loader) watchFile() {
	fp, err := provider.NewFileProvider(l.opts.Path)
	if err != nil {
		slog.Warn("config: starting file watch", "error", err)
		return
	}
	l.fileWatch = fp

	ch, err := fp.Watch()
	if err != nil {
		slog.Warn("config: starting file watch", "error", err)
		return
	}
	for {
		select {
		case <-l.stop:
			fp.Close()
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			l.reload()
		}
	}
}

func (l *Loader) reload() {
	src, err := l.buildSource()
	if err != nil {
		slog.Warn("config: rebuilding source for reload", "error", err)
		return
	}
	if err := l.loadOnce(src); err != nil {
		slog.Warn("config: reloading", "error", err)
		return
	}
	cfg, err := l.unmarshal()
	if err != nil {
		slog.Warn("config: reloaded config invalid", "error", err)
		return
	}
	if l.opts.OnChange != nil {
		if err := l.opts.OnChange(cfg); err != nil {
			slog.Warn("config: OnChange callback failed", "error", err)
		}
	}
}

// Stop ends any background watch loop.
func (l *Loader) Stop() {
	close(l.stop)
	if l.fileWatch != nil {
		l.fileWatch.Close()
	}
}

// Load is a convenience wrapper that builds a Loader from opts and loads
// once. If opts.Watch is set, the watch loop is started as in
// Loader.Load; the Loader is not returned, so that loop cannot be stopped.
func Load(opts LoaderOptions) (*Config, error) {
	l, err := NewLoader(opts)
	if err != nil {
		return nil, err
	}
	return l.Load()
}
