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
	"time"

	"github.com/go-zookeeper/zk"
)

// zookeeperProvider implements koanf.Provider (ReadBytes) plus the
// loader's watcher interface, backing SourceZookeeper. koanf has no upstream
// Zookeeper provider, so this mirrors the shape koanf's own providers
// use.
type zookeeperProvider struct {
	conn *zk.Conn
	path string
}

func newZookeeperProvider(endpoints []string, path string) (*zookeeperProvider, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("config: zookeeper endpoints are required")
	}
	if path == "" {
		return nil, fmt.Errorf("config: zookeeper path is required")
	}

	conn, _, err := zk.Connect(endpoints, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config: connecting to zookeeper: %w", err)
	}

	return &zookeeperProvider{conn: conn, path: path}, nil
}

// ReadBytes satisfies koanf.Provider.
func (p *zookeeperProvider) ReadBytes() ([]byte, error) {
	data, _, err := p.conn.Get(p.path)
	if err != nil {
		return nil, fmt.Errorf("config: reading zookeeper path %s: %w", p.path, err)
	}
	return data, nil
}

// Read satisfies koanf.Provider; zookeeper is byte-oriented, not
// key/value, so this always errors and callers use ReadBytes via the
// parser instead.
func (p *zookeeperProvider) Read() (map[string]any, error) {
	return nil, fmt.Errorf("config: zookeeper provider does not support Read, use ReadBytes")
}

// Watch satisfies the loader's watcher interface (see loader.go): it calls
// cb on every data change and keeps watching, returning only after the
// znode is deleted or the watch is lost.
func (p *zookeeperProvider) Watch(cb func(event any, err error)) error {
	for {
		_, _, eventCh, err := p.conn.GetW(p.path)
		if err != nil {
			return fmt.Errorf("config: watching zookeeper path %s: %w", p.path, err)
		}

		event := <-eventCh
		switch event.Type {
		case zk.EventNodeDataChanged:
			cb(nil, nil)
		case zk.EventNodeDeleted:
			cb(nil, fmt.Errorf("config: zookeeper node %s was deleted", p.path))
			return nil
		case zk.EventNotWatching:
			cb(nil, fmt.Errorf("config: zookeeper watch lost for path %s", p.path))
			return nil
		}
	}
}

func (p *zookeeperProvider) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
