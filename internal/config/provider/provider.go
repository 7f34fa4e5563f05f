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

// Package provider is a small config-source abstraction used directly
// by internal/config.Loader's file-watch path: a Provider knows how to
// load raw bytes and, optionally, signal when its source changes.
package provider

import "fmt"

// Type identifies a config source kind.
type Type string

const (
	TypeFile      Type = "file"
	TypeConsul    Type = "consul"
	TypeEtcd      Type = "etcd"
	TypeZookeeper Type = "zookeeper"
)

// ParseType converts a string to a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "file", "":
		return TypeFile, nil
	case "consul":
		return TypeConsul, nil
	case "etcd":
		return TypeEtcd, nil
	case "zookeeper", "zk":
		return TypeZookeeper, nil
	default:
		return "", fmt.Errorf("provider: unknown type %q", s)
	}
}

// Provider abstracts a config source that can be read once and,
// optionally, watched for changes. Implementations must be safe for
// concurrent use.
type Provider interface {
	Type() Type

	// Load reads the current raw bytes from the source.
	Load() ([]byte, error)

	// Watch starts watching for changes and signals on the returned
	// channel. The channel closes when watching stops. A nil channel
	// means this Provider does not support watching.
	Watch() (<-chan struct{}, error)

	Close() error
}
