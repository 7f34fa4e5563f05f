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

// Package persistence is the optional process store spec.md §6 leaves
// as "an implementation choice": "(processId, agentRef, blackboard
// snapshot, history)" rows keyed by processId. This implementation is
// SQL-backed (sqlite3 for local/dev, Postgres or MySQL for shared
// deployments), matching the tuple verbatim but leaving the snapshot
// and history columns as opaque JSON blobs.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Snapshot is one persisted row: a process's identity, its owning
// agent, and opaque JSON blobs for blackboard state and plan history.
type Snapshot struct {
	ProcessID  string
	AgentRef   string
	Blackboard []byte // JSON
	History    []byte // JSON
	UpdatedAt  time.Time
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS agent_processes (
    process_id VARCHAR(255) PRIMARY KEY,
    agent_ref VARCHAR(255) NOT NULL,
    blackboard_json TEXT,
    history_json TEXT,
    updated_at TIMESTAMP NOT NULL
);
`

// Store persists AgentProcess snapshots via database/sql. Driver is one
// of "sqlite3", "mysql", "postgres".
type Store struct {
	db      *sql.DB
	dialect string
}

// Open opens (and, for sqlite3, creates) the database at dsn and
// ensures the agent_processes table exists.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case "sqlite3", "mysql", "postgres":
	default:
		return nil, fmt.Errorf("persistence: unsupported driver %q (supported: sqlite3, mysql, postgres)", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("persistence: opening database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("persistence: pinging database: %w", err)
	}

	s := &Store{db: db, dialect: driver}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("persistence: creating schema: %w", err)
	}
	return nil
}

// rewrite returns the query with ?-style placeholders rewritten to
// $1, $2, ... for postgres, matching go-sql-driver/mysql's and
// mattn/go-sqlite3's native ? syntax otherwise.
func (s *Store) rewrite(query string) string {
	if s.dialect != "postgres" {
		return query
	}
	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, '$')
			out = append(out, []byte(fmt.Sprintf("%d", n))...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

// Save upserts a Snapshot keyed by ProcessID.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	if snap.ProcessID == "" {
		return fmt.Errorf("persistence: process id is required")
	}

	var query string
	switch s.dialect {
	case "sqlite3":
		query = `
INSERT INTO agent_processes (process_id, agent_ref, blackboard_json, history_json, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(process_id) DO UPDATE SET
    agent_ref = excluded.agent_ref,
    blackboard_json = excluded.blackboard_json,
    history_json = excluded.history_json,
    updated_at = excluded.updated_at
`
	case "postgres":
		query = s.rewrite(`
INSERT INTO agent_processes (process_id, agent_ref, blackboard_json, history_json, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (process_id) DO UPDATE SET
    agent_ref = EXCLUDED.agent_ref,
    blackboard_json = EXCLUDED.blackboard_json,
    history_json = EXCLUDED.history_json,
    updated_at = EXCLUDED.updated_at
`)
	case "mysql":
		query = `
INSERT INTO agent_processes (process_id, agent_ref, blackboard_json, history_json, updated_at)
VALUES (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
    agent_ref = VALUES(agent_ref),
    blackboard_json = VALUES(blackboard_json),
    history_json = VALUES(history_json),
    updated_at = VALUES(updated_at)
`
	}

	_, err := s.db.ExecContext(ctx, query,
		snap.ProcessID, snap.AgentRef, string(snap.Blackboard), string(snap.History), snap.UpdatedAt)
	if err != nil {
		return fmt.Errorf("persistence: saving %s: %w", snap.ProcessID, err)
	}
	return nil
}

// Load retrieves the Snapshot for a process id.
func (s *Store) Load(ctx context.Context, processID string) (*Snapshot, error) {
	query := s.rewrite(`
SELECT process_id, agent_ref, blackboard_json, history_json, updated_at
FROM agent_processes
WHERE process_id = ?
`)

	var (
		snap             Snapshot
		blackboard, hist string
	)
	err := s.db.QueryRowContext(ctx, query, processID).Scan(
		&snap.ProcessID, &snap.AgentRef, &blackboard, &hist, &snap.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("persistence: no snapshot for process %s", processID)
	}
	if err != nil {
		return nil, fmt.Errorf("persistence: loading %s: %w", processID, err)
	}
	snap.Blackboard = []byte(blackboard)
	snap.History = []byte(hist)
	return &snap, nil
}

// Delete removes a process's snapshot, if any.
func (s *Store) Delete(ctx context.Context, processID string) error {
	query := s.rewrite(`DELETE FROM agent_processes WHERE process_id = ?`)
	_, err := s.db.ExecContext(ctx, query, processID)
	if err != nil {
		return fmt.Errorf("persistence: deleting %s: %w", processID, err)
	}
	return nil
}

// ListAll returns every persisted snapshot, for startup recovery scans.
func (s *Store) ListAll(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT process_id, agent_ref, blackboard_json, history_json, updated_at
FROM agent_processes
`)
	if err != nil {
		return nil, fmt.Errorf("persistence: listing: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var (
			snap             Snapshot
			blackboard, hist string
		)
		if err := rows.Scan(&snap.ProcessID, &snap.AgentRef, &blackboard, &hist, &snap.UpdatedAt); err != nil {
			return nil, fmt.Errorf("persistence: scanning row: %w", err)
		}
		snap.Blackboard = []byte(blackboard)
		snap.History = []byte(hist)
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
