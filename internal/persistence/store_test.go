package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agentry.db")
	s, err := Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "whatever")
	assert.Error(t, err)
}

func TestStore_SaveAndLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	snap := Snapshot{
		ProcessID:  "p1",
		AgentRef:   "greeter",
		Blackboard: []byte(`{"bindings":[]}`),
		History:    []byte(`[]`),
		UpdatedAt:  time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.Save(ctx, snap))

	got, err := s.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, snap.ProcessID, got.ProcessID)
	assert.Equal(t, snap.AgentRef, got.AgentRef)
	assert.JSONEq(t, string(snap.Blackboard), string(got.Blackboard))
	assert.JSONEq(t, string(snap.History), string(got.History))
}

func TestStore_SaveUpserts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, Snapshot{
		ProcessID: "p1", AgentRef: "greeter",
		Blackboard: []byte(`{}`), History: []byte(`[]`), UpdatedAt: time.Now(),
	}))
	require.NoError(t, s.Save(ctx, Snapshot{
		ProcessID: "p1", AgentRef: "greeter",
		Blackboard: []byte(`{"a":1}`), History: []byte(`[{"step":1}]`), UpdatedAt: time.Now(),
	}))

	got, err := s.Load(ctx, "p1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got.Blackboard))
}

func TestStore_LoadMissingIsError(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Load(context.Background(), "missing")
	assert.Error(t, err)
}

func TestStore_Delete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, Snapshot{
		ProcessID: "p1", AgentRef: "greeter",
		Blackboard: []byte(`{}`), History: []byte(`[]`), UpdatedAt: time.Now(),
	}))
	require.NoError(t, s.Delete(ctx, "p1"))

	_, err := s.Load(ctx, "p1")
	assert.Error(t, err)
}

func TestStore_ListAll(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"p1", "p2"} {
		require.NoError(t, s.Save(ctx, Snapshot{
			ProcessID: id, AgentRef: "greeter",
			Blackboard: []byte(`{}`), History: []byte(`[]`), UpdatedAt: time.Now(),
		}))
	}

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
