package platform

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentry/internal/agentmodel"
	"github.com/kadirpekel/agentry/internal/blackboard"
	"github.com/kadirpekel/agentry/internal/expr"
	"github.com/kadirpekel/agentry/internal/persistence"
	"github.com/kadirpekel/agentry/internal/process"
)

func newGreeterProcessWithOptions(t *testing.T, id string, opts process.Options) *process.AgentProcess {
	t.Helper()
	cat, err := agentmodel.LoadBytes([]byte(greeterCatalog))
	require.NoError(t, err)
	_, agents, err := agentmodel.Build(cat, agentmodel.BuildOptions{})
	require.NoError(t, err)

	board := blackboard.New(nil, nil)
	_, err = board.Append(map[string]any{"type": "UserInput"}, nil)
	require.NoError(t, err)

	proc, err := process.New(id, agents[0], nil, board, expr.Minimal{}, nil, opts)
	require.NoError(t, err)
	return proc
}

func TestPersistWith_SnapshotsOnCompletion(t *testing.T) {
	store, err := persistence.Open("sqlite3", filepath.Join(t.TempDir(), "agentry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	p := New(2)
	proc := newGreeterProcessWithOptions(t, "persisted", process.Options{
		Sleep:   func(time.Duration) {},
		Persist: PersistWith(store),
	})

	require.NoError(t, p.Submit(context.Background(), proc, stubExecutor{}))
	require.NoError(t, p.Wait())

	snap, err := store.Load(context.Background(), "persisted")
	require.NoError(t, err)
	assert.Equal(t, "greeter", snap.AgentRef)
	assert.NotEmpty(t, snap.Blackboard)
	assert.NotEmpty(t, snap.History)
}

func TestPersistWith_FailureDoesNotFailProcess(t *testing.T) {
	store, err := persistence.Open("sqlite3", filepath.Join(t.TempDir(), "agentry.db"))
	require.NoError(t, err)
	store.Close() // force every Save to fail against a closed connection

	p := New(2)
	proc := newGreeterProcessWithOptions(t, "persist-fail", process.Options{
		Sleep:   func(time.Duration) {},
		Persist: PersistWith(store),
	})

	require.NoError(t, p.Submit(context.Background(), proc, stubExecutor{}))
	require.NoError(t, p.Wait())

	status, err := p.Status("persist-fail")
	require.NoError(t, err)
	assert.Equal(t, process.StatusCompleted, status)
}
