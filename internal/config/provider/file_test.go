package provider

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileProvider_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o644))

	fp, err := NewFileProvider(path)
	require.NoError(t, err)
	assert.Equal(t, TypeFile, fp.Type())

	data, err := fp.Load()
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", string(data))
}

func TestFileProvider_WatchSignalsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o644))

	fp, err := NewFileProvider(path)
	require.NoError(t, err)
	defer fp.Close()

	ch, err := fp.Watch()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("a: 2\n"), 0o644))

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for file change signal")
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{"file", TypeFile, false},
		{"", TypeFile, false},
		{"consul", TypeConsul, false},
		{"bogus", "", true},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.in)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
