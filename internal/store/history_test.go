package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditStoreRoundTrip(t *testing.T) {
	s, err := NewAuditStore(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Record("run-a", 1, "planning", "raw output"))
	require.NoError(t, s.Record("run-a", 2, "tool: echo", "[input] hi"))
	require.NoError(t, s.Record("run-b", 1, "info", "start"))

	entries, err := s.Entries("run-a")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "planning", entries[0].Label)
	assert.Equal(t, "tool: echo", entries[1].Label)
	assert.Equal(t, 2, entries[1].Seq)

	runs, err := s.Runs(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-b", runs[0].RunID)
	assert.Equal(t, 2, runs[1].Entries)
}
