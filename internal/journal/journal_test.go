package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackAndRecent(t *testing.T) {
	j, err := Open(":memory:")
	require.NoError(t, err)
	defer j.Close()

	j.Track("git_fetch", map[string]string{"exit_code": "1", "attempt": "1"})
	j.Track("git_fetch", map[string]string{"exit_code": "0", "attempt": "2"})

	entries, err := j.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, "0", entries[0].Props["exit_code"])
	assert.Equal(t, "1", entries[1].Props["exit_code"])
	for _, e := range entries {
		assert.Equal(t, j.RunID(), e.RunID)
		assert.Equal(t, "git_fetch", e.Event)
		assert.False(t, e.RecordedAt.IsZero())
	}
}

func TestTrackNilProps(t *testing.T) {
	j, err := Open(":memory:")
	require.NoError(t, err)
	defer j.Close()

	j.Track("session_loaded", nil)
	entries, err := j.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].Props)
}

func TestOpenOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.db")
	j, err := Open(path)
	require.NoError(t, err)
	j.Track("git_fetch", map[string]string{"exit_code": "0"})
	require.NoError(t, j.Close())

	// Reopening gets a new run id; prior rows stay but are outside the run scope.
	j2, err := Open(path)
	require.NoError(t, err)
	defer j2.Close()
	entries, err := j2.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecentLimit(t *testing.T) {
	j, err := Open(":memory:")
	require.NoError(t, err)
	defer j.Close()

	for i := 0; i < 5; i++ {
		j.Track("git_fetch", map[string]string{"attempt": "1"})
	}
	entries, err := j.Recent(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
