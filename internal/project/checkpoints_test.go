package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/CutLearn/internal/policy"
)

func testSnapshot() *policy.Snapshot {
	return &policy.Snapshot{
		StateDim:    5,
		ActionDim:   10,
		MaxProducts: 1,
		Steps:       42,
		NormMean:    []float64{0, 0, 0, 0, 0},
		NormStd:     []float64{1, 1, 1, 1, 1},
		ActorLR:     3e-4,
		CriticLR:    1e-3,
	}
}

func TestCheckpointPath_AutoSuffix(t *testing.T) {
	assert.Equal(t, "model.ckpt", CheckpointPath("model"))
	assert.Equal(t, "model.ckpt", CheckpointPath("model.ckpt"))
}

func TestSaveLoadCheckpoint_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model")
	require.NoError(t, SaveCheckpoint(path, testSnapshot()))

	// The extension was appended on disk.
	_, err := os.Stat(path + CheckpointExt)
	require.NoError(t, err)

	snap, ok := LoadCheckpoint(path)
	require.True(t, ok)
	assert.Equal(t, 42, snap.Steps)
	assert.Equal(t, 5, snap.StateDim)
	assert.Equal(t, []float64{1, 1, 1, 1, 1}, snap.NormStd)
}

func TestLoadCheckpoint_MissingFile(t *testing.T) {
	snap, ok := LoadCheckpoint(filepath.Join(t.TempDir(), "nope"))
	assert.False(t, ok)
	assert.Nil(t, snap)
}

func TestLoadCheckpoint_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ckpt")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, ok := LoadCheckpoint(path)
	assert.False(t, ok)
}

func TestRotateCheckpoints_KeepsNewest(t *testing.T) {
	dir := t.TempDir()

	base := time.Now().Add(-time.Hour)
	names := []string{"a.ckpt", "b.ckpt", "c.ckpt", "d.ckpt"}
	for i, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
		stamp := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, stamp, stamp))
	}
	// A non-checkpoint file must survive rotation.
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))

	require.NoError(t, RotateCheckpoints(dir, 2))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var remaining []string
	for _, e := range entries {
		remaining = append(remaining, e.Name())
	}
	assert.ElementsMatch(t, []string{"c.ckpt", "d.ckpt", "notes.txt"}, remaining)
}

func TestRotateCheckpoints_FewerThanKeep(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "only.ckpt"), []byte("{}"), 0644))

	require.NoError(t, RotateCheckpoints(dir, 5))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
