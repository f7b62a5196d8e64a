package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Witcher 3", "20240101T000000Z"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Witcher 3", "20240201T000000Z"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Witcher 3", "20240301T000000Z.zip"), []byte("zip"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Hollow Knight", "20240115T000000Z"), 0o755))
	// Stray files and dot entries are not artifacts.
	require.NoError(t, os.WriteFile(filepath.Join(root, "Witcher 3", "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".trash"), 0o755))

	s, err := New(root)
	require.NoError(t, err)

	all, err := s.List("")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "Hollow Knight", all[0].Game)
	// Per game, newest first.
	assert.Equal(t, "20240301T000000Z", all[1].Timestamp)
	assert.True(t, all[1].Archive)
	assert.Equal(t, "20240201T000000Z", all[2].Timestamp)
	assert.Equal(t, "20240101T000000Z", all[3].Timestamp)

	one, err := s.List("Witcher 3")
	require.NoError(t, err)
	assert.Len(t, one, 3)
}

func TestListMissingRoot(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	entries, err := s.List("")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestArtifactPath(t *testing.T) {
	s, err := New("/backups")
	require.NoError(t, err)
	when := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, filepath.Join("/backups", "Witcher 3", "20240301T123000Z"),
		s.ArtifactPath("Witcher 3", when, false))
	assert.Equal(t, filepath.Join("/backups", "What If_", "20240301T123000Z.zip"),
		s.ArtifactPath("What If?", when, true))
}

func TestSanitizeGameName(t *testing.T) {
	assert.Equal(t, "Dishonored_ Death of the Outsider", SanitizeGameName("Dishonored: Death of the Outsider"))
	assert.Equal(t, "game", SanitizeGameName("   "))
}
