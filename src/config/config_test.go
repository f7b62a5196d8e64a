package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "savevault")
	s, err := Load(dir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "config.yaml"))
	assert.Equal(t, DefaultMaxBackups, s.MaxBackups)
	assert.Equal(t, DefaultQuality, s.Quality)
	assert.True(t, s.Compression)
	assert.Equal(t, 0, s.Threads)
	assert.NotEmpty(t, s.BackupDir)
}

func TestLoadReadsExistingConfig(t *testing.T) {
	dir := t.TempDir()
	body := "backup_dir: /srv/saves\nmax_backups: 3\ncompression: false\nquality: 90\nthreads: 2\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/srv/saves", s.BackupDir)
	assert.Equal(t, 3, s.MaxBackups)
	assert.False(t, s.Compression)
	assert.Equal(t, 90, s.Quality)
	assert.Equal(t, 2, s.Threads)
}

func TestLoadKeepsUserFile(t *testing.T) {
	dir := t.TempDir()
	body := "max_backups: 42\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	_, err := Load(dir)
	require.NoError(t, err)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}
