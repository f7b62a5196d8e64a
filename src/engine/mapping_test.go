package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savevault/src/locator"
	"savevault/src/platform"
)

func TestSplitDriveForRestore(t *testing.T) {
	inverse := map[string]string{"C:": "drive-0"}

	label, rel := splitDriveForRestore(`C:\Users\player\save.dat`, inverse)
	assert.Equal(t, "drive-0", label)
	assert.Equal(t, "Users/player/save.dat", rel)

	// Unmapped letters get a synthesized label.
	label, rel = splitDriveForRestore(`d:/games/save.dat`, inverse)
	assert.Equal(t, "drive-D", label)
	assert.Equal(t, "games/save.dat", rel)

	// No drive prefix at all lands under drive-0.
	label, _ = splitDriveForRestore("/srv/saves/save.dat", inverse)
	assert.Equal(t, "drive-0", label)
}

func TestRestore_LegacyMapping(t *testing.T) {
	backup := t.TempDir()
	targetDir := t.TempDir()
	target := filepath.Join(targetDir, "profile", "save.dat")

	// Stored layout: files/<label>/<drive-relative path>. The original
	// path has no drive prefix, so it lands under drive-0.
	stored := filepath.Join(backup, "files", "drive-0", targetDir[1:], "profile", "save.dat")
	writeFile(t, stored, "legacy-bytes")

	mapping := `name: Test Game
drives:
  drive-0: "C:"
backups:
  - name: "."
    when: "2021-01-01T00:00:00Z"
    files:
      "` + target + `":
        size: 12
    registry:
      hash: null
    children: []
`
	require.NoError(t, os.WriteFile(filepath.Join(backup, legacyMappingName), []byte(mapping), 0o644))

	e := New(locator.New(platform.Noop{}), nil)
	require.NoError(t, e.Restore(backup, 1, nil))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "legacy-bytes", string(got))
}

func TestRestore_LegacyMappingUsesLastBackupEntry(t *testing.T) {
	backup := t.TempDir()
	targetDir := t.TempDir()
	oldTarget := filepath.Join(targetDir, "old.sav")
	newTarget := filepath.Join(targetDir, "new.sav")

	writeFile(t, filepath.Join(backup, "files", "drive-0", targetDir[1:], "new.sav"), "current")

	mapping := `name: Test Game
drives: {}
backups:
  - name: "old"
    when: "2020-01-01T00:00:00Z"
    files:
      "` + oldTarget + `":
        size: 3
    registry:
      hash: null
    children: []
  - name: "new"
    when: "2021-01-01T00:00:00Z"
    files:
      "` + newTarget + `":
        size: 7
    registry:
      hash: null
    children: []
`
	require.NoError(t, os.WriteFile(filepath.Join(backup, legacyMappingName), []byte(mapping), 0o644))

	e := New(locator.New(platform.Noop{}), nil)
	require.NoError(t, e.Restore(backup, 1, nil))

	assert.NoFileExists(t, oldTarget)
	got, err := os.ReadFile(newTarget)
	require.NoError(t, err)
	assert.Equal(t, "current", string(got))
}
