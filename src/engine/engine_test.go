package engine

import (
	"archive/zip"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savevault/src/locator"
	"savevault/src/manifest"
	"savevault/src/platform"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// twoRootEngine builds an engine whose manifest resolves "Test Game" to
// two separate roots under home.
func twoRootEngine(t *testing.T, home string) *Engine {
	t.Helper()
	m := manifest.FromGames(map[string]manifest.Entry{
		"Test Game": {Files: map[string][]string{"save": {
			"<home>/rootA",
			"<home>/rootB",
		}}},
	})
	loc := locator.New(platform.Static{F: platform.Folders{Home: home}})
	return New(loc, m)
}

func TestBackupRestore_DirectoryRoundTrip(t *testing.T) {
	home := t.TempDir()
	fileA := filepath.Join(home, "rootA", "save.dat")
	fileB := filepath.Join(home, "rootB", "save.dat") // same name, different root
	fileC := filepath.Join(home, "rootB", "nested", "slot2.sav")
	writeFile(t, fileA, "alpha")
	writeFile(t, fileB, "beta")
	writeFile(t, fileC, "gamma")

	e := twoRootEngine(t, home)
	dest := filepath.Join(t.TempDir(), "backup")
	total, err := e.Backup("Test Game", dest, 4, DirectoryOptions(), "", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 14, total)
	assert.FileExists(t, filepath.Join(dest, ManifestName))
	assert.FileExists(t, filepath.Join(dest, ReadmeName))

	data, err := os.ReadFile(filepath.Join(dest, ManifestName))
	require.NoError(t, err)
	var m ArchiveManifest
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, ManifestVersion, m.Version)
	require.Len(t, m.Files, 3)

	// Same-named files under different roots must not collide.
	seen := make(map[string]struct{})
	for _, entry := range m.Files {
		assert.True(t, strings.HasPrefix(entry.BackupPath, "files/root-"), entry.BackupPath)
		_, dup := seen[entry.BackupPath]
		assert.False(t, dup, "duplicate backup path %s", entry.BackupPath)
		seen[entry.BackupPath] = struct{}{}
	}

	require.NoError(t, os.Remove(fileA))
	require.NoError(t, os.Remove(fileB))
	require.NoError(t, os.Remove(fileC))

	require.NoError(t, e.Restore(dest, 4, nil))
	for path, want := range map[string]string{fileA: "alpha", fileB: "beta", fileC: "gamma"} {
		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
}

func TestBackupRestore_ZipRoundTrip(t *testing.T) {
	home := t.TempDir()
	fileA := filepath.Join(home, "rootA", "big.sav")
	fileB := filepath.Join(home, "rootB", "one.sav")
	fileC := filepath.Join(home, "rootB", "two.sav")
	writeFile(t, fileA, strings.Repeat("x", 500))
	writeFile(t, fileB, strings.Repeat("y", 100))
	writeFile(t, fileC, strings.Repeat("z", 200))

	e := twoRootEngine(t, home)
	dest := filepath.Join(t.TempDir(), "backup.zip")
	total, err := e.Backup("Test Game", dest, 2, ZipOptions(60), "", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 800, total)

	zr, err := zip.OpenReader(dest)
	require.NoError(t, err)
	m, err := readManifestFromZip(&zr.Reader)
	zr.Close()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Len(t, m.Files, 3)

	require.NoError(t, os.Remove(fileA))
	require.NoError(t, os.Remove(fileB))
	require.NoError(t, os.Remove(fileC))

	require.NoError(t, e.Restore(dest, 1, nil))
	got, err := os.ReadFile(fileA)
	require.NoError(t, err)
	assert.Len(t, got, 500)
	got, err = os.ReadFile(fileC)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("z", 200), string(got))
}

func TestBackup_ZipRejectsExistingDirectory(t *testing.T) {
	home := t.TempDir()
	writeFile(t, filepath.Join(home, "rootA", "save.dat"), "x")
	e := twoRootEngine(t, home)

	dest := t.TempDir() // exists, is a directory
	_, err := e.Backup("Test Game", dest, 1, ZipOptions(50), "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "existing directory")
}

func TestBackup_NoSavesIncludesSuggestions(t *testing.T) {
	m := manifest.FromGames(map[string]manifest.Entry{
		"Hollow Knight":          {},
		"Hollow Knight Silksong": {},
	})
	e := New(locator.New(platform.Noop{}), m)

	_, err := e.Backup("Hollow", filepath.Join(t.TempDir(), "b"), 1, DirectoryOptions(), "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Hollow Knight")
}

func TestBackup_OverrideMissingIsFatal(t *testing.T) {
	e := New(locator.New(platform.Noop{}), nil)
	_, err := e.Backup("Game", filepath.Join(t.TempDir(), "b"), 1, DirectoryOptions(),
		filepath.Join(t.TempDir(), "does-not-exist"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestBackup_ProgressFiresOnLastFile(t *testing.T) {
	home := t.TempDir()
	writeFile(t, filepath.Join(home, "rootA", "a.sav"), "a")
	writeFile(t, filepath.Join(home, "rootA", "b.sav"), "b")
	writeFile(t, filepath.Join(home, "rootA", "c.sav"), "c")
	e := twoRootEngine(t, home)

	var final Progress
	calls := 0
	_, err := e.Backup("Test Game", filepath.Join(t.TempDir(), "b"), 1, DirectoryOptions(), "",
		func(p Progress) {
			calls++
			final = p
		})
	require.NoError(t, err)
	// Three files: only the final one is on the 50-stride or last.
	assert.Equal(t, 1, calls)
	assert.Equal(t, "copy", final.Stage)
	assert.Equal(t, 3, final.Done)
	assert.Equal(t, 3, final.Total)
}

func TestRestore_SkipsMissingBackupCopies(t *testing.T) {
	home := t.TempDir()
	fileA := filepath.Join(home, "rootA", "a.sav")
	fileB := filepath.Join(home, "rootA", "b.sav")
	writeFile(t, fileA, "aaa")
	writeFile(t, fileB, "bbb")
	e := twoRootEngine(t, home)

	dest := filepath.Join(t.TempDir(), "backup")
	_, err := e.Backup("Test Game", dest, 1, DirectoryOptions(), "", nil)
	require.NoError(t, err)

	// One backed-up copy vanishes; restore still handles the rest.
	require.NoError(t, os.Remove(filepath.Join(dest, "files", "root-0", "a.sav")))
	require.NoError(t, os.Remove(fileA))
	require.NoError(t, os.Remove(fileB))

	require.NoError(t, e.Restore(dest, 2, nil))
	assert.NoFileExists(t, fileA)
	got, err := os.ReadFile(fileB)
	require.NoError(t, err)
	assert.Equal(t, "bbb", string(got))
}

func TestRestore_ReadsLegacyManifestName(t *testing.T) {
	dir := t.TempDir()
	stored := filepath.Join(dir, "files", "root-0", "save.dat")
	writeFile(t, stored, "old-format")
	target := filepath.Join(t.TempDir(), "restored", "save.dat")

	// zip_path is the historical alias for backup_path.
	manifestDoc := `{"version":1,"files":[{"zip_path":"files/root-0/save.dat","original_path":"` +
		target + `","size":10,"mtime":null}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, legacyManifestName), []byte(manifestDoc), 0o644))

	e := New(locator.New(platform.Noop{}), nil)
	require.NoError(t, e.Restore(dir, 1, nil))
	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "old-format", string(got))
}

func TestMapDeflateLevel(t *testing.T) {
	assert.Equal(t, 1, mapDeflateLevel(1))
	assert.Equal(t, 1, mapDeflateLevel(-5))
	assert.Equal(t, 9, mapDeflateLevel(100))
	assert.Equal(t, 9, mapDeflateLevel(250))
	assert.Equal(t, 5, mapDeflateLevel(60))
}

func TestBackupRelPath(t *testing.T) {
	assert.Equal(t, "files/root-0/a/b.sav", backupRelPath("root-0", "a/b.sav"))
	assert.Equal(t, "files/root-1/a/b.sav", backupRelPath("root-1", `a\b.sav`))
	assert.Equal(t, "files/root-0/b.sav", backupRelPath("root-0", "/b.sav"))
	assert.Equal(t, "files/root-0/file", backupRelPath("root-0", ""))
}
