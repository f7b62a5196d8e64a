package engine

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sidecar names inside a backup artifact. Older releases wrote the
// gamevault name; both are accepted on read, only the current one is
// written.
const (
	ManifestName       = "__savevault_manifest.json"
	legacyManifestName = "__gamevault_manifest.json"
	ReadmeName         = "__savevault_readme.txt"

	// ManifestVersion identifies the current manifest layout.
	ManifestVersion = 2
)

var manifestNames = []string{ManifestName, legacyManifestName}

// ArchiveManifest lists every file captured into one backup artifact.
type ArchiveManifest struct {
	Version int         `json:"version"`
	Files   []FileEntry `json:"files"`
}

// FileEntry records where a captured file lives inside the backup and
// where it came from. BackupPath is forward-slash and portable;
// OriginalPath is the absolute native path at capture time, whose
// absence at restore time is tolerated.
type FileEntry struct {
	BackupPath   string `json:"backup_path"`
	OriginalPath string `json:"original_path"`
	Size         int64  `json:"size"`
	Mtime        *int64 `json:"mtime"`
}

// fileEntryAliases accepts the historical zip_path field as a synonym
// for backup_path on read.
type fileEntryAliases struct {
	BackupPath   string `json:"backup_path"`
	ZipPath      string `json:"zip_path"`
	OriginalPath string `json:"original_path"`
	Size         int64  `json:"size"`
	Mtime        *int64 `json:"mtime"`
}

func (f *FileEntry) UnmarshalJSON(data []byte) error {
	var raw fileEntryAliases
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.BackupPath = raw.BackupPath
	if f.BackupPath == "" {
		f.BackupPath = raw.ZipPath
	}
	f.OriginalPath = raw.OriginalPath
	f.Size = raw.Size
	f.Mtime = raw.Mtime
	return nil
}

// backupRelPath builds the in-backup path for a file:
// files/<root-label>/<relative-path>, forward slashes, no leading
// slash. An empty relative path (single-file root labelled by its own
// name elsewhere) falls back to "file".
func backupRelPath(rootLabel, relative string) string {
	rel := strings.ReplaceAll(relative, `\`, "/")
	rel = strings.TrimLeft(rel, "/")
	if rel == "" {
		rel = "file"
	}
	return "files/" + rootLabel + "/" + rel
}

// fromBackupRel converts a portable backup-relative path into a native
// one, dropping empty segments.
func fromBackupRel(rel string) string {
	parts := strings.Split(rel, "/")
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return filepath.Join(kept...)
}

// readManifestFromDir finds and parses the manifest sidecar in a
// directory backup, trying both historical names. A missing sidecar is
// not an error; a malformed one is.
func readManifestFromDir(backupRoot string) (*ArchiveManifest, error) {
	for _, name := range manifestNames {
		path := filepath.Join(backupRoot, name)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read backup manifest: %w", err)
		}
		var m ArchiveManifest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse backup manifest %s: %w", name, err)
		}
		return &m, nil
	}
	return nil, nil
}

// readManifestFromZip finds and parses the manifest entry in an opened
// archive, trying both historical names.
func readManifestFromZip(r *zip.Reader) (*ArchiveManifest, error) {
	for _, name := range manifestNames {
		f, err := r.Open(name)
		if err != nil {
			continue
		}
		var m ArchiveManifest
		decodeErr := json.NewDecoder(f).Decode(&m)
		f.Close()
		if decodeErr != nil {
			return nil, fmt.Errorf("parse backup manifest %s: %w", name, decodeErr)
		}
		return &m, nil
	}
	return nil, nil
}

// manifestJSON renders the current-format manifest document.
func manifestJSON(entries []FileEntry) []byte {
	m := ArchiveManifest{Version: ManifestVersion, Files: entries}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		// Only reachable with a broken FileEntry definition.
		panic(err)
	}
	return data
}

// writeManifestSidecar writes the manifest next to a directory backup's
// files.
func writeManifestSidecar(backupRoot string, entries []FileEntry) error {
	path := filepath.Join(backupRoot, ManifestName)
	if err := os.WriteFile(path, manifestJSON(entries), 0o644); err != nil {
		return fmt.Errorf("write backup manifest: %w", err)
	}
	return nil
}

// readmeText is regenerated on every capture and never read back.
func readmeText() string {
	return fmt.Sprintf(`savevault backup format

This backup contains raw save files plus a manifest.
- %s: list of files and original paths
- files/: backed up files in the same names/structure as saves

To restore manually:
1) Open %s
2) For each entry, copy files/<path> to original_path
`, ManifestName, ManifestName)
}
