package engine

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// Restore puts a backup's files back at their original absolute paths.
// The format is auto-detected: a directory with a recognized manifest
// sidecar, a directory with a legacy mapping file, or a zip archive.
// Missing destination directories are created; a single failed file is
// skipped with a log line rather than aborting the restore.
func (e *Engine) Restore(backupPath string, threads int, progress ProgressFunc) error {
	info, err := os.Stat(backupPath)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}

	if info.IsDir() {
		m, err := readManifestFromDir(backupPath)
		if err != nil {
			return err
		}
		if m != nil {
			return restoreFromDirectory(backupPath, m, threads, progress)
		}
		mappingPath := filepath.Join(backupPath, legacyMappingName)
		if _, err := os.Stat(mappingPath); err == nil {
			return restoreFromLegacyMapping(backupPath, mappingPath)
		}
		return fmt.Errorf("no backup manifest found in %s", backupPath)
	}

	return restoreFromZip(backupPath, progress)
}

// restoreFromDirectory copies each manifest entry back to its original
// path, in parallel across a bounded worker pool. Entries whose backup
// copy disappeared are skipped silently, like the capture never saw
// them.
func restoreFromDirectory(backupRoot string, m *ArchiveManifest, threads int, progress ProgressFunc) error {
	if threads < 1 {
		threads = 1
	}
	total := len(m.Files)
	jobs := make(chan FileEntry)
	var done atomic.Int64
	var wg sync.WaitGroup

	for w := 0; w < threads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				source := filepath.Join(backupRoot, fromBackupRel(entry.BackupPath))
				if err := restoreOne(source, entry.OriginalPath); err != nil {
					log.Error().Err(err).Str("path", entry.OriginalPath).Msg("restore skipped file")
				}
				n := int(done.Add(1))
				if progress != nil && progressDue(n, total) {
					progress(Progress{Stage: "restore", Current: entry.OriginalPath, Done: n, Total: total})
				}
			}
		}()
	}
	for _, entry := range m.Files {
		jobs <- entry
	}
	close(jobs)
	wg.Wait()
	return nil
}

// restoreOne copies source over target, creating parents. A missing
// source is tolerated; the entry simply stays unrestored.
func restoreOne(source, target string) error {
	if _, err := os.Stat(source); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(target), err)
	}
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open %s: %w", source, err)
	}
	defer in.Close()
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	_, err = io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("copy %s: %w", target, err)
	}
	return nil
}

// restoreFromZip opens the archive, reads its manifest entry (both
// historical names), and extracts each listed member to its original
// path. A missing manifest is a format failure; a missing member is a
// per-file skip.
func restoreFromZip(backupPath string, progress ProgressFunc) error {
	zr, err := zip.OpenReader(backupPath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	m, err := readManifestFromZip(&zr.Reader)
	if err != nil {
		return err
	}
	if m == nil {
		return errors.New("backup manifest missing in archive")
	}

	total := len(m.Files)
	for i, entry := range m.Files {
		if err := extractOne(&zr.Reader, entry); err != nil {
			log.Error().Err(err).Str("path", entry.OriginalPath).Msg("restore skipped file")
		}
		if progress != nil && progressDue(i+1, total) {
			progress(Progress{Stage: "restore", Current: entry.OriginalPath, Done: i + 1, Total: total})
		}
	}
	return nil
}

func extractOne(r *zip.Reader, entry FileEntry) error {
	in, err := r.Open(entry.BackupPath)
	if err != nil {
		return fmt.Errorf("missing archive member %s: %w", entry.BackupPath, err)
	}
	defer in.Close()

	target := entry.OriginalPath
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(target), err)
	}
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	_, err = io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("extract %s: %w", entry.BackupPath, err)
	}
	return nil
}
