package engine

import (
	"archive/zip"
	"bufio"
	"compress/flate"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// Backup locates the title's save data and captures it into
// destination. It fails when discovery finds nothing (with title
// suggestions when a manifest is loaded) and, for archive output, when
// the destination is an existing directory. The returned total is the
// sum of original file sizes, not on-disk footprint; it feeds later
// staleness comparisons.
func (e *Engine) Backup(title, destination string, threads int, opts Options, overridePath string, progress ProgressFunc) (int64, error) {
	discovery, err := e.Discover(title, overridePath)
	if err != nil {
		return 0, err
	}
	if discovery == nil {
		return 0, e.noSavesError(title)
	}

	sources := make([]sourceFile, len(discovery.Files))
	for i, f := range discovery.Files {
		sources[i] = sourceFile{
			path:       f.Path,
			backupPath: backupRelPath(f.RootLabel, f.RelativePath),
		}
	}

	log.Info().Str("title", title).Int("files", len(sources)).
		Int64("bytes", discovery.TotalSize).Str("destination", destination).
		Msg("starting capture")

	switch opts.Mode {
	case ModeZip:
		return e.captureToZip(destination, sources, opts.Quality, progress)
	default:
		return e.captureToDirectory(destination, sources, threads, progress)
	}
}

type sourceFile struct {
	path       string
	backupPath string
}

// captureToDirectory copies every source in parallel across a bounded
// worker pool, then writes the manifest sidecar and README once all
// copies land. One failed copy aborts the whole capture: a partial
// backup is worse than none.
func (e *Engine) captureToDirectory(destination string, sources []sourceFile, threads int, progress ProgressFunc) (int64, error) {
	if err := os.MkdirAll(destination, 0o755); err != nil {
		return 0, fmt.Errorf("create backup directory: %w", err)
	}
	if threads < 1 {
		threads = 1
	}
	if threads > len(sources) && len(sources) > 0 {
		threads = len(sources)
	}

	total := len(sources)
	entries := make([]FileEntry, total)
	jobs := make(chan int)
	var done atomic.Int64
	var failed atomic.Bool
	var firstErr error
	var errOnce sync.Once
	var wg sync.WaitGroup

	for w := 0; w < threads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if failed.Load() {
					continue
				}
				src := sources[i]
				size, mtime, err := copyIntoBackup(destination, src)
				if err != nil {
					failed.Store(true)
					errOnce.Do(func() { firstErr = err })
					continue
				}
				entries[i] = FileEntry{
					BackupPath:   src.backupPath,
					OriginalPath: src.path,
					Size:         size,
					Mtime:        mtime,
				}
				n := int(done.Add(1))
				if progress != nil && progressDue(n, total) {
					progress(Progress{Stage: "copy", Current: src.path, Done: n, Total: total})
				}
			}
		}()
	}
	for i := range sources {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return 0, firstErr
	}

	var totalBytes int64
	for _, entry := range entries {
		totalBytes += entry.Size
	}
	if err := writeManifestSidecar(destination, entries); err != nil {
		return 0, err
	}
	if err := os.WriteFile(filepath.Join(destination, ReadmeName), []byte(readmeText()), 0o644); err != nil {
		return 0, fmt.Errorf("write backup readme: %w", err)
	}
	return totalBytes, nil
}

func copyIntoBackup(destination string, src sourceFile) (int64, *int64, error) {
	target := filepath.Join(destination, fromBackupRel(src.backupPath))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, nil, fmt.Errorf("create %s: %w", filepath.Dir(target), err)
	}
	in, err := os.Open(src.path)
	if err != nil {
		return 0, nil, fmt.Errorf("open %s: %w", src.path, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, nil, fmt.Errorf("stat %s: %w", src.path, err)
	}
	var mtime *int64
	if mt := info.ModTime(); !mt.IsZero() {
		secs := mt.Unix()
		mtime = &secs
	}

	out, err := os.Create(target)
	if err != nil {
		return 0, nil, fmt.Errorf("create %s: %w", target, err)
	}
	size, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, nil, fmt.Errorf("copy %s: %w", src.path, err)
	}
	return size, mtime, nil
}

// captureToZip streams every source into one archive sequentially,
// then appends the manifest and README as two final uncompressed
// entries. Quality maps linearly onto the deflate level range.
func (e *Engine) captureToZip(destination string, sources []sourceFile, quality int, progress ProgressFunc) (int64, error) {
	if info, err := os.Stat(destination); err == nil && info.IsDir() {
		return 0, fmt.Errorf("archive destination is an existing directory: %s", destination)
	}
	if dir := filepath.Dir(destination); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create backup directory: %w", err)
		}
	}

	f, err := os.Create(destination)
	if err != nil {
		return 0, fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	zw := zip.NewWriter(bw)
	level := mapDeflateLevel(quality)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	total := len(sources)
	entries := make([]FileEntry, 0, total)
	var totalBytes int64

	for i, src := range sources {
		size, mtime, err := appendToZip(zw, src)
		if err != nil {
			return 0, err
		}
		entries = append(entries, FileEntry{
			BackupPath:   src.backupPath,
			OriginalPath: src.path,
			Size:         size,
			Mtime:        mtime,
		})
		totalBytes += size

		if progress != nil && progressDue(i+1, total) {
			progress(Progress{Stage: "copy", Current: src.path, Done: i + 1, Total: total})
		}
	}

	if err := writeZipMetadata(zw, ManifestName, manifestJSON(entries)); err != nil {
		return 0, err
	}
	if err := writeZipMetadata(zw, ReadmeName, []byte(readmeText())); err != nil {
		return 0, err
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("finish archive: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("flush archive: %w", err)
	}
	return totalBytes, nil
}

func appendToZip(zw *zip.Writer, src sourceFile) (int64, *int64, error) {
	in, err := os.Open(src.path)
	if err != nil {
		return 0, nil, fmt.Errorf("open %s: %w", src.path, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, nil, fmt.Errorf("stat %s: %w", src.path, err)
	}
	var mtime *int64
	if mt := info.ModTime(); !mt.IsZero() {
		secs := mt.Unix()
		mtime = &secs
	}

	hdr := &zip.FileHeader{Name: src.backupPath, Method: zip.Deflate}
	hdr.Modified = info.ModTime()
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return 0, nil, fmt.Errorf("archive entry %s: %w", src.backupPath, err)
	}
	size, err := io.Copy(w, in)
	if err != nil {
		return 0, nil, fmt.Errorf("archive %s: %w", src.path, err)
	}
	return size, mtime, nil
}

// writeZipMetadata appends an uncompressed named entry.
func writeZipMetadata(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
	if err != nil {
		return fmt.Errorf("archive entry %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("archive entry %s: %w", name, err)
	}
	return nil
}
