// Package engine captures located save files into versioned backup
// artifacts (plain directory or zip archive) and restores them,
// including a read-only legacy third-party format.
package engine

import (
	"fmt"
	"strings"

	"savevault/src/locator"
	"savevault/src/manifest"
)

// Mode selects the backup encoding.
type Mode int

const (
	// ModeDirectory copies files into a directory tree with a manifest
	// sidecar. Capture parallelizes across a bounded worker pool.
	ModeDirectory Mode = iota
	// ModeZip streams files into one compressed archive. The archive
	// writer is a single-writer resource, so capture is sequential.
	ModeZip
)

// Options configure a capture.
type Options struct {
	Mode Mode
	// Quality is the 1-100 compression dial for ModeZip, mapped
	// linearly onto deflate levels.
	Quality int
}

// DirectoryOptions is the default encoding.
func DirectoryOptions() Options { return Options{Mode: ModeDirectory} }

// ZipOptions selects archive output at the given quality.
func ZipOptions(quality int) Options { return Options{Mode: ModeZip, Quality: quality} }

// Engine ties discovery to capture/restore. The manifest pointer may be
// nil (heuristics only); it is read-only once set.
type Engine struct {
	locator  *locator.Locator
	manifest *manifest.Manifest
}

func New(loc *locator.Locator, m *manifest.Manifest) *Engine {
	return &Engine{locator: loc, manifest: m}
}

// Suggest proxies manifest title suggestions; empty without a manifest.
func (e *Engine) Suggest(title string, limit int) []string {
	if e.manifest == nil {
		return nil
	}
	return e.manifest.Suggest(title, limit)
}

// Discover runs save discovery without capturing anything.
func (e *Engine) Discover(title, overridePath string) (*locator.Discovery, error) {
	return e.locator.Locate(title, e.manifest, overridePath)
}

// noSavesError builds the not-found failure, naming up to five close
// manifest titles when any score well enough to mention.
func (e *Engine) noSavesError(title string) error {
	suggestions := e.Suggest(title, 5)
	if len(suggestions) == 0 {
		return fmt.Errorf("no save data found for %q", title)
	}
	return fmt.Errorf("no save data found for %q; closest matches: %s",
		title, strings.Join(suggestions, ", "))
}

// mapDeflateLevel maps the 1-100 quality dial linearly onto the
// compressor's native 1-9 range.
func mapDeflateLevel(quality int) int {
	q := quality
	if q < 1 {
		q = 1
	}
	if q > 100 {
		q = 100
	}
	return (q-1)*8/99 + 1
}
