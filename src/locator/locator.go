// Package locator resolves a game title to the set of filesystem
// locations holding its save data, and flattens those into a file list
// the backup engine can copy. Resolution prefers an explicit override,
// then the community manifest, then heuristic probing of well-known
// folders and Steam installs.
package locator

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"savevault/src/manifest"
	"savevault/src/platform"
)

// SaveRoot is one resolved, existing path (file or directory) believed
// to hold save data. Labels are synthetic and unique only within one
// discovery call.
type SaveRoot struct {
	Label string
	Path  string
}

// SaveFile is one regular file under a root.
type SaveFile struct {
	Path         string // absolute path
	RootLabel    string
	RelativePath string // relative to the owning root
	Size         int64
}

// Discovery aggregates everything found for one title. It is the sole
// output contract of the locator.
type Discovery struct {
	Roots     []SaveRoot
	Files     []SaveFile
	TotalSize int64
}

// Locator discovers save data using an injected platform resolver.
type Locator struct {
	resolver platform.Resolver
}

func New(resolver platform.Resolver) *Locator {
	if resolver == nil {
		resolver = platform.Noop{}
	}
	return &Locator{resolver: resolver}
}

// Locate resolves a title to its save data. A nil return with a nil
// error means no save data was found, which is not a failure. The only
// hard failure at this stage is an override path that does not exist.
func (l *Locator) Locate(title string, m *manifest.Manifest, overridePath string) (*Discovery, error) {
	var candidates []string

	if overridePath != "" {
		if _, err := os.Stat(overridePath); err != nil {
			return nil, fmt.Errorf("save path does not exist: %s", overridePath)
		}
		candidates = append(candidates, overridePath)
	}

	folders := l.resolver.Folders()

	if len(candidates) == 0 && m != nil {
		if key, entry, ok := m.Find(title); ok {
			log.Debug().Str("title", title).Str("matched", key).Msg("manifest entry matched")
			candidates = manifestRoots(entry, folders)
		}
	}

	if len(candidates) == 0 {
		candidates = l.heuristicRoots(title, folders)
	}

	roots := buildRoots(candidates)
	if len(roots) == 0 {
		return nil, nil
	}

	discovery := collectFiles(roots)
	if len(discovery.Files) == 0 {
		return nil, nil
	}
	return discovery, nil
}

// manifestRoots expands every template of a manifest entry against the
// resolved folders. Templates that fail to resolve drop out silently.
func manifestRoots(entry manifest.Entry, folders platform.Folders) []string {
	var roots []string
	for _, tmpl := range entry.Templates() {
		roots = append(roots, resolveTemplate(tmpl, folders)...)
	}
	return roots
}

// buildRoots deduplicates candidate paths by canonical path and assigns
// each survivor a root-<n> label.
func buildRoots(paths []string) []SaveRoot {
	seen := make(map[string]struct{})
	var out []SaveRoot
	for _, p := range paths {
		canon := p
		if resolved, err := filepath.EvalSymlinks(p); err == nil {
			canon = resolved
		}
		canon = filepath.Clean(canon)
		if _, dup := seen[canon]; dup {
			continue
		}
		seen[canon] = struct{}{}
		out = append(out, SaveRoot{Label: fmt.Sprintf("root-%d", len(out)), Path: canon})
	}
	return out
}

// collectFiles walks every root. Single-file roots contribute one
// SaveFile; directory roots are walked recursively. Files are
// deduplicated by absolute path in case roots overlap.
func collectFiles(roots []SaveRoot) *Discovery {
	d := &Discovery{Roots: roots}
	seen := make(map[string]struct{})

	add := func(path, label, rel string, size int64) {
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		d.Files = append(d.Files, SaveFile{Path: path, RootLabel: label, RelativePath: rel, Size: size})
		d.TotalSize += size
	}

	for _, root := range roots {
		info, err := os.Stat(root.Path)
		if err != nil {
			continue
		}
		if info.Mode().IsRegular() {
			add(root.Path, root.Label, filepath.Base(root.Path), info.Size())
			continue
		}
		if !info.IsDir() {
			continue
		}
		walkErr := filepath.WalkDir(root.Path, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable subtree: keep whatever else the root holds.
				return nil
			}
			if !entry.Type().IsRegular() {
				return nil
			}
			fi, err := entry.Info()
			if err != nil {
				return nil
			}
			rel, err := filepath.Rel(root.Path, path)
			if err != nil {
				rel = filepath.Base(path)
			}
			add(path, root.Label, rel, fi.Size())
			return nil
		})
		if walkErr != nil {
			log.Warn().Err(walkErr).Str("root", root.Path).Msg("walk aborted")
		}
	}
	return d
}
