// Package store reads the on-disk layout backup artifacts live in:
// <root>/<game>/<timestamp> for directory backups and
// <root>/<game>/<timestamp>.zip for archives. It only lists and names;
// the engine writes the artifacts themselves.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// TimestampLayout names artifacts so lexical order is chronological.
const TimestampLayout = "20060102T150405Z"

// Entry is one backup artifact discovered on disk.
type Entry struct {
	Game      string
	Timestamp string // TimestampLayout-formatted, from the artifact name
	Archive   bool   // true for .zip artifacts
	Path      string // absolute filesystem path
}

// Store is rooted at the configured backup directory.
type Store struct {
	Root string
}

func New(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("backup store root must not be empty")
	}
	return &Store{Root: root}, nil
}

// ArtifactPath builds the destination for a new capture.
func (s *Store) ArtifactPath(game string, now time.Time, archive bool) string {
	name := now.UTC().Format(TimestampLayout)
	if archive {
		name += ".zip"
	}
	return filepath.Join(s.Root, SanitizeGameName(game), name)
}

// List returns the artifacts under the root, newest first, optionally
// filtered to one game's folder name.
func (s *Store) List(game string) ([]Entry, error) {
	var games []string
	if game != "" {
		games = []string{SanitizeGameName(game)}
	} else {
		dirs, err := readDirNames(s.Root, true)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, err
		}
		games = dirs
	}

	var entries []Entry
	for _, g := range games {
		gameDir := filepath.Join(s.Root, g)
		items, err := os.ReadDir(gameDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		for _, item := range items {
			name := item.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}
			archive := strings.HasSuffix(name, ".zip")
			if !archive && !item.IsDir() {
				continue
			}
			entries = append(entries, Entry{
				Game:      g,
				Timestamp: strings.TrimSuffix(name, ".zip"),
				Archive:   archive,
				Path:      filepath.Join(gameDir, name),
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Game != entries[j].Game {
			return entries[i].Game < entries[j].Game
		}
		return entries[i].Timestamp > entries[j].Timestamp
	})
	return entries, nil
}

// SanitizeGameName turns a title into a safe artifact folder name.
func SanitizeGameName(game string) string {
	var b strings.Builder
	for _, r := range game {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	name := strings.TrimSpace(b.String())
	if name == "" {
		name = "game"
	}
	return name
}

func readDirNames(path string, dirsOnly bool) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if dirsOnly && !e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
