package manifest

import (
	"bytes"
	"compress/gzip"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// CacheFileName is the parsed-manifest cache written next to the rest of
// the application state.
const CacheFileName = "community_manifest.json"

// Two candidate sources, tried in order; the community repo has renamed
// its default branch before.
var remoteURLs = []string{
	"https://raw.githubusercontent.com/mtkennerly/ludusavi-manifest/main/data/manifest.yaml",
	"https://raw.githubusercontent.com/mtkennerly/ludusavi-manifest/master/data/manifest.yaml",
}

// Compressed snapshot bundled into the binary so first runs work
// offline. May be replaced by an empty file in stripped builds.
//
//go:embed snapshot/manifest.yaml.gz
var embeddedSnapshot []byte

// FetchFunc downloads the community manifest YAML. A nil byte slice
// with a nil error means "unavailable, fall through".
type FetchFunc func() ([]byte, error)

// Store owns the cached community manifest. The manifest value is
// immutable once loaded; Load replaces the whole pointer, so readers
// never see a partially built index.
type Store struct {
	cachePath string
	fetch     FetchFunc

	manifest *Manifest
}

// NewStore creates a Store caching under cachePath. A nil fetch uses
// the HTTP download against the community repository.
func NewStore(cachePath string, fetch FetchFunc) *Store {
	if fetch == nil {
		fetch = FetchRemote
	}
	return &Store{cachePath: cachePath, fetch: fetch}
}

// Manifest returns the loaded manifest, or nil when no source worked.
func (s *Store) Manifest() *Manifest { return s.manifest }

// Load resolves the manifest from the first source that works: the
// on-disk parsed cache, the remote community manifest, then the bundled
// snapshot. Whatever succeeds (beyond the cache itself) is written back
// to the cache. All sources failing is not an error: callers fall back
// to heuristic discovery.
func (s *Store) Load() error {
	if m := s.loadCache(); m != nil {
		s.manifest = m
		return nil
	}

	text, err := s.fetch()
	if err != nil {
		log.Debug().Err(err).Msg("community manifest download failed")
	}
	if len(text) > 0 {
		m, err := ParseYAML(text)
		if err != nil {
			return err
		}
		s.storeAndCache(m)
		return nil
	}

	text = decodeSnapshot()
	if len(text) == 0 {
		log.Info().Msg("no community manifest available; heuristics only")
		s.manifest = nil
		return nil
	}
	m, err := ParseYAML(text)
	if err != nil {
		return err
	}
	s.storeAndCache(m)
	return nil
}

// Refresh forces a re-download, replacing the cache. Unlike Load, a
// failed download here is an error: the user explicitly asked.
func (s *Store) Refresh() error {
	text, err := s.fetch()
	if err != nil {
		return fmt.Errorf("download community manifest: %w", err)
	}
	if len(text) == 0 {
		return errors.New("community manifest unavailable from all sources")
	}
	m, err := ParseYAML(text)
	if err != nil {
		return err
	}
	s.storeAndCache(m)
	return nil
}

func (s *Store) loadCache() *Manifest {
	data, err := os.ReadFile(s.cachePath)
	if err != nil {
		return nil
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		log.Warn().Err(err).Str("path", s.cachePath).Msg("discarding unreadable manifest cache")
		return nil
	}
	m.rebuildIndex()
	return &m
}

func (s *Store) storeAndCache(m *Manifest) {
	s.manifest = m
	if err := s.writeCache(m); err != nil {
		// Cache write failure only costs the next startup a re-fetch.
		log.Warn().Err(err).Str("path", s.cachePath).Msg("manifest cache not written")
	}
}

func (s *Store) writeCache(m *Manifest) error {
	if dir := filepath.Dir(s.cachePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(s.cachePath, data, 0o644)
}

// FetchRemote downloads the manifest YAML from the candidate URLs in
// order, returning nil (not an error) when every source fails.
func FetchRemote() ([]byte, error) {
	client := &http.Client{Timeout: 15 * time.Second}
	for _, url := range remoteURLs {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			continue
		}
		req.Header.Set("User-Agent", "savevault")
		resp, err := client.Do(req)
		if err != nil {
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil || resp.StatusCode != http.StatusOK {
			continue
		}
		if len(bytes.TrimSpace(body)) == 0 {
			continue
		}
		return body, nil
	}
	return nil, nil
}

func decodeSnapshot() []byte {
	if len(embeddedSnapshot) == 0 {
		return nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(embeddedSnapshot))
	if err != nil {
		return nil
	}
	defer zr.Close()
	text, err := io.ReadAll(zr)
	if err != nil {
		return nil
	}
	if strings.TrimSpace(string(text)) == "" {
		return nil
	}
	return text
}
