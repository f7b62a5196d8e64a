package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savevault/src/namematch"
)

func entryWithFiles(templates ...string) Entry {
	return Entry{Files: map[string][]string{"save": templates}}
}

func TestFind_ExactAndNormalized(t *testing.T) {
	m := FromGames(map[string]Entry{
		"The Witcher 3: Game of the Year Edition": entryWithFiles("<winDocuments>/The Witcher 3"),
	})

	key, _, ok := m.Find("The Witcher 3: Game of the Year Edition")
	require.True(t, ok)
	assert.Equal(t, "The Witcher 3: Game of the Year Edition", key)

	// Normalized lookup: "witcher 3" hits the full title with score 1.0.
	key, _, ok = m.Find("witcher 3")
	require.True(t, ok)
	assert.Equal(t, "The Witcher 3: Game of the Year Edition", key)
}

func TestFind_FuzzyThreshold(t *testing.T) {
	m := FromGames(map[string]Entry{
		"Stardew Valley": entryWithFiles("<winAppData>/StardewValley"),
	})

	// Containment scores 0.9, above the 0.6 floor.
	key, _, ok := m.Find("Stardew Valley Expanded")
	require.True(t, ok)
	assert.Equal(t, "Stardew Valley", key)

	// Nothing in common: no match rather than a bad one.
	_, _, ok = m.Find("Factorio")
	assert.False(t, ok)
}

func TestFind_NeverBelowThreshold(t *testing.T) {
	m := FromGames(map[string]Entry{
		"Alpha Beta Gamma Delta": {},
	})
	norm := namematch.Normalize("Alpha Omega Sigma Tau")
	if key, _, ok := m.Find("Alpha Omega Sigma Tau"); ok {
		score := namematch.Similarity(norm, namematch.Normalize(key))
		if score < MatchThreshold {
			t.Fatalf("Find returned %q scoring %v, below %v", key, score, MatchThreshold)
		}
	}
}

func TestFind_TieBreakIsDeterministic(t *testing.T) {
	// Both keys contain the query, both score 0.9; the lexicographically
	// first key must win every time.
	m := FromGames(map[string]Entry{
		"Portal 2 Bonus": {},
		"Portal 2 Arena": {},
	})
	for i := 0; i < 20; i++ {
		key, _, ok := m.Find("Portal 2")
		require.True(t, ok)
		assert.Equal(t, "Portal 2 Arena", key)
	}
}

func TestSuggest_SortedAndBounded(t *testing.T) {
	m := FromGames(map[string]Entry{
		"Dark Souls":            {},
		"Dark Souls II":         {},
		"Dark Souls III":        {},
		"Sekiro":                {},
		"Demon Souls Remastered": {},
	})
	got := m.Suggest("Dark Souls", 3)
	require.LessOrEqual(t, len(got), 3)
	require.NotEmpty(t, got)
	assert.Equal(t, "Dark Souls", got[0])

	norm := namematch.Normalize("Dark Souls")
	prev := 1.1
	for _, title := range got {
		score := namematch.Similarity(norm, namematch.Normalize(title))
		assert.GreaterOrEqual(t, score, SuggestThreshold)
		assert.LessOrEqual(t, score, prev)
		prev = score
	}
	assert.NotContains(t, got, "Sekiro")
}

func TestParseYAML_OSGating(t *testing.T) {
	text := []byte(`
Example Game:
  files:
    "<winAppData>/Example/save.dat":
      tags: ["save"]
      when:
        - os: windows
    "<xdgConfig>/example":
      when:
        - os: linux
    "~/everywhere.cfg": {}
Empty Game: {}
`)
	m, err := ParseYAML(text)
	require.NoError(t, err)

	entry, ok := m.Games["Example Game"]
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"<winAppData>/Example/save.dat", "~/everywhere.cfg"}, entry.Templates())

	// Games with no applicable paths still exist as (empty) entries.
	empty, ok := m.Games["Empty Game"]
	require.True(t, ok)
	assert.Empty(t, empty.Templates())
}

func TestStore_CachePreferredOverFetch(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "cache.json")

	cached := FromGames(map[string]Entry{"Cached Game": {}})
	data, err := json.Marshal(cached)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cachePath, data, 0o644))

	store := NewStore(cachePath, func() ([]byte, error) {
		t.Fatal("fetcher must not run when the cache is present")
		return nil, nil
	})
	require.NoError(t, store.Load())
	require.NotNil(t, store.Manifest())
	_, _, ok := store.Manifest().Find("Cached Game")
	assert.True(t, ok)
}

func TestStore_FetchWritesCache(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "cache.json")

	yaml := []byte(`
Example Game:
  files:
    "<winLocalAppData>/Example/save.dat":
      tags: ["save"]
`)
	store := NewStore(cachePath, func() ([]byte, error) { return yaml, nil })
	require.NoError(t, store.Load())
	require.NotNil(t, store.Manifest())
	_, _, ok := store.Manifest().Find("Example Game")
	assert.True(t, ok)
	assert.FileExists(t, cachePath)

	// A second store sees the cache without fetching.
	again := NewStore(cachePath, func() ([]byte, error) {
		t.Fatal("fetcher must not run on a warm cache")
		return nil, nil
	})
	require.NoError(t, again.Load())
	require.NotNil(t, again.Manifest())
}

func TestStore_FallsBackToSnapshot(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "cache.json"), func() ([]byte, error) { return nil, nil })
	require.NoError(t, store.Load())
	// The bundled snapshot carries a handful of well-known titles.
	require.NotNil(t, store.Manifest())
	_, _, ok := store.Manifest().Find("Stardew Valley")
	assert.True(t, ok)
}
