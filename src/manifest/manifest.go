// Package manifest loads and indexes the community database mapping
// game titles to known save-location path templates.
package manifest

import (
	"sort"

	"savevault/src/namematch"
)

// Entry holds the save-location knowledge for a single game: tag name
// (save, config, ...) to the list of path templates carrying that tag.
// Registry data is not collected on this platform and stays null so the
// cache format round-trips unchanged.
type Entry struct {
	Files    map[string][]string `json:"files,omitempty"`
	Registry []string            `json:"registry"`
}

// Templates flattens every tag group into one template list.
func (e Entry) Templates() []string {
	var out []string
	tags := make([]string, 0, len(e.Files))
	for tag := range e.Files {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		out = append(out, e.Files[tag]...)
	}
	return out
}

// Manifest is the parsed community database plus a derived index.
// It is immutable once built; reloads produce a fresh value.
type Manifest struct {
	Games map[string]Entry `json:"games"`

	index index
}

type index struct {
	// exact normalized key -> canonical title
	normalized map[string]string
	// ordered (title, normalized) pairs for the fuzzy scan; sorted by
	// title so best-match tie-breaking is reproducible across platforms
	keys []indexedKey
}

type indexedKey struct {
	title string
	norm  string
}

// FromGames builds a Manifest and its index from a parsed game map.
func FromGames(games map[string]Entry) *Manifest {
	m := &Manifest{Games: games}
	m.rebuildIndex()
	return m
}

func (m *Manifest) rebuildIndex() {
	m.index.normalized = make(map[string]string, len(m.Games))
	m.index.keys = make([]indexedKey, 0, len(m.Games))
	titles := make([]string, 0, len(m.Games))
	for title := range m.Games {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	for _, title := range titles {
		norm := namematch.Normalize(title)
		if _, taken := m.index.normalized[norm]; !taken {
			m.index.normalized[norm] = title
		}
		m.index.keys = append(m.index.keys, indexedKey{title: title, norm: norm})
	}
}

// MatchThreshold is the minimum similarity Find accepts for a fuzzy hit.
const MatchThreshold = 0.6

// SuggestThreshold is the minimum similarity Suggest will surface.
const SuggestThreshold = 0.4

// Find resolves a free-form title to a manifest entry. Lookup order:
// exact key, exact normalized key via the index, then a linear scan
// scoring every key and keeping the single maximum. A fuzzy best match
// below MatchThreshold is rejected; the first key in sorted order wins
// ties.
func (m *Manifest) Find(title string) (string, Entry, bool) {
	if entry, ok := m.Games[title]; ok {
		return title, entry, true
	}

	norm := namematch.Normalize(title)
	if key, ok := m.index.normalized[norm]; ok {
		return key, m.Games[key], true
	}

	bestKey := ""
	bestScore := 0.0
	for _, k := range m.index.keys {
		score := namematch.Similarity(norm, k.norm)
		if score > bestScore {
			bestKey = k.title
			bestScore = score
		}
	}
	if bestKey != "" && bestScore >= MatchThreshold {
		return bestKey, m.Games[bestKey], true
	}
	return "", Entry{}, false
}

// Suggest returns up to limit titles scoring at least SuggestThreshold
// against the given title, sorted by descending score (ties broken by
// title for stable output).
func (m *Manifest) Suggest(title string, limit int) []string {
	norm := namematch.Normalize(title)
	type scored struct {
		title string
		score float64
	}
	var hits []scored
	for _, k := range m.index.keys {
		if score := namematch.Similarity(norm, k.norm); score >= SuggestThreshold {
			hits = append(hits, scored{title: k.title, score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.title
	}
	return out
}
