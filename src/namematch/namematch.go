// Package namematch normalizes free-form game titles and scores
// similarity between two normalized titles. It is the leaf the manifest
// index and the save locator both build on.
package namematch

import (
	"regexp"
	"strings"
)

var nonAlnumRE = regexp.MustCompile(`[^a-z0-9]+`)

// Marketing noise that carries no identity: "The Witcher 3: Game of the
// Year Edition" and "Witcher 3" must normalize to the same key.
var stopWords = map[string]struct{}{
	"edition":    {},
	"goty":       {},
	"remastered": {},
	"deluxe":     {},
	"definitive": {},
	"ultimate":   {},
	"complete":   {},
	"collection": {},
	"bundle":     {},
	"enhanced":   {},
	"hd":         {},
	"game":       {},
	"of":         {},
	"year":       {},
	"the":        {},
	"a":          {},
	"an":         {},
}

// Normalize lower-cases a title, collapses punctuation runs to single
// spaces, drops stop words and rejoins the remaining tokens.
func Normalize(title string) string {
	lower := strings.ToLower(title)
	cleaned := nonAlnumRE.ReplaceAllString(lower, " ")
	var kept []string
	for _, tok := range strings.Fields(cleaned) {
		if _, skip := stopWords[tok]; skip {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// Similarity scores two normalized keys in [0,1]. Exact match wins,
// containment in either direction earns a fixed 0.9 (short franchise
// names embedded in longer subtitles), anything else falls back to the
// Jaccard index over whitespace-tokenized word sets. Empty input on
// either side scores zero. The checks short-circuit in that order.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.9
	}
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	inter := 0
	union := len(setB)
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}
