// Package fuzzy provides a small typo-tolerant name index.
//
// Names are transliterated to ASCII, lower-cased and split into alphanumeric
// tokens. A query matches an entry when, on average, every query token is
// close to some entry token: either a prefix of it or within a normalised
// Levenshtein distance.
package fuzzy

import (
	"slices"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/rainycape/unidecode"
)

// DefaultThreshold is the minimum score an entry needs to be returned.
const DefaultThreshold = 0.8

// Index maps display names to keys of type K.
//
// Thread-safety: Insert must not run concurrently with Search. The player
// builds each index once at startup and only searches it afterwards.
type Index[K any] struct {
	entries   []entry[K]
	threshold float64
}

type entry[K any] struct {
	key    K
	tokens []string
}

// Option configures an Index.
type Option func(*options)

type options struct {
	threshold float64
}

// WithThreshold overrides DefaultThreshold.
func WithThreshold(threshold float64) Option {
	return func(o *options) {
		o.threshold = threshold
	}
}

// New creates an empty index.
func New[K any](opts ...Option) *Index[K] {
	o := options{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(&o)
	}
	return &Index[K]{threshold: o.threshold}
}

// Insert adds a name under key. Names with no alphanumeric characters are ignored.
func (idx *Index[K]) Insert(key K, name string) {
	tokens := Tokenize(name)
	if len(tokens) == 0 {
		return
	}
	idx.entries = append(idx.entries, entry[K]{key: key, tokens: tokens})
}

// Len returns the number of indexed names.
func (idx *Index[K]) Len() int {
	return len(idx.entries)
}

// Search returns the keys whose names match query, best match first.
// Entries with equal scores keep insertion order. A query with no
// alphanumeric characters matches nothing.
func (idx *Index[K]) Search(query string) []K {
	needles := Tokenize(query)
	if len(needles) == 0 {
		return nil
	}

	type hit struct {
		key   K
		score float64
	}
	hits := make([]hit, 0)
	for _, e := range idx.entries {
		if s := score(needles, e.tokens); s >= idx.threshold {
			hits = append(hits, hit{key: e.key, score: s})
		}
	}

	slices.SortStableFunc(hits, func(a, b hit) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		}
		return 0
	})

	keys := make([]K, len(hits))
	for i, h := range hits {
		keys[i] = h.key
	}
	return keys
}

// Tokenize normalises s and splits it into lower-case ASCII alphanumeric tokens.
func Tokenize(s string) []string {
	folded := strings.ToLower(unidecode.Unidecode(s))
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// score averages, over query tokens, the best similarity against any entry token.
func score(needles, tokens []string) float64 {
	var total float64
	for _, n := range needles {
		best := 0.0
		for _, t := range tokens {
			if s := similarity(n, t); s > best {
				best = s
				if best == 1 {
					break
				}
			}
		}
		total += best
	}
	return total / float64(len(needles))
}

// similarity is 1 for a prefix match, otherwise 1 - distance/longest.
func similarity(needle, token string) float64 {
	if strings.HasPrefix(token, needle) {
		return 1
	}
	longest := max(len(needle), len(token))
	if longest == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(needle, token))/float64(longest)
}
