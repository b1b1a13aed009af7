package domain

import "strings"

// Scope selects which search index a query runs against.
type Scope int

const (
	// ScopeTitle searches track titles
	ScopeTitle Scope = iota

	// ScopeAlbum searches album titles
	ScopeAlbum

	// ScopeArtist searches artist names
	ScopeArtist
)

// String returns the query prefix for the scope.
func (s Scope) String() string {
	switch s {
	case ScopeTitle:
		return "title"
	case ScopeAlbum:
		return "album"
	case ScopeArtist:
		return "artist"
	default:
		return "unknown"
	}
}

// SearchQuery is a parsed "<scope>:<text>" query.
type SearchQuery struct {
	Scope Scope
	Text  string
}

// Terms lists the accepted query prefixes, in display order.
var Terms = []Scope{ScopeTitle, ScopeAlbum, ScopeArtist}

// ParseQuery parses input of the form "<scope>:<text>".
// The input must contain exactly one ':'; the text after it is kept verbatim.
// ok is false for empty input, a missing or repeated separator, or an unknown scope.
func ParseQuery(input string) (SearchQuery, bool) {
	if strings.Count(input, ":") != 1 {
		return SearchQuery{}, false
	}

	prefix, text, _ := strings.Cut(input, ":")
	for _, scope := range Terms {
		if prefix == scope.String() {
			return SearchQuery{Scope: scope, Text: text}, true
		}
	}
	return SearchQuery{}, false
}
