package service

import (
	"log/slog"

	"github.com/tejashwikalptaru/sonik/internal/domain"
	"github.com/tejashwikalptaru/sonik/internal/fuzzy"
)

// SearchResult is one hit of a scoped search.
// At.Track is meaningful only for title results and At.Album only for
// title and album results.
type SearchResult struct {
	Scope domain.Scope
	At    domain.Coordinate
}

// Record resolves the result against the library it was built from.
func (r SearchResult) Record(lib domain.Library) (domain.Record, bool) {
	switch r.Scope {
	case domain.ScopeTitle:
		if t, ok := lib.Track(r.At); ok {
			return t, true
		}
	case domain.ScopeAlbum:
		if a, ok := lib.Album(r.At); ok {
			return a, true
		}
	case domain.ScopeArtist:
		if a, ok := lib.Artist(r.At); ok {
			return a, true
		}
	}
	return nil, false
}

// Tracks returns the tracks the result stands for: the track itself, every
// track of the album, or every track of the artist in album order.
func (r SearchResult) Tracks(lib domain.Library) []domain.Track {
	switch r.Scope {
	case domain.ScopeTitle:
		if t, ok := lib.Track(r.At); ok {
			return []domain.Track{t}
		}
	case domain.ScopeAlbum:
		if a, ok := lib.Album(r.At); ok {
			return append([]domain.Track(nil), a.Tracks...)
		}
	case domain.ScopeArtist:
		if a, ok := lib.Artist(r.At); ok {
			return a.Tracks()
		}
	}
	return nil
}

// SearchService answers scoped fuzzy queries over a library.
// It holds one index per scope, built once; the library must not change
// afterwards or the coordinates it returns go stale.
type SearchService struct {
	logger *slog.Logger

	titles  *fuzzy.Index[domain.Coordinate]
	albums  *fuzzy.Index[domain.Coordinate]
	artists *fuzzy.Index[domain.Coordinate]
}

// NewSearchService indexes every track title, album title and artist name of lib.
func NewSearchService(logger *slog.Logger, lib domain.Library, opts ...fuzzy.Option) *SearchService {
	s := &SearchService{
		logger:  logger,
		titles:  fuzzy.New[domain.Coordinate](opts...),
		albums:  fuzzy.New[domain.Coordinate](opts...),
		artists: fuzzy.New[domain.Coordinate](opts...),
	}

	for ai, artist := range lib {
		s.artists.Insert(domain.Coordinate{Artist: ai}, artist.DisplayName())
		for bi, album := range artist.Albums {
			s.albums.Insert(domain.Coordinate{Artist: ai, Album: bi}, album.DisplayName())
			for ti, track := range album.Tracks {
				s.titles.Insert(domain.Coordinate{Artist: ai, Album: bi, Track: ti}, track.DisplayName())
			}
		}
	}

	logger.Debug("search indexes built",
		slog.Int("titles", s.titles.Len()),
		slog.Int("albums", s.albums.Len()),
		slog.Int("artists", s.artists.Len()))

	return s
}

// Search runs q against the index for its scope, best match first.
func (s *SearchService) Search(q domain.SearchQuery) []SearchResult {
	var index *fuzzy.Index[domain.Coordinate]
	switch q.Scope {
	case domain.ScopeTitle:
		index = s.titles
	case domain.ScopeAlbum:
		index = s.albums
	case domain.ScopeArtist:
		index = s.artists
	default:
		return nil
	}

	coords := index.Search(q.Text)
	results := make([]SearchResult, len(coords))
	for i, c := range coords {
		results[i] = SearchResult{Scope: q.Scope, At: c}
	}

	s.logger.Debug("search",
		slog.String("scope", q.Scope.String()),
		slog.String("text", q.Text),
		slog.Int("results", len(results)))

	return results
}
