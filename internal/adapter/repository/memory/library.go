// Package memory provides in-memory repository implementations.
// They keep nothing across process restarts and are used for tests and
// for sessions started without a writable data folder.
package memory

import (
	"sync"

	"github.com/tejashwikalptaru/sonik/internal/domain"
	"github.com/tejashwikalptaru/sonik/internal/ports"
)

// LibraryRepository implements ports.LibraryRepository in memory.
//
// Thread-safe: All operations protected by sync.RWMutex.
type LibraryRepository struct {
	library domain.Library
	stats   domain.Stats
	saved   bool
	saves   int

	failSave bool
	mu       sync.RWMutex
}

// NewLibraryRepository creates an empty repository.
func NewLibraryRepository() *LibraryRepository {
	return &LibraryRepository{}
}

// SetFailSave configures Save to fail (for testing).
func (r *LibraryRepository) SetFailSave(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failSave = fail
}

// Save stores a deep copy of the library.
func (r *LibraryRepository) Save(library domain.Library, stats domain.Stats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failSave {
		return domain.NewRepositoryError("save", "library", "configured to fail", nil)
	}

	r.library = cloneLibrary(library)
	r.stats = stats
	r.saved = true
	r.saves++
	return nil
}

// Load returns a deep copy of the stored library.
func (r *LibraryRepository) Load() (domain.Library, domain.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.saved {
		return nil, domain.Stats{}, domain.NewRepositoryError("load", "library", "nothing saved", domain.ErrFileNotFound)
	}
	return cloneLibrary(r.library), r.stats, nil
}

// Exists returns true after the first successful Save.
func (r *LibraryRepository) Exists() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saved
}

// SaveCount returns how many times Save succeeded.
func (r *LibraryRepository) SaveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}

func cloneLibrary(lib domain.Library) domain.Library {
	out := make(domain.Library, len(lib))
	for i, artist := range lib {
		albums := make([]domain.Album, len(artist.Albums))
		for j, album := range artist.Albums {
			album.Tracks = append([]domain.Track(nil), album.Tracks...)
			albums[j] = album
		}
		artist.Albums = albums
		out[i] = artist
	}
	return out
}

// Verify that LibraryRepository implements the LibraryRepository interface
var _ ports.LibraryRepository = (*LibraryRepository)(nil)
