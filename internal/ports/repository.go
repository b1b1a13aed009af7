// Package ports define repository interfaces for data persistence abstraction.
// These interfaces enable the repository pattern and allow swapping persistence mechanisms.
package ports

import "github.com/tejashwikalptaru/sonik/internal/domain"

// LibraryRepository persists the indexed library and its statistics.
//
// Implementations should write atomically: a failed save must not leave a
// half-written library that a later Load would accept.
type LibraryRepository interface {
	// Save replaces the stored library and stats.
	//
	// Returns a domain.RepositoryError on failure.
	Save(library domain.Library, stats domain.Stats) error

	// Load reads the stored library and stats.
	//
	// Returns a domain.RepositoryError if either file is missing or cannot be decoded.
	Load() (domain.Library, domain.Stats, error)

	// Exists returns true if both the library and the stats have been saved before.
	Exists() bool
}
