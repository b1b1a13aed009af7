// Package file implements repositories backed by files on local disk.
package file

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/tejashwikalptaru/sonik/internal/domain"
	"github.com/tejashwikalptaru/sonik/internal/ports"
)

// formatVersion is bumped whenever the persisted layout changes.
// Files written with another version are rejected and must be rebuilt.
const formatVersion = 1

type libraryFile struct {
	Version int
	Artists domain.Library
}

type statsFile struct {
	Version int
	Stats   domain.Stats
}

// LibraryRepository implements ports.LibraryRepository with two gob files,
// one for the library hierarchy and one for the statistics.
//
// Each file is replaced atomically, so a crash during Save leaves the previous
// version in place.
//
// Thread-safe: All operations protected by sync.RWMutex.
type LibraryRepository struct {
	libraryPath string
	statsPath   string
	logger      *slog.Logger
	mu          sync.RWMutex
}

// NewLibraryRepository creates a repository storing the library at libraryPath
// and the statistics at statsPath.
func NewLibraryRepository(libraryPath, statsPath string, logger *slog.Logger) *LibraryRepository {
	return &LibraryRepository{
		libraryPath: libraryPath,
		statsPath:   statsPath,
		logger:      logger,
	}
}

// Save replaces both files.
func (r *LibraryRepository) Save(library domain.Library, stats domain.Stats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := writeGob(r.libraryPath, libraryFile{Version: formatVersion, Artists: library}); err != nil {
		return domain.NewRepositoryError("save", "library", "failed to write library", err)
	}
	if err := writeGob(r.statsPath, statsFile{Version: formatVersion, Stats: stats}); err != nil {
		return domain.NewRepositoryError("save", "stats", "failed to write stats", err)
	}

	r.logger.Debug("library saved",
		slog.String("library_path", r.libraryPath),
		slog.Int("artists", len(library)),
		slog.Int("tracks", stats.Tracks))
	return nil
}

// Load reads both files.
func (r *LibraryRepository) Load() (domain.Library, domain.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var lib libraryFile
	if err := readGob(r.libraryPath, &lib); err != nil {
		return nil, domain.Stats{}, domain.NewRepositoryError("load", "library", "failed to read library", err)
	}
	if lib.Version != formatVersion {
		return nil, domain.Stats{}, domain.NewRepositoryError("load", "library",
			fmt.Sprintf("unsupported format version %d, rebuild with -r", lib.Version), nil)
	}

	var stats statsFile
	if err := readGob(r.statsPath, &stats); err != nil {
		return nil, domain.Stats{}, domain.NewRepositoryError("load", "stats", "failed to read stats", err)
	}
	if stats.Version != formatVersion {
		return nil, domain.Stats{}, domain.NewRepositoryError("load", "stats",
			fmt.Sprintf("unsupported format version %d, rebuild with -r", stats.Version), nil)
	}

	r.logger.Debug("library loaded",
		slog.String("library_path", r.libraryPath),
		slog.Int("artists", len(lib.Artists)))
	return lib.Artists, stats.Stats, nil
}

// Exists returns true if both files are present.
func (r *LibraryRepository) Exists() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fileExists(r.libraryPath) && fileExists(r.statsPath)
}

func writeGob(path string, v any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return atomic.WriteFile(path, &buf)
}

func readGob(path string, v any) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.ErrFileNotFound
	}
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Verify that LibraryRepository implements the LibraryRepository interface
var _ ports.LibraryRepository = (*LibraryRepository)(nil)
