// Package service provides the business logic of the sonik music player:
// library indexing, search, the play queue, UI state and the audio task.
package service

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tejashwikalptaru/sonik/internal/domain"
	"github.com/tejashwikalptaru/sonik/internal/ports"
)

// LibraryService builds, persists and loads the music library.
// Only one build can run at a time.
type LibraryService struct {
	// Dependencies (injected)
	logger *slog.Logger
	reader ports.MetadataReader
	repo   ports.LibraryRepository
	bus    ports.EventBus

	// workers bounds concurrent tag reads
	workers int

	scanning bool
	mu       sync.Mutex
}

// NewLibraryService creates a new library service.
func NewLibraryService(
	logger *slog.Logger,
	reader ports.MetadataReader,
	repo ports.LibraryRepository,
	bus ports.EventBus,
) *LibraryService {
	return &LibraryService{
		logger:  logger,
		reader:  reader,
		repo:    repo,
		bus:     bus,
		workers: runtime.GOMAXPROCS(0),
	}
}

// SetWorkers changes how many files are read concurrently. Values below 1 mean 1.
func (s *LibraryService) SetWorkers(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = max(n, 1)
}

// Build indexes musicFolder, persists the result and returns it.
// Files whose tags cannot be read are skipped. A persistence failure is
// returned as a ServiceError and the library is discarded.
func (s *LibraryService) Build(ctx context.Context, musicFolder string) (domain.Library, domain.Stats, error) {
	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		return nil, domain.Stats{}, domain.NewServiceError("LibraryService", "Build", "build already in progress", nil)
	}
	s.scanning = true
	workers := s.workers
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.scanning = false
		s.mu.Unlock()
	}()

	start := time.Now()
	s.logger.Info("building library", slog.String("music_folder", musicFolder))
	s.bus.Publish(domain.NewScanStartedEvent(musicFolder))

	files, err := collectAudioFiles(ctx, musicFolder, s.logger)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.bus.Publish(domain.NewScanCancelledEvent(err.Error()))
			return nil, domain.Stats{}, domain.ErrScanCancelled
		}
		return nil, domain.Stats{}, domain.NewServiceError("LibraryService", "Build", "failed to walk music folder", err)
	}

	tracks, err := s.readTags(ctx, files, workers)
	if err != nil {
		s.bus.Publish(domain.NewScanCancelledEvent(err.Error()))
		return nil, domain.Stats{}, domain.ErrScanCancelled
	}

	library, stats := Aggregate(tracks)

	if err := s.repo.Save(library, stats); err != nil {
		return nil, domain.Stats{}, domain.NewServiceError("LibraryService", "Build", "failed to persist library", err)
	}
	s.bus.Publish(domain.NewLibrarySavedEvent(stats))

	took := time.Since(start)
	s.logger.Info("library built",
		slog.Int("files", len(files)),
		slog.Int("tracks", stats.Tracks),
		slog.Int("artists", stats.Artists),
		slog.Duration("took", took))
	s.bus.Publish(domain.NewScanCompletedEvent(stats, took))

	return library, stats, nil
}

// Rebuild re-indexes musicFolder even if a persisted library exists.
func (s *LibraryService) Rebuild(ctx context.Context, musicFolder string) (domain.Library, domain.Stats, error) {
	s.logger.Info("rebuilding library")
	return s.Build(ctx, musicFolder)
}

// Load reads the persisted library.
func (s *LibraryService) Load() (domain.Library, domain.Stats, error) {
	library, stats, err := s.repo.Load()
	if err != nil {
		return nil, domain.Stats{}, err
	}
	s.bus.Publish(domain.NewLibraryLoadedEvent(stats))
	return library, stats, nil
}

// Exists returns true if a persisted library is available.
func (s *LibraryService) Exists() bool {
	return s.repo.Exists()
}

// LoadOrBuild loads the persisted library, building it first if none exists.
// built reports whether a build happened.
func (s *LibraryService) LoadOrBuild(ctx context.Context, musicFolder string) (library domain.Library, stats domain.Stats, built bool, err error) {
	if s.Exists() {
		library, stats, err = s.Load()
		return library, stats, false, err
	}
	library, stats, err = s.Build(ctx, musicFolder)
	return library, stats, true, err
}

// IsScanning returns true if a build is currently in progress.
func (s *LibraryService) IsScanning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanning
}

// readTags reads every file concurrently and returns the readable tracks in
// the order of files, so aggregation is deterministic.
func (s *LibraryService) readTags(ctx context.Context, files []string, workers int) ([]domain.Track, error) {
	results := make([]domain.Track, len(files))
	readable := make([]bool, len(files))
	var scanned, found atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			track, err := s.reader.GetMetadata(path)
			if err != nil {
				s.logger.Debug("skipping file with unreadable tags",
					slog.String("path", path), slog.Any("error", err))
			} else {
				results[i] = track
				readable[i] = true
				found.Add(1)
			}

			s.bus.Publish(domain.NewScanProgressEvent(domain.ScanProgress{
				CurrentFile:  path,
				FilesScanned: int(scanned.Add(1)),
				TotalFiles:   len(files),
				TracksFound:  int(found.Load()),
			}))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tracks := make([]domain.Track, 0, len(files))
	for i, ok := range readable {
		if ok {
			tracks = append(tracks, results[i])
		}
	}
	return tracks, nil
}

// Aggregate groups tracks into artists and albums and gathers statistics.
//
// A track is filed under its album artist (or its artist when the album
// artist is empty) and its album title, both compared verbatim. Albums keep
// the year of the track that created them. Tracks within an album are
// ordered by track number, albums by case-folded title and artists by
// case-folded name; ties keep the order tracks were given in.
func Aggregate(tracks []domain.Track) (domain.Library, domain.Stats) {
	library := make(domain.Library, 0)
	var stats domain.Stats

	artistIndex := make(map[string]int)
	albumIndex := make(map[[2]string]int)

	for _, t := range tracks {
		artistName := t.GroupingArtist()

		ai, ok := artistIndex[artistName]
		if !ok {
			ai = len(library)
			library = append(library, domain.NewArtist(artistName))
			artistIndex[artistName] = ai
			stats.Artists++
		}
		artist := &library[ai]

		key := [2]string{artistName, t.Album}
		bi, ok := albumIndex[key]
		if !ok {
			bi = len(artist.Albums)
			artist.Albums = append(artist.Albums, domain.NewAlbum(t.Album, artistName, t.Year))
			albumIndex[key] = bi
			stats.Albums++
		}

		artist.Albums[bi].Insert(t)
		stats.Tracks++
		stats.TotalTime += uint64(t.Duration)
	}

	// album indices stay valid during the loop because sorting happens last;
	// a stable sort of the final list equals re-sorting after every insert
	for i := range library {
		library[i].SortAlbums()
	}
	library.Sort()

	return library, stats
}

// Verify that LibraryService implements the expected interface patterns
var _ interface {
	Build(context.Context, string) (domain.Library, domain.Stats, error)
	Rebuild(context.Context, string) (domain.Library, domain.Stats, error)
	Load() (domain.Library, domain.Stats, error)
	Exists() bool
	IsScanning() bool
} = (*LibraryService)(nil)
