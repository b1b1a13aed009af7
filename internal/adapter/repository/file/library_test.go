package file

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/sonik/internal/domain"
	"github.com/tejashwikalptaru/sonik/internal/logger"
	"github.com/tejashwikalptaru/sonik/internal/testutil"
)

func newTestRepository(t *testing.T) *LibraryRepository {
	dir := t.TempDir()
	return NewLibraryRepository(
		filepath.Join(dir, "data", "library.bin"),
		filepath.Join(dir, "data", "stats.bin"),
		logger.NewTestLogger(),
	)
}

func createTestLibrary() (domain.Library, domain.Stats) {
	artist := domain.NewArtist("The Beatles")
	album := domain.NewAlbum("Abbey Road", "The Beatles", 1969)
	album.Insert(domain.Track{
		FilePath: "/music/abbey/01.mp3", Title: "Come Together", Artist: "The Beatles",
		AlbumArtist: "The Beatles", Album: "Abbey Road", Year: 1969, TrackNum: 1, Duration: 259000,
	})
	album.Insert(domain.Track{
		FilePath: "/music/abbey/02.mp3", Title: "Something", Artist: "The Beatles",
		Album: "Abbey Road", Year: 1969, TrackNum: 2, Duration: 182000,
	})
	artist.AddAlbum(album)

	stats := domain.Stats{Artists: 1, Albums: 1, Tracks: 2, TotalTime: 441000}
	return domain.Library{artist}, stats
}

func TestLibraryRepository_SaveLoadRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	lib, stats := createTestLibrary()

	require.False(t, repo.Exists())
	require.NoError(t, repo.Save(lib, stats))
	require.True(t, repo.Exists())

	loaded, loadedStats, err := repo.Load()
	require.NoError(t, err)

	assert.True(t, lib.Equal(loaded))
	assert.Equal(t, lib[0].Albums[0].Tracks, loaded[0].Albums[0].Tracks)
	assert.Equal(t, int32(1969), loaded[0].Albums[0].Year)
	assert.Equal(t, stats, loadedStats)
}

func TestLibraryRepository_EmptyLibrary(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.Save(domain.Library{}, domain.Stats{}))

	loaded, stats, err := repo.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.Equal(t, domain.Stats{}, stats)
}

func TestLibraryRepository_SaveOverwrites(t *testing.T) {
	repo := newTestRepository(t)
	lib, stats := createTestLibrary()

	require.NoError(t, repo.Save(lib, stats))
	require.NoError(t, repo.Save(domain.Library{domain.NewArtist("Solo")}, domain.Stats{Artists: 1}))

	loaded, loadedStats, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Solo", loaded[0].Name)
	assert.Equal(t, 1, loadedStats.Artists)
}

func TestLibraryRepository_LoadMissing(t *testing.T) {
	repo := newTestRepository(t)

	_, _, err := repo.Load()
	require.Error(t, err)

	var repoErr *domain.RepositoryError
	require.True(t, errors.As(err, &repoErr))
	assert.Equal(t, "load", repoErr.Op)
	assert.True(t, errors.Is(err, domain.ErrFileNotFound))
}

func TestLibraryRepository_LoadCorrupt(t *testing.T) {
	repo := newTestRepository(t)
	lib, stats := createTestLibrary()
	require.NoError(t, repo.Save(lib, stats))

	testutil.WriteFile(t, repo.libraryPath, "not a gob stream")

	_, _, err := repo.Load()
	require.Error(t, err)

	var repoErr *domain.RepositoryError
	require.True(t, errors.As(err, &repoErr))
	assert.Equal(t, "library", repoErr.Type)
}

func TestLibraryRepository_RejectsOtherVersion(t *testing.T) {
	repo := newTestRepository(t)
	require.NoError(t, writeGob(repo.libraryPath, libraryFile{Version: formatVersion + 1}))
	require.NoError(t, writeGob(repo.statsPath, statsFile{Version: formatVersion}))

	_, _, err := repo.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format version")
}
