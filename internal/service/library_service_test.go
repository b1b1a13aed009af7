package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/sonik/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/sonik/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/sonik/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/sonik/internal/domain"
	"github.com/tejashwikalptaru/sonik/internal/logger"
	"github.com/tejashwikalptaru/sonik/internal/testutil"
)

// Helper to create a test library service
func newTestLibraryService() (*LibraryService, *mock.Engine, *memory.LibraryRepository, *eventbus.SyncEventBus) {
	engine := mock.NewEngine()
	repo := memory.NewLibraryRepository()
	bus := eventbus.NewSyncEventBus()
	service := NewLibraryService(logger.NewTestLogger(), engine, repo, bus)
	return service, engine, repo, bus
}

func TestCollectAudioFiles_FiltersAndOrders(t *testing.T) {
	root := testutil.MusicFolder(t,
		"b.mp3",
		"a.flac",
		"upper.MP3",
		"notes.txt",
		"sub/c.ogg",
		".hidden.mp3",
		".secret/d.mp3",
		"empty/",
	)

	files, err := collectAudioFiles(context.Background(), root, logger.NewTestLogger())
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, "a.flac"),
		filepath.Join(root, "b.mp3"),
		filepath.Join(root, "sub", "c.ogg"),
	}
	assert.Equal(t, want, files)
}

func TestCollectAudioFiles_MissingRoot(t *testing.T) {
	files, err := collectAudioFiles(context.Background(), filepath.Join(t.TempDir(), "missing"), logger.NewTestLogger())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCollectAudioFiles_IgnoreFiles(t *testing.T) {
	root := testutil.MusicFolder(t,
		"keep.mp3",
		"skip.mp3",
		"demos/one.mp3",
		"live/two.mp3",
		"live/drafts/three.mp3",
		"live/four.mp3",
	)
	testutil.WriteFile(t, filepath.Join(root, ".gitignore"), "skip.mp3\ndemos/\n")
	testutil.WriteFile(t, filepath.Join(root, "live", ".ignore"), "drafts/\nfour.mp3\n")

	files, err := collectAudioFiles(context.Background(), root, logger.NewTestLogger())
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, "keep.mp3"),
		filepath.Join(root, "live", "two.mp3"),
	}
	assert.Equal(t, want, files)
}

func TestCollectAudioFiles_Cancelled(t *testing.T) {
	root := testutil.MusicFolder(t, "a.mp3", "b.mp3")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := collectAudioFiles(ctx, root, logger.NewTestLogger())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLibraryService_BuildEmptyFolder(t *testing.T) {
	service, _, repo, bus := newTestLibraryService()
	defer bus.Close()

	library, stats, err := service.Build(context.Background(), testutil.MusicFolder(t))
	require.NoError(t, err)

	assert.Empty(t, library)
	assert.Equal(t, domain.Stats{}, stats)
	assert.True(t, repo.Exists(), "an empty library is still persisted")
}

func TestLibraryService_BuildSingleFile(t *testing.T) {
	service, engine, _, bus := newTestLibraryService()
	defer bus.Close()

	root := testutil.MusicFolder(t, "song.mp3")
	engine.SetMetadata(domain.Track{
		FilePath: filepath.Join(root, "song.mp3"),
		Title:    "Song",
		Artist:   "Artist",
		Album:    "Album",
		Year:     2001,
		TrackNum: 1,
		Duration: 180000,
	})

	library, stats, err := service.Build(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, library, 1)
	assert.Equal(t, "Artist", library[0].Name)
	require.Len(t, library[0].Albums, 1)
	assert.Equal(t, "Album", library[0].Albums[0].Title)
	assert.Equal(t, int32(2001), library[0].Albums[0].Year)
	require.Len(t, library[0].Albums[0].Tracks, 1)
	assert.Equal(t, domain.Stats{Artists: 1, Albums: 1, Tracks: 1, TotalTime: 180000}, stats)
}

func TestLibraryService_BuildOrdersTracksByNumber(t *testing.T) {
	service, engine, _, bus := newTestLibraryService()
	defer bus.Close()

	// walk order is a.mp3 then b.mp3, tag order is the reverse
	root := testutil.MusicFolder(t, "a.mp3", "b.mp3")
	engine.SetMetadata(domain.Track{FilePath: filepath.Join(root, "a.mp3"), Title: "Second", Artist: "X", Album: "Y", TrackNum: 2})
	engine.SetMetadata(domain.Track{FilePath: filepath.Join(root, "b.mp3"), Title: "First", Artist: "X", Album: "Y", TrackNum: 1})

	library, _, err := service.Build(context.Background(), root)
	require.NoError(t, err)

	tracks := library[0].Albums[0].Tracks
	require.Len(t, tracks, 2)
	assert.Equal(t, uint32(1), tracks[0].TrackNum)
	assert.Equal(t, uint32(2), tracks[1].TrackNum)
}

func TestLibraryService_BuildSkipsUnreadableTags(t *testing.T) {
	service, engine, _, bus := newTestLibraryService()
	defer bus.Close()

	root := testutil.MusicFolder(t, "good.mp3", "bad.mp3")
	engine.SetUnreadable(filepath.Join(root, "bad.mp3"))

	library, stats, err := service.Build(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Tracks)
	assert.Equal(t, "good", library[0].Albums[0].Tracks[0].Title)
}

func TestLibraryService_BuildPublishesEvents(t *testing.T) {
	service, _, _, bus := newTestLibraryService()
	defer bus.Close()

	var mu sync.Mutex
	var types []domain.EventType
	var progress int
	bus.SubscribeAll(func(event domain.Event) {
		mu.Lock()
		defer mu.Unlock()
		if event.Type() == domain.EventScanProgress {
			progress++
			return
		}
		types = append(types, event.Type())
	})

	root := testutil.MusicFolder(t, "a.mp3", "b.mp3", "c.mp3")
	_, _, err := service.Build(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 3, progress)
	assert.Equal(t, []domain.EventType{
		domain.EventScanStarted,
		domain.EventLibrarySaved,
		domain.EventScanCompleted,
	}, types)
}

func TestLibraryService_BuildCancelled(t *testing.T) {
	service, _, repo, bus := newTestLibraryService()
	defer bus.Close()

	cancelled := false
	bus.Subscribe(domain.EventScanCancelled, func(domain.Event) { cancelled = true })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := service.Build(ctx, testutil.MusicFolder(t, "a.mp3"))
	assert.ErrorIs(t, err, domain.ErrScanCancelled)
	assert.True(t, cancelled)
	assert.False(t, repo.Exists())
	assert.False(t, service.IsScanning())
}

func TestLibraryService_BuildMissingFolder(t *testing.T) {
	service, engine, repo, bus := newTestLibraryService()
	defer bus.Close()

	library, stats, err := service.Build(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)

	assert.Empty(t, library)
	assert.Equal(t, domain.Stats{}, stats)
	assert.Zero(t, engine.MetadataCalls())
	assert.True(t, repo.Exists())
}

func TestLibraryService_BuildSaveFailure(t *testing.T) {
	service, _, repo, bus := newTestLibraryService()
	defer bus.Close()
	repo.SetFailSave(true)

	library, _, err := service.Build(context.Background(), testutil.MusicFolder(t, "a.mp3"))

	var serviceErr *domain.ServiceError
	require.True(t, errors.As(err, &serviceErr))
	assert.Equal(t, "Build", serviceErr.Op)
	assert.Nil(t, library)
}

func TestLibraryService_LoadEqualsBuild(t *testing.T) {
	service, engine, _, bus := newTestLibraryService()
	defer bus.Close()

	root := testutil.MusicFolder(t, "x/1.mp3", "x/2.mp3", "y/1.flac")
	engine.SetMetadata(domain.Track{FilePath: filepath.Join(root, "x", "1.mp3"), Title: "One", Artist: "beta", Album: "B", TrackNum: 1, Duration: 1000})
	engine.SetMetadata(domain.Track{FilePath: filepath.Join(root, "x", "2.mp3"), Title: "Two", Artist: "beta", Album: "B", TrackNum: 2, Duration: 2000})
	engine.SetMetadata(domain.Track{FilePath: filepath.Join(root, "y", "1.flac"), Title: "Solo", Artist: "Alpha", Album: "A", TrackNum: 1, Duration: 500})

	built, builtStats, err := service.Build(context.Background(), root)
	require.NoError(t, err)

	loaded, loadedStats, err := service.Load()
	require.NoError(t, err)

	assert.True(t, built.Equal(loaded))
	assert.Equal(t, builtStats, loadedStats)
	assert.Equal(t, "Alpha", loaded[0].Name)
	assert.Equal(t, uint64(3500), loadedStats.TotalTime)
}

func TestLibraryService_LoadMissing(t *testing.T) {
	service, _, _, bus := newTestLibraryService()
	defer bus.Close()

	_, _, err := service.Load()
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
}

func TestLibraryService_LoadOrBuild(t *testing.T) {
	service, _, repo, bus := newTestLibraryService()
	defer bus.Close()

	root := testutil.MusicFolder(t, "a.mp3")

	_, stats, built, err := service.LoadOrBuild(context.Background(), root)
	require.NoError(t, err)
	assert.True(t, built)
	assert.Equal(t, 1, stats.Tracks)

	_, stats, built, err = service.LoadOrBuild(context.Background(), root)
	require.NoError(t, err)
	assert.False(t, built)
	assert.Equal(t, 1, stats.Tracks)
	assert.Equal(t, 1, repo.SaveCount())
}

func TestLibraryService_Rebuild(t *testing.T) {
	service, _, repo, bus := newTestLibraryService()
	defer bus.Close()

	root := testutil.MusicFolder(t, "a.mp3")
	_, _, err := service.Build(context.Background(), root)
	require.NoError(t, err)

	testutil.WriteFile(t, filepath.Join(root, "b.mp3"), "")
	_, stats, err := service.Rebuild(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Tracks)
	assert.Equal(t, 2, repo.SaveCount())
}

func TestLibraryService_SetWorkers(t *testing.T) {
	service, _, _, bus := newTestLibraryService()
	defer bus.Close()

	service.SetWorkers(0)
	assert.Equal(t, 1, service.workers)

	root := testutil.MusicFolder(t, "a.mp3", "b.mp3", "c.mp3", "d.mp3")
	_, stats, err := service.Build(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Tracks)
}

func TestAggregate_GroupsByAlbumArtist(t *testing.T) {
	tracks := []domain.Track{
		{FilePath: "/1", Title: "Feat", Artist: "Guest", AlbumArtist: "Band", Album: "Live", TrackNum: 2, Duration: 10},
		{FilePath: "/2", Title: "Intro", Artist: "Band", Album: "Live", TrackNum: 1, Duration: 20},
		{FilePath: "/3", Title: "Solo", Artist: "Guest", Album: "Own", Duration: 30},
	}

	library, stats := Aggregate(tracks)

	require.Len(t, library, 2)
	assert.Equal(t, "Band", library[0].Name)
	assert.Equal(t, "Guest", library[1].Name)

	live := library[0].Albums[0]
	assert.Equal(t, "Band", live.Artist)
	require.Len(t, live.Tracks, 2)
	assert.Equal(t, "Intro", live.Tracks[0].Title)
	assert.Equal(t, "Feat", live.Tracks[1].Title)
	assert.Empty(t, live.Tracks[0].AlbumArtist, "fallback does not rewrite the track")

	assert.Equal(t, domain.Stats{Artists: 2, Albums: 2, Tracks: 3, TotalTime: 60}, stats)
}

func TestAggregate_SortsCaseFolded(t *testing.T) {
	tracks := []domain.Track{
		{FilePath: "/1", Artist: "zed", Album: "b"},
		{FilePath: "/2", Artist: "Abba", Album: "Zulu"},
		{FilePath: "/3", Artist: "Abba", Album: "alpha", Year: 1970},
		{FilePath: "/4", Artist: "Abba", Album: "alpha", Year: 1999},
	}

	library, stats := Aggregate(tracks)

	require.Len(t, library, 2)
	assert.Equal(t, "Abba", library[0].Name)
	assert.Equal(t, "alpha", library[0].Albums[0].Title)
	assert.Equal(t, int32(1970), library[0].Albums[0].Year, "album keeps the first year seen")
	assert.Equal(t, "Zulu", library[0].Albums[1].Title)
	assert.Equal(t, 3, stats.Albums)
}

func TestAggregate_KeysAreVerbatim(t *testing.T) {
	tracks := []domain.Track{
		{FilePath: "/1", Artist: "Beatles", Album: "Help"},
		{FilePath: "/2", Artist: "beatles", Album: "Help"},
		{FilePath: "/3", Artist: "Beatles", Album: "help"},
	}

	_, stats := Aggregate(tracks)
	assert.Equal(t, 2, stats.Artists)
	assert.Equal(t, 3, stats.Albums)
}
