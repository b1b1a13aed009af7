package mock

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/sonik/internal/domain"
)

func newInitializedEngine(t *testing.T) *Engine {
	engine := NewEngine()
	require.NoError(t, engine.Initialize(44100))
	return engine
}

func TestInitialize(t *testing.T) {
	engine := NewEngine()
	assert.False(t, engine.IsInitialized())

	require.NoError(t, engine.Initialize(44100))
	assert.True(t, engine.IsInitialized())

	err := engine.Initialize(44100)
	assert.ErrorIs(t, err, domain.ErrAlreadyInitialized)
}

func TestShutdown(t *testing.T) {
	engine := NewEngine()
	assert.ErrorIs(t, engine.Shutdown(), domain.ErrNotInitialized)

	require.NoError(t, engine.Initialize(44100))
	require.NoError(t, engine.Shutdown())
	assert.False(t, engine.IsInitialized())
}

func TestFailInitialize(t *testing.T) {
	engine := NewEngine()
	engine.SetFailInitialize(true)

	err := engine.Initialize(44100)
	var audioErr *domain.AudioEngineError
	require.True(t, errors.As(err, &audioErr))
	assert.Equal(t, "initialize", audioErr.Op)
}

func TestNewSinkRequiresInitialize(t *testing.T) {
	engine := NewEngine()
	_, err := engine.NewSink()
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
}

func TestSinkLifecycle(t *testing.T) {
	engine := newInitializedEngine(t)

	sinkPort, err := engine.NewSink()
	require.NoError(t, err)
	sink := engine.LastSink()
	require.Same(t, sink, sinkPort)
	assert.True(t, sink.Empty())

	src, err := engine.Decode("/music/a.mp3")
	require.NoError(t, err)
	require.NoError(t, sink.Append(src))
	assert.False(t, sink.Empty())
	assert.Equal(t, "/music/a.mp3", sink.Playing())

	sink.Pause()
	assert.True(t, sink.IsPaused())
	sink.Play()
	assert.False(t, sink.IsPaused())

	sink.Finish()
	assert.True(t, sink.Empty())
	assert.True(t, src.(*Source).closed)
}

func TestSinkStop(t *testing.T) {
	engine := newInitializedEngine(t)
	sinkPort, err := engine.NewSink()
	require.NoError(t, err)

	src, err := engine.Decode("/music/a.mp3")
	require.NoError(t, err)
	require.NoError(t, sinkPort.Append(src))

	sinkPort.Stop()
	assert.True(t, sinkPort.Empty())
	assert.True(t, engine.LastSink().Stopped())
}

func TestDecodeUsesConfiguredDuration(t *testing.T) {
	engine := newInitializedEngine(t)
	engine.SetMetadata(domain.Track{FilePath: "/music/a.mp3", Duration: 1500})

	src, err := engine.Decode("/music/a.mp3")
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, src.Duration())

	other, err := engine.Decode("/music/b.mp3")
	require.NoError(t, err)
	assert.Equal(t, DefaultDuration, other.Duration())

	assert.Equal(t, []string{"/music/a.mp3", "/music/b.mp3"}, engine.Decoded())
}

func TestFailDecode(t *testing.T) {
	engine := newInitializedEngine(t)
	engine.SetFailDecode(true)

	_, err := engine.Decode("/music/a.mp3")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	assert.Empty(t, engine.Decoded())
}

func TestGetMetadata(t *testing.T) {
	engine := NewEngine()
	engine.SetMetadata(domain.Track{FilePath: "/music/a.mp3", Title: "Configured", TrackNum: 4})
	engine.SetUnreadable("/music/broken.mp3")

	track, err := engine.GetMetadata("/music/a.mp3")
	require.NoError(t, err)
	assert.Equal(t, "Configured", track.Title)

	derived, err := engine.GetMetadata("/music/Some Song.flac")
	require.NoError(t, err)
	assert.Equal(t, "Some Song", derived.Title)
	assert.Equal(t, "/music/Some Song.flac", derived.FilePath)

	_, err = engine.GetMetadata("/music/broken.mp3")
	assert.ErrorIs(t, err, domain.ErrTagUnreadable)

	_, err = engine.GetMetadata("")
	assert.ErrorIs(t, err, domain.ErrInvalidFilePath)

	assert.Equal(t, 4, engine.MetadataCalls())
}

func TestConcurrentMetadata(t *testing.T) {
	engine := NewEngine()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				_, _ = engine.GetMetadata("/music/a.mp3")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, engine.MetadataCalls())
}
