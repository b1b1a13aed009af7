package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/sonik/internal/domain"
)

func queueTrack(path string, ms uint32) domain.Track {
	return domain.Track{FilePath: path, Title: path, Duration: ms}
}

func TestQueue_PushBackTakeFront(t *testing.T) {
	q := NewQueue()
	q.PushBack(queueTrack("/a", 100))
	q.PushBack(queueTrack("/b", 200))

	assert.Equal(t, 2, q.Len())
	assert.Equal(t, uint64(300), q.TotalTimeMs())

	first, err := q.TakeFront()
	require.NoError(t, err)
	assert.Equal(t, "/a", first.FilePath)
	assert.Equal(t, uint64(200), q.TotalTimeMs())

	second, err := q.TakeFront()
	require.NoError(t, err)
	assert.Equal(t, "/b", second.FilePath)
	assert.True(t, q.IsEmpty())
	assert.Zero(t, q.TotalTimeMs())
}

func TestQueue_TakeFrontEmpty(t *testing.T) {
	q := NewQueue()

	_, err := q.TakeFront()
	assert.ErrorIs(t, err, domain.ErrQueueEmpty)
}

func TestQueue_PushFront(t *testing.T) {
	q := NewQueue()
	q.PushBack(queueTrack("/b", 1))
	q.PushFront(queueTrack("/a", 2))

	tracks := q.Tracks()
	require.Len(t, tracks, 2)
	assert.Equal(t, "/a", tracks[0].FilePath)
	assert.Equal(t, "/b", tracks[1].FilePath)
	assert.Equal(t, uint64(3), q.TotalTimeMs())
}

func TestQueue_PushCount(t *testing.T) {
	q := NewQueue()
	for i := range 10 {
		if i%2 == 0 {
			q.PushBack(queueTrack("/x", 1))
		} else {
			q.PushFront(queueTrack("/y", 1))
		}
	}
	assert.Equal(t, 10, q.Len())
	assert.Equal(t, uint64(10), q.TotalTimeMs())
}

func TestQueue_Clear(t *testing.T) {
	q := NewQueue()
	q.PushBack(queueTrack("/a", 100))
	q.Clear()

	assert.True(t, q.IsEmpty())
	assert.Zero(t, q.TotalTimeMs())

	q.PushBack(queueTrack("/b", 5))
	assert.Equal(t, uint64(5), q.TotalTimeMs())
}

func TestQueue_ShuffleIsPermutation(t *testing.T) {
	q := NewQueue()
	want := make(map[string]int)
	for _, p := range []string{"/a", "/b", "/c", "/d", "/e", "/a"} {
		q.PushBack(queueTrack(p, 10))
		want[p]++
	}

	q.Shuffle()

	got := make(map[string]int)
	for !q.IsEmpty() {
		track, err := q.TakeFront()
		require.NoError(t, err)
		got[track.FilePath]++
	}
	assert.Equal(t, want, got)
}

func TestQueue_ShuffleEmptyAndSingle(t *testing.T) {
	q := NewQueue()
	q.Shuffle()
	assert.True(t, q.IsEmpty())

	q.PushBack(queueTrack("/only", 1))
	q.Shuffle()
	assert.Equal(t, "/only", q.Tracks()[0].FilePath)
}

func TestQueue_TracksIsCopy(t *testing.T) {
	q := NewQueue()
	q.PushBack(queueTrack("/a", 1))

	tracks := q.Tracks()
	tracks[0].FilePath = "/changed"

	assert.Equal(t, "/a", q.Tracks()[0].FilePath)
}

func TestQueue_InterleavedEndsKeepOrder(t *testing.T) {
	q := NewQueue()
	q.PushBack(queueTrack("/c", 1))
	q.PushFront(queueTrack("/b", 1))
	q.PushBack(queueTrack("/d", 1))
	q.PushFront(queueTrack("/a", 1))

	first, err := q.TakeFront()
	require.NoError(t, err)
	assert.Equal(t, "/a", first.FilePath)

	q.PushFront(queueTrack("/a2", 1))
	q.PushBack(queueTrack("/e", 1))

	var paths []string
	for _, track := range q.Tracks() {
		paths = append(paths, track.FilePath)
	}
	assert.Equal(t, []string{"/a2", "/b", "/c", "/d", "/e"}, paths)
	assert.Equal(t, uint64(5), q.TotalTimeMs())
}

func TestQueue_PushFrontManyTracks(t *testing.T) {
	const n = 100_000
	q := NewQueue()

	start := time.Now()
	for i := range n {
		q.PushFront(queueTrack("/t", uint32(i%2)))
	}
	elapsed := time.Since(start)

	// a front insert that shifts the whole queue takes tens of seconds here
	assert.Less(t, elapsed, 2*time.Second)
	assert.Equal(t, n, q.Len())
	assert.Equal(t, uint64(n/2), q.TotalTimeMs())

	for range n {
		_, err := q.TakeFront()
		require.NoError(t, err)
	}
	assert.True(t, q.IsEmpty())
	assert.Zero(t, q.TotalTimeMs())
}

func BenchmarkQueue_PushFront(b *testing.B) {
	q := NewQueue()
	track := queueTrack("/t", 1)
	for range b.N {
		q.PushFront(track)
	}
}
