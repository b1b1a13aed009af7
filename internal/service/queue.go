package service

import (
	"math/rand/v2"

	"github.com/gammazero/deque"

	"github.com/tejashwikalptaru/sonik/internal/domain"
)

// Queue is the ordered list of tracks waiting to be played.
// Pushes and takes at either end are O(1) amortised.
// It belongs to the UI task and is not safe for concurrent use.
type Queue struct {
	tracks    deque.Deque[domain.Track]
	totalTime uint64
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// PushBack appends a track.
func (q *Queue) PushBack(t domain.Track) {
	q.tracks.PushBack(t)
	q.totalTime += uint64(t.Duration)
}

// PushFront inserts a track so it plays next.
func (q *Queue) PushFront(t domain.Track) {
	q.tracks.PushFront(t)
	q.totalTime += uint64(t.Duration)
}

// TakeFront removes and returns the next track.
// Returns domain.ErrQueueEmpty when there is nothing queued.
func (q *Queue) TakeFront() (domain.Track, error) {
	if q.tracks.Len() == 0 {
		return domain.Track{}, domain.ErrQueueEmpty
	}

	t := q.tracks.PopFront()
	q.totalTime -= uint64(t.Duration)
	return t, nil
}

// Clear removes every track.
func (q *Queue) Clear() {
	q.tracks.Clear()
	q.totalTime = 0
}

// Shuffle randomly permutes the queue (Fisher-Yates).
func (q *Queue) Shuffle() {
	rand.Shuffle(q.tracks.Len(), func(i, j int) {
		a, b := q.tracks.At(i), q.tracks.At(j)
		q.tracks.Set(i, b)
		q.tracks.Set(j, a)
	})
}

// IsEmpty returns true if no track is queued.
func (q *Queue) IsEmpty() bool {
	return q.tracks.Len() == 0
}

// Len returns the number of queued tracks.
func (q *Queue) Len() int {
	return q.tracks.Len()
}

// TotalTimeMs returns the summed duration of all queued tracks in milliseconds.
func (q *Queue) TotalTimeMs() uint64 {
	return q.totalTime
}

// Tracks returns a copy of the queued tracks, next track first.
func (q *Queue) Tracks() []domain.Track {
	tracks := make([]domain.Track, q.tracks.Len())
	for i := range tracks {
		tracks[i] = q.tracks.At(i)
	}
	return tracks
}
