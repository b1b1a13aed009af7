package beep

import (
	"fmt"
	"sync"

	"github.com/gopxl/beep/v2"

	"github.com/tejashwikalptaru/sonik/internal/domain"
	"github.com/tejashwikalptaru/sonik/internal/ports"
)

// Sink is a queue of sources played back to back, behind a pause control.
// The speaker pulls samples through Stream; once the queue drains the sink
// produces silence and reports Empty.
//
// Thread-safety: Stream runs on the speaker goroutine while the other
// methods run on the audio task; both sides take mu.
type Sink struct {
	queue []beep.Streamer
	ctrl  *beep.Ctrl
	mu    sync.Mutex
}

// NewSink creates an empty, unpaused sink.
func NewSink() *Sink {
	s := &Sink{}
	s.ctrl = &beep.Ctrl{Streamer: beep.StreamerFunc(s.drain)}
	return s
}

// Stream implements beep.Streamer.
func (s *Sink) Stream(samples [][2]float64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Stream(samples)
}

// Err implements beep.Streamer.
func (s *Sink) Err() error {
	return nil
}

// drain fills samples from the head of the queue, moving on as sources end.
// It never reports exhaustion so the speaker keeps pulling; the gap is silence.
// Called with mu held.
func (s *Sink) drain(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) && len(s.queue) > 0 {
		n, ok := s.queue[0].Stream(samples[filled:])
		filled += n
		if !ok || n == 0 {
			s.pop()
		}
	}
	clear(samples[filled:])
	return len(samples), true
}

func (s *Sink) pop() {
	if c, ok := s.queue[0].(interface{ Close() error }); ok {
		_ = c.Close()
	}
	s.queue = s.queue[1:]
}

// Append queues a source produced by Engine.Decode.
func (s *Sink) Append(src ports.Source) error {
	streamer, ok := src.(beep.Streamer)
	if !ok {
		return domain.NewAudioEngineError("append", "", -1, fmt.Sprintf("unexpected source type %T", src), nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, streamer)
	return nil
}

// Play resumes playback.
func (s *Sink) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.Paused = false
}

// Pause silences the sink without losing the position.
func (s *Sink) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.Paused = true
}

// IsPaused reports whether the sink is paused.
func (s *Sink) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Paused
}

// Stop closes and drops every queued source.
func (s *Sink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.queue) > 0 {
		s.pop()
	}
}

// Empty reports whether every queued source has finished.
func (s *Sink) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) == 0
}

// Verify that Sink implements the Sink interface
var (
	_ ports.Sink    = (*Sink)(nil)
	_ beep.Streamer = (*Sink)(nil)
)
