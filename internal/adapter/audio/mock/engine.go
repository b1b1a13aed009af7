// Package mock provides a mock implementation of the AudioEngine interface.
// This is used for testing services without an audio device.
package mock

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tejashwikalptaru/sonik/internal/domain"
	"github.com/tejashwikalptaru/sonik/internal/ports"
)

// DefaultDuration is the length reported for tracks without configured metadata.
const DefaultDuration = 3 * time.Minute

// Engine is a mock implementation of the AudioEngine interface.
// Sinks never produce sound; tests decide when a track "finishes" by calling
// Sink.Finish.
//
// Thread-safety: This implementation is thread-safe.
type Engine struct {
	// Dependencies
	logger *slog.Logger

	// Configuration
	initialized bool
	sampleRate  int

	// Recorded activity
	sinks   []*Sink
	decoded []string

	// Metadata returned by GetMetadata, keyed by path
	metadata    map[string]domain.Track
	unreadable  map[string]bool
	metaCallsMu sync.Mutex
	metaCalls   int

	// Behavior configuration (for testing error scenarios)
	failInitialize bool
	failDecode     bool
	failSink       bool

	mu sync.RWMutex
}

// NewEngine creates a new mock audio engine.
func NewEngine() *Engine {
	return &Engine{
		metadata:   make(map[string]domain.Track),
		unreadable: make(map[string]bool),
	}
}

// SetLogger sets the logger for this engine.
// This should be called after construction before using the engine.
func (m *Engine) SetLogger(logger *slog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// SetFailInitialize configures the mock to fail initialization (for testing).
func (m *Engine) SetFailInitialize(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failInitialize = fail
}

// SetFailDecode configures the mock to fail decoding (for testing).
func (m *Engine) SetFailDecode(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failDecode = fail
}

// SetFailSink configures the mock to fail sink creation (for testing).
func (m *Engine) SetFailSink(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSink = fail
}

// SetMetadata registers the track returned by GetMetadata for its FilePath.
func (m *Engine) SetMetadata(track domain.Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata[track.FilePath] = track
}

// SetUnreadable makes GetMetadata fail for path (for testing).
func (m *Engine) SetUnreadable(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unreadable[path] = true
}

// Initialize initializes the mock audio engine.
func (m *Engine) Initialize(sampleRate int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failInitialize {
		return domain.NewAudioEngineError("initialize", "", -1, "mock initialization failed", nil)
	}
	if m.initialized {
		return domain.ErrAlreadyInitialized
	}

	m.initialized = true
	m.sampleRate = sampleRate
	return nil
}

// Shutdown shuts down the mock audio engine.
func (m *Engine) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return domain.ErrNotInitialized
	}

	m.initialized = false
	return nil
}

// IsInitialized returns true if the engine is initialized.
func (m *Engine) IsInitialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// NewSink creates a new sink and records it.
func (m *Engine) NewSink() (ports.Sink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, domain.ErrNotInitialized
	}
	if m.failSink {
		return nil, domain.NewAudioEngineError("sink", "", -1, "mock sink failed", nil)
	}

	sink := &Sink{}
	m.sinks = append(m.sinks, sink)
	return sink, nil
}

// Decode returns a mock source for filePath.
func (m *Engine) Decode(filePath string) (ports.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, domain.ErrNotInitialized
	}
	if filePath == "" {
		return nil, domain.ErrInvalidFilePath
	}
	if m.failDecode {
		return nil, domain.NewAudioEngineError("decode", filePath, -1, "mock decode failed", domain.ErrUnsupportedFormat)
	}

	m.decoded = append(m.decoded, filePath)

	duration := DefaultDuration
	if track, ok := m.metadata[filePath]; ok && track.Duration > 0 {
		duration = track.Length()
	}
	return &Source{Path: filePath, length: duration}, nil
}

// GetMetadata returns the registered track for filePath, or a track derived
// from the file name.
func (m *Engine) GetMetadata(filePath string) (domain.Track, error) {
	m.metaCallsMu.Lock()
	m.metaCalls++
	m.metaCallsMu.Unlock()

	if filePath == "" {
		return domain.Track{}, domain.ErrInvalidFilePath
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.unreadable[filePath] {
		return domain.Track{}, fmt.Errorf("%s: %w", filePath, domain.ErrTagUnreadable)
	}
	if track, ok := m.metadata[filePath]; ok {
		return track, nil
	}

	name := filepath.Base(filePath)
	return domain.Track{
		FilePath: filePath,
		Title:    strings.TrimSuffix(name, filepath.Ext(name)),
		Artist:   "Mock Artist",
		Album:    "Mock Album",
		Duration: uint32(DefaultDuration.Milliseconds()),
	}, nil
}

// Sinks returns every sink created so far, oldest first.
func (m *Engine) Sinks() []*Sink {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*Sink(nil), m.sinks...)
}

// LastSink returns the most recently created sink, or nil.
func (m *Engine) LastSink() *Sink {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.sinks) == 0 {
		return nil
	}
	return m.sinks[len(m.sinks)-1]
}

// Decoded returns the paths passed to successful Decode calls, in order.
func (m *Engine) Decoded() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.decoded...)
}

// MetadataCalls returns how many times GetMetadata was called.
func (m *Engine) MetadataCalls() int {
	m.metaCallsMu.Lock()
	defer m.metaCallsMu.Unlock()
	return m.metaCalls
}

// Source is a decoded mock stream.
type Source struct {
	Path   string
	length time.Duration
	closed bool
}

// Duration returns the configured length.
func (s *Source) Duration() time.Duration {
	return s.length
}

// Close marks the source closed.
func (s *Source) Close() error {
	s.closed = true
	return nil
}

// Sink is an in-memory playback queue.
//
// Thread-safety: This implementation is thread-safe.
type Sink struct {
	queue   []*Source
	paused  bool
	stopped bool
	mu      sync.Mutex
}

// Append queues src, which must come from the mock Engine.
func (s *Sink) Append(src ports.Source) error {
	ms, ok := src.(*Source)
	if !ok {
		return domain.NewAudioEngineError("append", "", -1, fmt.Sprintf("unexpected source type %T", src), nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, ms)
	return nil
}

// Play resumes the sink.
func (s *Sink) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

// Pause pauses the sink.
func (s *Sink) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// IsPaused reports whether the sink is paused.
func (s *Sink) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Stop drops every queued source.
func (s *Sink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, src := range s.queue {
		_ = src.Close()
	}
	s.queue = nil
	s.stopped = true
}

// Empty reports whether nothing is queued.
func (s *Sink) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) == 0
}

// Stopped reports whether Stop was called.
func (s *Sink) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Playing returns the path of the source at the head of the queue, or "".
func (s *Sink) Playing() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return ""
	}
	return s.queue[0].Path
}

// Finish simulates the head source reaching its end.
func (s *Sink) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return
	}
	_ = s.queue[0].Close()
	s.queue = s.queue[1:]
}

// Verify that the mock types implement the audio ports
var (
	_ ports.AudioEngine = (*Engine)(nil)
	_ ports.Sink        = (*Sink)(nil)
	_ ports.Source      = (*Source)(nil)
)
