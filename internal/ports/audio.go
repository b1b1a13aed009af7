// Package ports define interfaces for dependency inversion.
// These interfaces allow the core business logic to remain independent of external frameworks.
package ports

import (
	"time"

	"github.com/tejashwikalptaru/sonik/internal/domain"
)

// AudioEngine is the interface for audio output engines.
// This abstracts the underlying audio library and allows for testing with mocks.
//
// The engine owns the output device. Playback happens through sinks: the audio
// task creates a fresh sink for every track and drops the old one, which is how
// a playing track is stopped.
//
// Implementations must be thread-safe as they may be called from multiple goroutines.
type AudioEngine interface {
	MetadataReader

	// Initialize opens the default output device at the given sample rate.
	//
	// Returns domain.ErrAlreadyInitialized if called twice.
	Initialize(sampleRate int) error

	// Shutdown releases the output device.
	//
	// Returns domain.ErrNotInitialized if the engine was never initialized.
	Shutdown() error

	// IsInitialized returns true if the engine has been successfully initialized.
	IsInitialized() bool

	// NewSink creates an empty, playing sink attached to the output device.
	// Any previously created sink stops producing sound.
	NewSink() (Sink, error)

	// Decode opens an audio file for playback.
	//
	// Returns an AudioEngineError wrapping domain.ErrUnsupportedFormat for
	// extensions the engine cannot decode, or the decoder's error otherwise.
	Decode(filePath string) (Source, error)
}

// MetadataReader reads tags from audio files.
// The library indexer depends only on this part of the engine.
type MetadataReader interface {
	// GetMetadata reads the tags of filePath into a Track.
	//
	// Returns an error wrapping domain.ErrTagUnreadable if the tags cannot be read.
	GetMetadata(filePath string) (domain.Track, error)
}

// Sink is a playback queue attached to the output device.
//
// Thread-safety: Implementations must be safe to call from the audio task while
// the device callback is consuming samples.
type Sink interface {
	// Append queues a decoded source for playback.
	Append(src Source) error

	// Play resumes a paused sink.
	Play()

	// Pause silences the sink while keeping its position.
	Pause()

	// IsPaused reports whether the sink is paused.
	IsPaused() bool

	// Stop drops every queued source. The sink becomes empty.
	Stop()

	// Empty reports whether every appended source has finished playing.
	Empty() bool
}

// Source is a decoded audio stream ready to be appended to a sink.
type Source interface {
	// Duration returns the stream length, or 0 when unknown.
	Duration() time.Duration

	// Close releases the underlying file.
	Close() error
}
