// Package beep implements the AudioEngine port on top of the gopxl/beep
// speaker. Decoding covers mp3, flac and ogg vorbis; every stream is
// resampled to the speaker rate before it reaches a sink.
package beep

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"

	"github.com/tejashwikalptaru/sonik/internal/domain"
	"github.com/tejashwikalptaru/sonik/internal/ports"
)

// DefaultSampleRate is the speaker rate used when none is configured.
const DefaultSampleRate = 44100

// resampleQuality is passed to beep.Resample. 4 is beep's recommended
// trade-off between CPU and audible artifacts.
const resampleQuality = 4

// Engine drives the default output device through the beep speaker.
//
// The speaker plays one sink at a time: NewSink clears whatever was playing
// and installs the new sink.
//
// Thread-safety: This implementation is thread-safe.
type Engine struct {
	logger *slog.Logger

	initialized bool
	sampleRate  beep.SampleRate

	mu sync.Mutex
}

// NewEngine creates an engine. Call Initialize before playing anything.
func NewEngine() *Engine {
	return &Engine{
		logger: slog.Default(),
	}
}

// SetLogger sets the logger for this engine.
// This should be called after construction before using the engine.
func (e *Engine) SetLogger(logger *slog.Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logger = logger
}

// Initialize opens the output device with a 100ms buffer.
func (e *Engine) Initialize(sampleRate int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return domain.ErrAlreadyInitialized
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return domain.NewAudioEngineError("initialize", "", -1, "failed to open output device", err)
	}

	e.initialized = true
	e.sampleRate = sr
	e.logger.Info("audio output initialized", slog.Int("sample_rate", sampleRate))
	return nil
}

// Shutdown stops playback and closes the output device.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return domain.ErrNotInitialized
	}

	speaker.Clear()
	speaker.Close()
	e.initialized = false
	return nil
}

// IsInitialized returns true if the engine has been successfully initialized.
func (e *Engine) IsInitialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialized
}

// NewSink replaces whatever the speaker is playing with a new empty sink.
func (e *Engine) NewSink() (ports.Sink, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return nil, domain.ErrNotInitialized
	}

	sink := NewSink()
	speaker.Clear()
	speaker.Play(sink)
	return sink, nil
}

// Decode opens filePath and resamples it to the speaker rate.
func (e *Engine) Decode(filePath string) (ports.Source, error) {
	e.mu.Lock()
	initialized, rate := e.initialized, e.sampleRate
	e.mu.Unlock()

	if !initialized {
		return nil, domain.ErrNotInitialized
	}

	stream, format, err := decodeFile(filePath)
	if err != nil {
		return nil, err
	}

	var out beep.Streamer = stream
	if format.SampleRate != rate {
		out = beep.Resample(resampleQuality, format.SampleRate, rate, stream)
	}

	return &Source{
		streamer: out,
		closer:   stream,
		length:   format.SampleRate.D(stream.Len()),
	}, nil
}

// decodeFile picks a decoder by extension. Closing the returned stream closes the file.
func decodeFile(filePath string) (beep.StreamSeekCloser, beep.Format, error) {
	if filePath == "" {
		return nil, beep.Format{}, domain.ErrInvalidFilePath
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".mp3", ".flac", ".ogg":
	default:
		return nil, beep.Format{}, domain.NewAudioEngineError("decode", filePath, -1,
			fmt.Sprintf("no decoder for %q", ext), domain.ErrUnsupportedFormat)
	}

	f, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			err = domain.ErrFileNotFound
		}
		return nil, beep.Format{}, domain.NewAudioEngineError("decode", filePath, -1, "failed to open file", err)
	}

	var (
		stream beep.StreamSeekCloser
		format beep.Format
	)
	switch ext {
	case ".mp3":
		stream, format, err = mp3.Decode(f)
	case ".flac":
		stream, format, err = flac.Decode(f)
	case ".ogg":
		stream, format, err = vorbis.Decode(f)
	}
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, domain.NewAudioEngineError("decode", filePath, -1, "decoder rejected file", err)
	}

	return stream, format, nil
}

// Source is a decoded, resampled stream.
type Source struct {
	streamer beep.Streamer
	closer   beep.StreamSeekCloser
	length   time.Duration
}

// Stream implements beep.Streamer.
func (s *Source) Stream(samples [][2]float64) (int, bool) {
	return s.streamer.Stream(samples)
}

// Err implements beep.Streamer.
func (s *Source) Err() error {
	return s.streamer.Err()
}

// Duration returns the decoded length.
func (s *Source) Duration() time.Duration {
	return s.length
}

// Close releases the decoder and its file.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Verify that Engine implements the AudioEngine interface
var (
	_ ports.AudioEngine = (*Engine)(nil)
	_ ports.Source      = (*Source)(nil)
	_ beep.Streamer     = (*Source)(nil)
)
