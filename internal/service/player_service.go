package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/tejashwikalptaru/sonik/internal/domain"
	"github.com/tejashwikalptaru/sonik/internal/ports"
)

// DefaultBeaconTimeout bounds how long the audio task waits for the UI to
// take a beacon before polling its inbound channels again.
const DefaultBeaconTimeout = 250 * time.Millisecond

// PlaybackService is the audio task. It owns the output sink and is driven
// only through its channels: tracks and commands in, the idleness beacon out.
//
// Run must be called from exactly one goroutine. Nothing else touches the
// sink, so the service holds no locks.
type PlaybackService struct {
	// Dependencies (injected)
	logger *slog.Logger
	engine ports.AudioEngine
	bus    ports.EventBus

	// Channel ends
	tracks   <-chan domain.Track
	commands <-chan domain.PlaybackCommand
	beacon   chan<- bool

	beaconTimeout time.Duration

	sink ports.Sink
}

// NewPlaybackService creates the audio task.
func NewPlaybackService(
	logger *slog.Logger,
	engine ports.AudioEngine,
	bus ports.EventBus,
	tracks <-chan domain.Track,
	commands <-chan domain.PlaybackCommand,
	beacon chan<- bool,
) *PlaybackService {
	return &PlaybackService{
		logger:        logger,
		engine:        engine,
		bus:           bus,
		tracks:        tracks,
		commands:      commands,
		beacon:        beacon,
		beaconTimeout: DefaultBeaconTimeout,
	}
}

// SetBeaconTimeout overrides DefaultBeaconTimeout.
// This should be called before Run.
func (s *PlaybackService) SetBeaconTimeout(d time.Duration) {
	s.beaconTimeout = d
}

// Run loops until the tracks or commands channel is closed, returning nil,
// or ctx is cancelled, returning ctx.Err(). Each iteration offers the
// beacon, then polls for a new track, then polls for a command.
func (s *PlaybackService) Run(ctx context.Context) error {
	sink, err := s.engine.NewSink()
	if err != nil {
		return domain.NewServiceError("PlaybackService", "Run", "failed to open audio sink", err)
	}
	s.sink = sink
	defer func() {
		s.sink.Stop()
		s.logger.Debug("audio task stopped")
	}()

	s.logger.Debug("audio task started")

	timer := time.NewTimer(s.beaconTimeout)
	defer timer.Stop()

	for {
		if err := s.sendBeacon(ctx, timer); err != nil {
			return err
		}

		select {
		case track, ok := <-s.tracks:
			if !ok {
				return nil
			}
			s.play(track)
		default:
		}

		select {
		case cmd, ok := <-s.commands:
			if !ok {
				return nil
			}
			s.handle(cmd)
		default:
		}
	}
}

// sendBeacon offers sink.Empty() to the UI for at most beaconTimeout.
// A beacon nobody takes is dropped. timer relies on the Go 1.23 Reset
// semantics: no stale tick survives a Reset.
func (s *PlaybackService) sendBeacon(ctx context.Context, timer *time.Timer) error {
	timer.Reset(s.beaconTimeout)

	select {
	case s.beacon <- s.sink.Empty():
		timer.Stop()
		return nil
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// play replaces the sink with a fresh one holding track. When the file cannot
// be decoded the new sink stays empty, so the next beacon advances the queue.
func (s *PlaybackService) play(track domain.Track) {
	s.sink.Stop()

	sink, err := s.engine.NewSink()
	if err != nil {
		s.logger.Error("failed to open audio sink", slog.Any("error", err))
		s.bus.Publish(domain.NewTrackErrorEvent(track, err))
		return
	}
	s.sink = sink

	source, err := s.engine.Decode(track.FilePath)
	if err != nil {
		s.logger.Warn("failed to decode track",
			slog.String("file_path", track.FilePath),
			slog.Any("error", err))
		s.bus.Publish(domain.NewTrackErrorEvent(track, err))
		return
	}

	if err := s.sink.Append(source); err != nil {
		_ = source.Close()
		s.logger.Warn("failed to queue track", slog.String("file_path", track.FilePath), slog.Any("error", err))
		s.bus.Publish(domain.NewTrackErrorEvent(track, err))
		return
	}
	s.sink.Play()

	s.logger.Debug("track started",
		slog.String("file_path", track.FilePath),
		slog.Duration("length", source.Duration()))
	s.bus.Publish(domain.NewTrackStartedEvent(track))
}

func (s *PlaybackService) handle(cmd domain.PlaybackCommand) {
	s.logger.Debug("playback command", slog.String("command", cmd.String()))

	switch cmd {
	case domain.CommandTogglePause:
		if s.sink.IsPaused() {
			s.sink.Play()
			s.bus.Publish(domain.NewTrackResumedEvent())
		} else {
			s.sink.Pause()
			s.bus.Publish(domain.NewTrackPausedEvent())
		}
	case domain.CommandStop:
		s.sink.Stop()
		s.bus.Publish(domain.NewTrackStoppedEvent())
	default:
		s.logger.Warn("unknown playback command", slog.Int("command", int(cmd)))
	}
}

// Verify that PlaybackService implements the expected interface patterns
var _ interface {
	Run(context.Context) error
	SetBeaconTimeout(time.Duration)
} = (*PlaybackService)(nil)
