package tui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/tejashwikalptaru/sonik/internal/domain"
	"github.com/tejashwikalptaru/sonik/internal/service"
)

// Loop timing defaults.
const (
	// DefaultTick is the longest the loop waits for a key before redrawing.
	DefaultTick = 100 * time.Millisecond

	// DefaultBeaconWait is the longest the loop waits for the audio beacon.
	DefaultBeaconWait = 250 * time.Millisecond

	// noticeTTL is how long a playback error stays in the status box.
	noticeTTL = 5 * time.Second
)

// StaleNotice is shown in the status box once the music folder changed.
const StaleNotice = "library changed, restart with -r to reindex"

// Presenter runs the UI task: it draws a frame, waits briefly for a key,
// then waits briefly for the audio beacon, which drives auto-advance.
//
// Notices arrive from other goroutines (the watcher, the audio task) through
// a channel and are drained at the top of every frame, so UI state is only
// ever touched by Run.
type Presenter struct {
	logger   *slog.Logger
	screen   tcell.Screen
	renderer *Renderer

	state    *service.UIState
	channels *service.Channels
	notices  <-chan domain.Event

	tick       time.Duration
	beaconWait time.Duration

	notice      string
	noticeUntil time.Time
}

// NewPresenter creates a presenter drawing on an initialised screen.
// notices may be nil.
func NewPresenter(
	logger *slog.Logger,
	screen tcell.Screen,
	state *service.UIState,
	channels *service.Channels,
	notices <-chan domain.Event,
) *Presenter {
	return &Presenter{
		logger:     logger,
		screen:     screen,
		renderer:   NewRenderer(screen),
		state:      state,
		channels:   channels,
		notices:    notices,
		tick:       DefaultTick,
		beaconWait: DefaultBeaconWait,
	}
}

// SetTiming overrides DefaultTick and DefaultBeaconWait.
// This should be called before Run.
func (p *Presenter) SetTiming(tick, beaconWait time.Duration) {
	p.tick = tick
	p.beaconWait = beaconWait
}

// Run loops until Esc is pressed or ctx is cancelled. On exit the screen is
// cleared and finalised and the channels to the audio task are closed.
func (p *Presenter) Run(ctx context.Context) error {
	keys := make(chan *tcell.EventKey)
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		pollKeys(p.screen, keys, done)
	}()

	defer func() {
		close(done)
		p.screen.Clear()
		p.screen.Fini()
		wg.Wait()
		p.channels.Close()
		p.logger.Debug("ui task stopped")
	}()

	p.logger.Debug("ui task started")

	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	for {
		p.drainNotices()
		p.renderer.Draw(p.state, p.currentNotice())

		select {
		case <-ctx.Done():
			return nil
		case ev := <-keys:
			if dispatch(p.state, ev) {
				p.logger.Info("quit requested")
				return nil
			}
		case <-ticker.C:
		}

		p.state.AwaitBeacon(p.beaconWait)
	}
}

func (p *Presenter) drainNotices() {
	for {
		select {
		case event, ok := <-p.notices:
			if !ok {
				p.notices = nil
				return
			}
			p.onNotice(event)
		default:
			return
		}
	}
}

func (p *Presenter) onNotice(event domain.Event) {
	switch e := event.(type) {
	case domain.LibraryChangedEvent:
		p.state.MarkLibraryStale()
	case domain.TrackErrorEvent:
		p.notice = fmt.Sprintf("cannot play %s", e.Track.DisplayName())
		p.noticeUntil = p.renderer.now().Add(noticeTTL)
	}
}

// currentNotice picks the status box text: the stale library warning wins
// over a recent playback error, and an empty string shows the clock.
func (p *Presenter) currentNotice() string {
	if p.state.LibraryStale {
		return StaleNotice
	}
	if p.notice != "" && p.renderer.now().Before(p.noticeUntil) {
		return p.notice
	}
	return ""
}
