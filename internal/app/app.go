// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/tejashwikalptaru/sonik/internal/adapter/audio/beep"
	"github.com/tejashwikalptaru/sonik/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/sonik/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/sonik/internal/adapter/repository/file"
	"github.com/tejashwikalptaru/sonik/internal/adapter/ui/tui"
	"github.com/tejashwikalptaru/sonik/internal/adapter/watcher"
	"github.com/tejashwikalptaru/sonik/internal/config"
	"github.com/tejashwikalptaru/sonik/internal/domain"
	"github.com/tejashwikalptaru/sonik/internal/logger"
	"github.com/tejashwikalptaru/sonik/internal/ports"
	"github.com/tejashwikalptaru/sonik/internal/service"
)

// engine is what the application needs from an audio backend: playback for
// the audio task and tag reading for the indexer.
type engine interface {
	ports.AudioEngine
	ports.MetadataReader
}

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for the command
type Application struct {
	// Core dependencies
	logger  *slog.Logger
	logFile io.Closer
	cfg     config.Config
	out     io.Writer
	outMu   sync.Mutex

	// Infrastructure
	eventBus    *eventbus.SyncEventBus
	audioEngine engine
	screen      tcell.Screen

	// Repositories
	libraryRepo ports.LibraryRepository

	// Services
	libraryService  *service.LibraryService
	searchService   *service.SearchService
	playbackService *service.PlaybackService
	uiState         *service.UIState
	channels        *service.Channels

	// UI
	presenter *tui.Presenter
	notices   chan domain.Event

	library domain.Library
	stats   domain.Stats

	watch bool
	ran   bool

	shutdownOnce sync.Once
	shutdownErr  error
}

// Config holds application configuration.
type Config struct {
	// ConfigDir holds config.toml; defaults to ~/.sonik
	ConfigDir string

	// DatabaseCreation, when set, writes a fresh config.toml with this music
	// folder and builds the library from it
	DatabaseCreation string

	// Rebuild re-indexes the configured music folder even if a library exists
	Rebuild bool

	// SampleRate is the audio output sample rate
	SampleRate int

	// Workers bounds concurrent tag reads while indexing (0 uses GOMAXPROCS)
	Workers int

	// UseMockAudio determines whether to use a mock audio engine (for testing)
	UseMockAudio bool

	// Watch enables the music folder watcher
	Watch bool

	// LogLevel controls logging verbosity
	LogLevel slog.Level

	// LogFormat is "text" or "json"
	LogFormat string

	// Out receives startup progress lines (nil for stdout)
	Out io.Writer

	// TestScreen allows injecting a simulation screen for testing (nil for production)
	TestScreen tcell.Screen
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	loggerCfg := logger.DefaultConfig()
	return Config{
		ConfigDir:    config.Dir(),
		SampleRate:   beep.DefaultSampleRate,
		UseMockAudio: false,
		Watch:        true,
		LogLevel:     loggerCfg.Level,
		LogFormat:    loggerCfg.Format,
	}
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function. It loads or builds the
// library before the terminal is taken over, printing progress to Out.
func NewApplication(ctx context.Context, cfg Config) (*Application, error) {
	app := &Application{
		out:   cfg.Out,
		watch: cfg.Watch,
	}
	if app.out == nil {
		app.out = os.Stdout
	}

	// Step 1: Load or create configuration
	if err := app.loadConfig(cfg); err != nil {
		return nil, err
	}

	// Step 2: Create logger writing to a rotating file
	if err := os.MkdirAll(app.cfg.DataFolder, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data folder: %w", err)
	}
	logFile := logger.NewFileWriter(app.cfg.LogPath())
	app.logFile = logFile
	app.logger = logger.NewLogger(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: logFile,
	})
	app.logger.Info("initializing application",
		slog.String("version", GetVersionInfo().FullString()),
		slog.String("music_folder", app.cfg.MusicFolder))

	// Step 3: Create an event bus
	app.eventBus = eventbus.NewSyncEventBus()
	app.eventBus.SetLogger(app.logger.With(slog.String("component", "eventbus")))
	for _, eventType := range []domain.EventType{
		domain.EventTrackStarted,
		domain.EventTrackPaused,
		domain.EventTrackResumed,
		domain.EventTrackStopped,
		domain.EventTrackError,
	} {
		app.eventBus.Subscribe(eventType, app.logPlayback)
	}

	// Step 4: Create an audio engine
	if err := app.createEngine(cfg); err != nil {
		app.release()
		return nil, err
	}

	// Step 5: Create repositories
	app.libraryRepo = file.NewLibraryRepository(
		app.cfg.DatabasePath,
		app.cfg.StatsPath,
		app.logger.With(slog.String("repository", "library")),
	)

	// Step 6: Load or build the library
	app.libraryService = service.NewLibraryService(
		app.logger.With(slog.String("service", "library")),
		app.audioEngine,
		app.libraryRepo,
		app.eventBus,
	)
	if cfg.Workers > 0 {
		app.libraryService.SetWorkers(cfg.Workers)
	}
	if err := app.loadLibrary(ctx, cfg); err != nil {
		app.release()
		return nil, err
	}

	// Step 7: Create search indexes
	app.searchService = service.NewSearchService(
		app.logger.With(slog.String("service", "search")),
		app.library,
	)

	// Step 8: Create the channels between the UI and audio tasks
	app.channels = service.NewChannels()

	// Step 9: Create the audio task
	app.playbackService = service.NewPlaybackService(
		app.logger.With(slog.String("service", "playback")),
		app.audioEngine,
		app.eventBus,
		app.channels.Tracks,
		app.channels.Commands,
		app.channels.Beacon,
	)

	// Step 10: Create UI state
	app.uiState = service.NewUIState(
		app.logger.With(slog.String("service", "ui_state")),
		app.library,
		app.stats,
		app.searchService,
		app.channels.Tracks,
		app.channels.Commands,
		app.channels.Beacon,
	)

	// Step 11: Forward notices for the UI task
	app.notices = make(chan domain.Event, 1)
	app.eventBus.Forward(domain.EventLibraryChanged, app.notices)
	app.eventBus.Forward(domain.EventTrackError, app.notices)

	// Step 12: Take over the terminal
	screen := cfg.TestScreen
	if screen == nil {
		var err error
		if screen, err = tcell.NewScreen(); err != nil {
			app.release()
			return nil, fmt.Errorf("failed to create screen: %w", err)
		}
	}
	if err := screen.Init(); err != nil {
		app.release()
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}
	app.screen = screen

	// Step 13: Create Presenter and wire with UI
	app.presenter = tui.NewPresenter(
		app.logger.With(slog.String("component", "presenter")),
		app.screen,
		app.uiState,
		app.channels,
		app.notices,
	)

	return app, nil
}

func (a *Application) loadConfig(cfg Config) error {
	dir := cfg.ConfigDir
	if dir == "" {
		dir = config.Dir()
	}

	color.New(color.FgCyan).Fprintln(a.out, "Loading configuration...")

	var err error
	if cfg.DatabaseCreation != "" {
		a.cfg, err = config.Create(dir, cfg.DatabaseCreation)
	} else {
		a.cfg, err = config.Load(dir)
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return nil
}

func (a *Application) createEngine(cfg Config) error {
	if cfg.UseMockAudio {
		engine := mock.NewEngine()
		engine.SetLogger(a.logger.With(slog.String("engine", "mock")))
		if err := engine.Initialize(cfg.SampleRate); err != nil {
			return fmt.Errorf("failed to initialize audio engine: %w", err)
		}
		a.audioEngine = engine
		return nil
	}

	engine := beep.NewEngine()
	engine.SetLogger(a.logger.With(slog.String("engine", "beep")))
	if err := engine.Initialize(cfg.SampleRate); err != nil {
		return fmt.Errorf("failed to initialize audio engine: %w", err)
	}
	a.audioEngine = engine
	return nil
}

// loadLibrary builds the library when asked to or when none is persisted,
// otherwise loads it. The summary line is printed from the bus.
func (a *Application) loadLibrary(ctx context.Context, cfg Config) error {
	summary := []domain.SubscriptionID{
		a.eventBus.Subscribe(domain.EventScanStarted, a.printSummary),
		a.eventBus.Subscribe(domain.EventLibrarySaved, a.printSummary),
		a.eventBus.Subscribe(domain.EventScanCompleted, a.printSummary),
		a.eventBus.Subscribe(domain.EventLibraryLoaded, a.printSummary),
	}
	defer func() {
		for _, id := range summary {
			a.eventBus.Unsubscribe(id)
		}
	}()

	build := cfg.DatabaseCreation != "" || cfg.Rebuild || !a.libraryService.Exists()
	if !build {
		color.New(color.FgCyan).Fprintln(a.out, "Loading database...")
		library, stats, err := a.libraryService.Load()
		if err != nil {
			return fmt.Errorf("failed to load library: %w", err)
		}
		a.library, a.stats = library, stats
		return nil
	}

	color.New(color.FgCyan).Fprintln(a.out, "Creating database...")
	progress := a.eventBus.Subscribe(domain.EventScanProgress, a.printProgress)
	defer a.eventBus.Unsubscribe(progress)

	library, stats, err := a.libraryService.Rebuild(ctx, a.cfg.MusicFolder)
	if err != nil {
		return fmt.Errorf("failed to build library: %w", err)
	}
	a.library, a.stats = library, stats
	return nil
}

// printSummary prints the scan and load lines of the startup output.
func (a *Application) printSummary(event domain.Event) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	switch e := event.(type) {
	case domain.ScanStartedEvent:
		color.New(color.Faint).Fprintf(a.out, "  scanning %s\n", e.Path)
	case domain.LibrarySavedEvent:
		a.logger.Info("library saved", slog.String("path", a.cfg.DatabasePath), slog.Int("tracks", e.Stats.Tracks))
	case domain.ScanCompletedEvent:
		color.New(color.FgGreen).Fprintf(a.out, "Indexed %s files in %s\n",
			humanize.Comma(int64(e.Stats.Tracks)), e.Duration.Round(time.Millisecond))
	case domain.LibraryLoadedEvent:
		color.New(color.FgGreen).Fprintf(a.out, "Loaded %s tracks by %s artists\n",
			humanize.Comma(int64(e.Stats.Tracks)), humanize.Comma(int64(e.Stats.Artists)))
	}
}

// logPlayback records what the audio task did. It runs on the audio task's
// goroutine.
func (a *Application) logPlayback(event domain.Event) {
	switch e := event.(type) {
	case domain.TrackStartedEvent:
		a.logger.Info("track started", slog.String("path", e.Track.FilePath))
	case domain.TrackErrorEvent:
		a.logger.Warn("track failed", slog.String("path", e.Track.FilePath), slog.Any("error", e.Error))
	default:
		a.logger.Debug("playback", slog.String("event", string(event.Type())))
	}
}

// printProgress reports indexing progress every 100 files.
// Progress events arrive from the indexer's worker goroutines.
func (a *Application) printProgress(event domain.Event) {
	e, ok := event.(domain.ScanProgressEvent)
	if !ok {
		return
	}
	p := e.Progress
	if p.FilesScanned%100 != 0 && p.FilesScanned != p.TotalFiles {
		return
	}
	a.outMu.Lock()
	defer a.outMu.Unlock()
	color.New(color.Faint).Fprintf(a.out, "  %s / %s\n",
		humanize.Comma(int64(p.FilesScanned)), humanize.Comma(int64(p.TotalFiles)))
}

// Run starts the UI, audio and watcher tasks and blocks until the UI exits.
// Leaving the UI closes the channels, which ends the audio task; the watcher
// is stopped by cancelling its context.
func (a *Application) Run(ctx context.Context) error {
	a.ran = true
	a.logger.Info("sonik started",
		slog.Int("artists", a.stats.Artists),
		slog.Int("tracks", a.stats.Tracks))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.playbackService.Run(gctx)
	})

	if a.watch {
		w, err := watcher.New(a.logger.With(slog.String("component", "watcher")), a.eventBus, a.cfg.MusicFolder)
		if err != nil {
			// the player works without change notices
			a.logger.Warn("failed to watch music folder", slog.Any("error", err))
		} else {
			g.Go(func() error {
				return w.Run(gctx)
			})
		}
	}

	g.Go(func() error {
		defer cancel()
		return a.presenter.Run(gctx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	a.logger.Info("sonik stopped")
	return err
}

// Shutdown gracefully shuts down the application.
// This should be called via deferring after NewApplication succeeds.
// Calling it more than once is safe.
func (a *Application) Shutdown() error {
	a.shutdownOnce.Do(func() {
		a.logger.Info("shutting down application")

		// the presenter finalises the screen when it runs
		if !a.ran && a.screen != nil {
			a.screen.Fini()
		}
		a.release()
	})
	return a.shutdownErr
}

// release shuts down what NewApplication created, in reverse order.
func (a *Application) release() {
	if a.eventBus != nil {
		if err := a.eventBus.Close(); err != nil {
			a.logger.Warn("failed to close event bus", slog.Any("error", err))
		}
	}

	if a.audioEngine != nil {
		if err := a.audioEngine.Shutdown(); err != nil {
			a.logger.Warn("failed to shutdown audio engine", slog.Any("error", err))
			a.shutdownErr = err
		}
	}

	a.logger.Info("application shutdown complete")
	a.closeLog()
}

func (a *Application) closeLog() {
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

// Library returns the loaded library and its statistics.
func (a *Application) Library() (domain.Library, domain.Stats) {
	return a.library, a.stats
}

// Settings returns the configuration in use.
func (a *Application) Settings() config.Config {
	return a.cfg
}

// GetEventBus returns the event bus.
func (a *Application) GetEventBus() ports.EventBus {
	return a.eventBus
}
