// Package domain defines events for the event-driven architecture.
// Events let background work report progress without knowing who is listening.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Playback events
	EventTrackStarted EventType = "track.started"
	EventTrackPaused  EventType = "track.paused"
	EventTrackResumed EventType = "track.resumed"
	EventTrackStopped EventType = "track.stopped"
	EventTrackError   EventType = "track.error"

	// Library indexing events
	EventScanStarted   EventType = "scan.started"
	EventScanProgress  EventType = "scan.progress"
	EventScanCompleted EventType = "scan.completed"
	EventScanCancelled EventType = "scan.cancelled"

	// Library persistence and watch events
	EventLibrarySaved   EventType = "library.saved"
	EventLibraryLoaded  EventType = "library.loaded"
	EventLibraryChanged EventType = "library.changed"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// TrackStartedEvent is published when the audio task starts a new track.
type TrackStartedEvent struct {
	baseEvent
	Track Track
}

// Type returns the event type.
func (e TrackStartedEvent) Type() EventType {
	return EventTrackStarted
}

// NewTrackStartedEvent creates a new TrackStartedEvent.
func NewTrackStartedEvent(track Track) TrackStartedEvent {
	return TrackStartedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
	}
}

// TrackPausedEvent is published when playback is paused.
type TrackPausedEvent struct {
	baseEvent
}

// Type returns the event type.
func (e TrackPausedEvent) Type() EventType {
	return EventTrackPaused
}

// NewTrackPausedEvent creates a new TrackPausedEvent.
func NewTrackPausedEvent() TrackPausedEvent {
	return TrackPausedEvent{baseEvent: newBaseEvent()}
}

// TrackResumedEvent is published when paused playback resumes.
type TrackResumedEvent struct {
	baseEvent
}

// Type returns the event type.
func (e TrackResumedEvent) Type() EventType {
	return EventTrackResumed
}

// NewTrackResumedEvent creates a new TrackResumedEvent.
func NewTrackResumedEvent() TrackResumedEvent {
	return TrackResumedEvent{baseEvent: newBaseEvent()}
}

// TrackStoppedEvent is published when playback is stopped by command.
type TrackStoppedEvent struct {
	baseEvent
}

// Type returns the event type.
func (e TrackStoppedEvent) Type() EventType {
	return EventTrackStopped
}

// NewTrackStoppedEvent creates a new TrackStoppedEvent.
func NewTrackStoppedEvent() TrackStoppedEvent {
	return TrackStoppedEvent{baseEvent: newBaseEvent()}
}

// TrackErrorEvent is published when a track cannot be decoded.
type TrackErrorEvent struct {
	baseEvent
	Track Track
	Error error
}

// Type returns the event type.
func (e TrackErrorEvent) Type() EventType {
	return EventTrackError
}

// NewTrackErrorEvent creates a new TrackErrorEvent.
func NewTrackErrorEvent(track Track, err error) TrackErrorEvent {
	return TrackErrorEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Error:     err,
	}
}

// ScanStartedEvent is published when a library build starts.
type ScanStartedEvent struct {
	baseEvent
	Path string
}

// Type returns the event type.
func (e ScanStartedEvent) Type() EventType {
	return EventScanStarted
}

// NewScanStartedEvent creates a new ScanStartedEvent.
func NewScanStartedEvent(path string) ScanStartedEvent {
	return ScanStartedEvent{
		baseEvent: newBaseEvent(),
		Path:      path,
	}
}

// ScanProgressEvent is published for every file read during a build.
type ScanProgressEvent struct {
	baseEvent
	Progress ScanProgress
}

// Type returns the event type.
func (e ScanProgressEvent) Type() EventType {
	return EventScanProgress
}

// NewScanProgressEvent creates a new ScanProgressEvent.
func NewScanProgressEvent(progress ScanProgress) ScanProgressEvent {
	return ScanProgressEvent{
		baseEvent: newBaseEvent(),
		Progress:  progress,
	}
}

// ScanCompletedEvent is published when a library build completes.
type ScanCompletedEvent struct {
	baseEvent
	Stats    Stats
	Duration time.Duration
}

// Type returns the event type.
func (e ScanCompletedEvent) Type() EventType {
	return EventScanCompleted
}

// NewScanCompletedEvent creates a new ScanCompletedEvent.
func NewScanCompletedEvent(stats Stats, took time.Duration) ScanCompletedEvent {
	return ScanCompletedEvent{
		baseEvent: newBaseEvent(),
		Stats:     stats,
		Duration:  took,
	}
}

// ScanCancelledEvent is published when a library build is canceled.
type ScanCancelledEvent struct {
	baseEvent
	Reason string
}

// Type returns the event type.
func (e ScanCancelledEvent) Type() EventType {
	return EventScanCancelled
}

// NewScanCancelledEvent creates a new ScanCancelledEvent.
func NewScanCancelledEvent(reason string) ScanCancelledEvent {
	return ScanCancelledEvent{
		baseEvent: newBaseEvent(),
		Reason:    reason,
	}
}

// LibrarySavedEvent is published after the library is persisted.
type LibrarySavedEvent struct {
	baseEvent
	Stats Stats
}

// Type returns the event type.
func (e LibrarySavedEvent) Type() EventType {
	return EventLibrarySaved
}

// NewLibrarySavedEvent creates a new LibrarySavedEvent.
func NewLibrarySavedEvent(stats Stats) LibrarySavedEvent {
	return LibrarySavedEvent{
		baseEvent: newBaseEvent(),
		Stats:     stats,
	}
}

// LibraryLoadedEvent is published after the library is read from disk.
type LibraryLoadedEvent struct {
	baseEvent
	Stats Stats
}

// Type returns the event type.
func (e LibraryLoadedEvent) Type() EventType {
	return EventLibraryLoaded
}

// NewLibraryLoadedEvent creates a new LibraryLoadedEvent.
func NewLibraryLoadedEvent(stats Stats) LibraryLoadedEvent {
	return LibraryLoadedEvent{
		baseEvent: newBaseEvent(),
		Stats:     stats,
	}
}

// LibraryChangedEvent is published when a music file appears, disappears or changes
// after the library was built.
type LibraryChangedEvent struct {
	baseEvent
	Path string
	Op   string
}

// Type returns the event type.
func (e LibraryChangedEvent) Type() EventType {
	return EventLibraryChanged
}

// NewLibraryChangedEvent creates a new LibraryChangedEvent.
func NewLibraryChangedEvent(path, op string) LibraryChangedEvent {
	return LibraryChangedEvent{
		baseEvent: newBaseEvent(),
		Path:      path,
		Op:        op,
	}
}
