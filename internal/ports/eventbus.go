// Package ports defines the interfaces the services depend on.
package ports

import (
	"github.com/tejashwikalptaru/sonik/internal/domain"
)

// EventBus carries notifications between components that run on different
// goroutines: indexing progress from the library service, playback results
// from the audio task and change notices from the watcher.
//
// Thread-safety: Implementations must be thread-safe as events are published
// from the indexer's workers, the audio task and the watcher concurrently.
//
// Example usage:
//
//	// Print indexing progress while building
//	subID := bus.Subscribe(domain.EventScanProgress, func(event domain.Event) {
//	    p := event.(domain.ScanProgressEvent).Progress
//	    fmt.Printf("%d / %d\n", p.FilesScanned, p.TotalFiles)
//	})
//	defer bus.Unsubscribe(subID)
//
//	// Hand notices to the UI task, which drains the channel itself
//	notices := make(chan domain.Event, 1)
//	bus.Forward(domain.EventLibraryChanged, notices)
type EventBus interface {
	// Publish delivers event to every subscriber of its type, then to the
	// wildcard subscribers. Handlers run on the publishing goroutine, so they
	// must return quickly.
	Publish(event domain.Event)

	// Subscribe registers a handler for events of the specified type.
	// Returns a SubscriptionID that can be used to unsubscribe later.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a previously registered event handler.
	// If the subscription ID is invalid or already unsubscribed, this is a no-op.
	Unsubscribe(id domain.SubscriptionID)

	// SubscribeAll registers a handler that receives all events regardless of type.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// Forward copies events of eventType onto ch without blocking; events
	// published while ch is full are dropped. This lets a goroutine that must
	// not run handlers (the UI task) poll for notices instead.
	Forward(eventType domain.EventType, ch chan<- domain.Event) domain.SubscriptionID

	// HasSubscribers returns true if there are any active subscriptions for the given event type.
	HasSubscribers(eventType domain.EventType) bool

	// Close shuts down the event bus and cleans up resources.
	// After calling Close, published events are discarded.
	Close() error
}
