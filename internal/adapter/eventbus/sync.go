// Package eventbus provides implementations of the EventBus interface.
// This package contains the synchronous event bus implementation.
package eventbus

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/tejashwikalptaru/sonik/internal/domain"
	"github.com/tejashwikalptaru/sonik/internal/ports"
)

// wildcard is the key under which SubscribeAll handlers are stored.
const wildcard domain.EventType = "*"

// SyncEventBus is a synchronous implementation of the EventBus interface.
// Events are delivered on the publishing goroutine, type-specific handlers first,
// then wildcard handlers, each group in subscription order.
//
// Thread-safety: This implementation is thread-safe. The library indexer, the
// audio task and the watcher all publish from their own goroutines.
type SyncEventBus struct {
	logger *slog.Logger

	// handlers maps an event type (or wildcard) to its ordered subscriptions
	handlers map[domain.EventType][]subscription

	// owners maps a subscription ID back to the key it was stored under
	owners map[domain.SubscriptionID]domain.EventType

	mu     sync.RWMutex
	nextID uint64
	closed bool
}

type subscription struct {
	id      domain.SubscriptionID
	handler domain.EventHandler
}

// NewSyncEventBus creates a new synchronous event bus.
func NewSyncEventBus() *SyncEventBus {
	return &SyncEventBus{
		handlers: make(map[domain.EventType][]subscription),
		owners:   make(map[domain.SubscriptionID]domain.EventType),
	}
}

// SetLogger sets the logger for this event bus.
// This should be called after construction before using the event bus.
func (bus *SyncEventBus) SetLogger(logger *slog.Logger) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.logger = logger
}

// Publish delivers an event to its subscribers.
// If the event bus is closed, this method does nothing.
//
// Panics in handlers are recovered and logged, but do not stop other handlers
// from being called.
func (bus *SyncEventBus) Publish(event domain.Event) {
	if event == nil {
		return
	}

	bus.mu.RLock()
	if bus.closed {
		bus.mu.RUnlock()
		return
	}
	targets := slices.Concat(bus.handlers[event.Type()], bus.handlers[wildcard])
	logger := bus.logger
	bus.mu.RUnlock()

	if logger != nil && len(targets) > 0 {
		logger.Debug("event published",
			slog.String("event_type", string(event.Type())),
			slog.Int("handlers", len(targets)))
	}

	for _, sub := range targets {
		bus.deliver(logger, sub, event)
	}
}

func (bus *SyncEventBus) deliver(logger *slog.Logger, sub subscription, event domain.Event) {
	defer func() {
		if r := recover(); r != nil && logger != nil {
			logger.Error("event handler panicked",
				slog.Any("panic", r),
				slog.String("subscription", string(sub.id)),
				slog.String("event_type", string(event.Type())))
		}
	}()
	sub.handler(event)
}

// Subscribe registers a handler for events of the specified type.
// Returns a unique subscription ID that can be used to unsubscribe.
func (bus *SyncEventBus) Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	return bus.add(eventType, "sub", handler)
}

// SubscribeAll registers a handler that receives all events regardless of type.
func (bus *SyncEventBus) SubscribeAll(handler domain.EventHandler) domain.SubscriptionID {
	return bus.add(wildcard, "sub-all", handler)
}

func (bus *SyncEventBus) add(key domain.EventType, prefix string, handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		panic("cannot subscribe to closed event bus")
	}

	bus.nextID++
	id := domain.SubscriptionID(fmt.Sprintf("%s-%d", prefix, bus.nextID))
	bus.handlers[key] = append(bus.handlers[key], subscription{id: id, handler: handler})
	bus.owners[id] = key
	return id
}

// Unsubscribe removes a previously registered event handler.
// If the subscription ID is invalid or already unsubscribed, this is a no-op.
func (bus *SyncEventBus) Unsubscribe(id domain.SubscriptionID) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	key, ok := bus.owners[id]
	if !ok {
		return
	}
	delete(bus.owners, id)

	// preserve delivery order for the remaining handlers
	bus.handlers[key] = slices.DeleteFunc(bus.handlers[key], func(s subscription) bool {
		return s.id == id
	})
	if len(bus.handlers[key]) == 0 {
		delete(bus.handlers, key)
	}
}

// Forward subscribes a handler that copies events of eventType onto ch
// without blocking. Events are dropped while ch is full, so a channel with
// capacity 1 acts as a "something happened" flag for a polling consumer.
func (bus *SyncEventBus) Forward(eventType domain.EventType, ch chan<- domain.Event) domain.SubscriptionID {
	return bus.Subscribe(eventType, func(event domain.Event) {
		select {
		case ch <- event:
		default:
		}
	})
}

// HasSubscribers returns true if there are any active subscriptions for the given event type.
func (bus *SyncEventBus) HasSubscribers(eventType domain.EventType) bool {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.handlers[eventType]) > 0 || len(bus.handlers[wildcard]) > 0
}

// Close shuts down the event bus and clears all subscriptions.
//
// Returns an error if already closed.
func (bus *SyncEventBus) Close() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return fmt.Errorf("event bus already closed")
	}

	bus.closed = true
	bus.handlers = make(map[domain.EventType][]subscription)
	bus.owners = make(map[domain.SubscriptionID]domain.EventType)
	return nil
}

// SubscriberCount returns the number of active subscriptions, wildcard ones included.
func (bus *SyncEventBus) SubscriberCount() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.owners)
}

// Verify that SyncEventBus implements the EventBus interface
var _ ports.EventBus = (*SyncEventBus)(nil)
