// Package ports define the EventBus interface for event-driven communication.
// The event bus decouples the playback store from the surfaces that observe it.
package ports

import (
	"github.com/xampmusic/xamp-player/internal/domain"
)

// EventBus is the interface for publishing and subscribing to events.
//
// The playback store is the only publisher of playback events; surfaces
// (player bar, floating shortcut, MPRIS) subscribe and re-render.
//
// Thread-safety: Implementations must be thread-safe as events may be published and
// subscribed from multiple goroutines simultaneously.
//
// Example usage:
//
//	// In the store: publish a snapshot after a mutation
//	bus.Publish(domain.NewStateChangedEvent(snapshot, domain.FieldPlaying))
//
//	// In a presenter: subscribe to snapshots
//	subID := bus.Subscribe(domain.EventStateChanged, func(event domain.Event) {
//	    e := event.(domain.StateChangedEvent)
//	    view.SetPlayState(e.State.IsPlaying)
//	})
//
//	// Later: Unsubscribe
//	bus.Unsubscribe(subID)
type EventBus interface {
	// Publish publishes an event to all subscribers of that event type.
	// Handlers run synchronously on the publishing goroutine, in subscription order.
	Publish(event domain.Event)

	// Subscribe registers a handler for events of the specified type.
	// Each subscription gets a unique SubscriptionID.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a previously registered event handler.
	// If the subscription ID is invalid or already unsubscribed, this is a no-op.
	Unsubscribe(id domain.SubscriptionID)

	// SubscribeAll registers a handler that receives all events regardless of type.
	// This is useful for logging and debugging.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// HasSubscribers returns true if there are any active subscriptions for the given event type.
	HasSubscribers(eventType domain.EventType) bool

	// Close shuts down the event bus and cleans up resources.
	Close() error
}

// EventFilter is a function that determines if an event should be delivered to a subscriber.
// It returns true if the event should be delivered, false otherwise.
type EventFilter func(event domain.Event) bool

// FilteringEventBus extends EventBus with filtered subscriptions.
type FilteringEventBus interface {
	EventBus

	// SubscribeFiltered registers a handler with a filter function.
	// The handler will only be called for events that pass the filter.
	//
	// Example: only re-render the volume slider on volume changes
	//	bus.SubscribeFiltered(domain.EventStateChanged, func(e domain.Event) bool {
	//	    return e.(domain.StateChangedEvent).Changed.Has(domain.FieldVolume)
	//	}, renderVolume)
	SubscribeFiltered(eventType domain.EventType, filter EventFilter, handler domain.EventHandler) domain.SubscriptionID
}

// ChangedFields returns a filter passing state snapshots that touch any of
// the given fields. Non-snapshot events are rejected.
func ChangedFields(fields domain.StateField) EventFilter {
	return func(event domain.Event) bool {
		e, ok := event.(domain.StateChangedEvent)
		if !ok {
			return false
		}
		return e.Changed.Has(fields)
	}
}
