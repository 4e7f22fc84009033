// Package domain defines events for the event-driven architecture.
// Surfaces observe the playback store through these events instead of callbacks.
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
	// EventStateChanged carries a full snapshot after every store mutation
	EventStateChanged EventType = "player.state_changed"

	// Transport events
	EventTrackLoaded     EventType = "track.loaded"
	EventPlaybackFailed  EventType = "track.playback_failed"
	EventTrackEnded      EventType = "track.ended"
	EventPlayerOpened    EventType = "player.opened"
	EventPlayerClosed    EventType = "player.closed"
	EventElementAttached EventType = "media.attached"
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

// StateField is a bit set naming the snapshot fields touched by a mutation.
// Observers use it as a selector to skip re-rendering unrelated widgets.
type StateField uint16

const (
	FieldTrack StateField = 1 << iota
	FieldPlaying
	FieldOpen
	FieldTime
	FieldDuration
	FieldVolume
	FieldMuted
	FieldPhase

	// FieldAll marks every field, used for initial syncs
	FieldAll StateField = 1<<iota - 1
)

// Has returns true if any of the given fields is set.
func (f StateField) Has(fields StateField) bool {
	return f&fields != 0
}

// StateChangedEvent is published after every mutation of the playback store.
type StateChangedEvent struct {
	baseEvent
	State   PlaybackState
	Changed StateField
}

// Type returns the event type.
func (e StateChangedEvent) Type() EventType {
	return EventStateChanged
}

// NewStateChangedEvent creates a new StateChangedEvent.
func NewStateChangedEvent(state PlaybackState, changed StateField) StateChangedEvent {
	return StateChangedEvent{
		baseEvent: newBaseEvent(),
		State:     state,
		Changed:   changed,
	}
}

// TrackLoadedEvent is published when a new track replaces the current one.
type TrackLoadedEvent struct {
	baseEvent
	Track    Track
	Previous *Track
}

// Type returns the event type.
func (e TrackLoadedEvent) Type() EventType {
	return EventTrackLoaded
}

// NewTrackLoadedEvent creates a new TrackLoadedEvent.
func NewTrackLoadedEvent(track Track, previous *Track) TrackLoadedEvent {
	return TrackLoadedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Previous:  previous,
	}
}

// PlaybackFailedEvent is published when the media element rejects playback
// or reports a native failure for the current track.
type PlaybackFailedEvent struct {
	baseEvent
	Track Track
	Error error
}

// Type returns the event type.
func (e PlaybackFailedEvent) Type() EventType {
	return EventPlaybackFailed
}

// NewPlaybackFailedEvent creates a new PlaybackFailedEvent.
func NewPlaybackFailedEvent(track Track, err error) PlaybackFailedEvent {
	return PlaybackFailedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Error:     err,
	}
}

// TrackEndedEvent is published when the current track plays to its end.
type TrackEndedEvent struct {
	baseEvent
	Track Track
}

// Type returns the event type.
func (e TrackEndedEvent) Type() EventType {
	return EventTrackEnded
}

// NewTrackEndedEvent creates a new TrackEndedEvent.
func NewTrackEndedEvent(track Track) TrackEndedEvent {
	return TrackEndedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
	}
}

// VisibilityEvent is published when the player surface opens or closes.
type VisibilityEvent struct {
	baseEvent
	Open bool
}

// Type returns the event type.
func (e VisibilityEvent) Type() EventType {
	if e.Open {
		return EventPlayerOpened
	}
	return EventPlayerClosed
}

// NewVisibilityEvent creates a new VisibilityEvent.
func NewVisibilityEvent(open bool) VisibilityEvent {
	return VisibilityEvent{
		baseEvent: newBaseEvent(),
		Open:      open,
	}
}

// ElementAttachedEvent is published when a media element is bound to the store.
type ElementAttachedEvent struct {
	baseEvent
	Kind string
}

// Type returns the event type.
func (e ElementAttachedEvent) Type() EventType {
	return EventElementAttached
}

// NewElementAttachedEvent creates a new ElementAttachedEvent.
func NewElementAttachedEvent(kind string) ElementAttachedEvent {
	return ElementAttachedEvent{
		baseEvent: newBaseEvent(),
		Kind:      kind,
	}
}
