// Package ports define interfaces for dependency inversion.
// These interfaces allow the playback core to remain independent of audio backends and UI toolkits.
package ports

import (
	"context"
	"time"
)

// MediaElement is the single playable resource behind the media binding.
// It abstracts the underlying audio library (ebiten/oto, or an in-memory mock)
// the same way an <audio> element abstracts the browser's decoder.
//
// Implementations must be thread-safe as they are commanded from the store's
// goroutine and report events from their own goroutines.
type MediaElement interface {
	// SetSource replaces the current resource with the given locator and
	// resets the transport position to 0. Loading continues in the background;
	// SetSource must not block on network or decoding.
	//
	// Any Play still waiting for the previous source returns ErrSourceReplaced.
	SetSource(url string) error

	// Play starts or resumes playback. It blocks until audio is actually
	// being produced or the attempt failed (not ready, decode error,
	// device error). A Play issued before data is ready waits for it.
	//
	// Returns an error if playback could not be started or ctx was canceled.
	Play(ctx context.Context) error

	// Pause pauses playback, preserving the position.
	// Pausing an element that is not playing is a no-op.
	Pause() error

	// Seek sets the playback position. Callers clamp to [0, Duration].
	Seek(position time.Duration) error

	// Position returns the current playback position.
	Position() time.Duration

	// Duration returns the length of the current resource, or 0 while unknown.
	Duration() time.Duration

	// SetVolume sets the output level from 0.0 (silent) to 1.0 (full volume).
	SetVolume(volume float64) error

	// SetListener registers the callback receiving element events.
	// Passing nil removes it.
	SetListener(listener MediaListener)

	// Close releases the element. It must not be used afterwards.
	Close() error
}

// MediaEventKind identifies the native notifications of a media element.
type MediaEventKind int

const (
	// MediaTimeUpdate fires periodically while playing
	MediaTimeUpdate MediaEventKind = iota

	// MediaMetadataLoaded fires once the duration of a source is known
	MediaMetadataLoaded

	// MediaEnded fires when playback reaches the end of the source
	MediaEnded

	// MediaError fires when loading or decoding the source fails
	MediaError
)

// String returns a human-readable representation of the event kind.
func (k MediaEventKind) String() string {
	switch k {
	case MediaTimeUpdate:
		return "timeupdate"
	case MediaMetadataLoaded:
		return "loadedmetadata"
	case MediaEnded:
		return "ended"
	case MediaError:
		return "error"
	default:
		return "unknown"
	}
}

// MediaEvent is a notification raised by a media element.
type MediaEvent struct {
	Kind MediaEventKind

	// Source is the locator the event refers to, used to drop late events
	// from a replaced source.
	Source string

	Position time.Duration
	Duration time.Duration

	// Err is set for MediaError events
	Err error
}

// MediaListener receives media element events.
// Listeners are called from the element's goroutines and must not block.
type MediaListener func(event MediaEvent)

// MediaElementFactory creates a media element.
// This allows for dependency injection of different backends.
type MediaElementFactory func(config MediaElementConfig) (MediaElement, error)

// MediaElementConfig contains configuration for creating a media element.
type MediaElementConfig struct {
	// SampleRate is the output sample rate in Hz
	SampleRate int

	// UpdateInterval is how often time updates are emitted while playing
	UpdateInterval time.Duration

	// HTTPTimeout bounds fetching remote sources
	HTTPTimeout time.Duration
}
