// Package domain contains core playback models and logic with no external dependencies.
// This package defines the fundamental entities of the xamp player.
package domain

import (
	"math"
	"strings"
)

// Track represents a single playable audio item with its display metadata.
// Tracks are value objects: once built they are never mutated.
type Track struct {
	// ID uniquely identifies the playable item. It is the only field used
	// to decide whether a track is the one currently loaded.
	ID string

	// Title is the song title
	Title string

	// Artist is the display name of the performing artist
	Artist string

	// Cover is an image reference (URL or path) for the artwork
	Cover string

	// AudioURL is the resolvable media locator handed to the media element
	AudioURL string
}

// Validate checks that the track carries an identity and a media locator.
// The playback store does not call this; sources of tracks (content client,
// CLI) do before handing tracks out.
func (t Track) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return NewValidationError("id", t.ID, "must not be empty")
	}
	if strings.TrimSpace(t.AudioURL) == "" {
		return NewValidationError("audio_url", t.AudioURL, "must not be empty")
	}
	return nil
}

// DisplayName returns "Artist - Title", or whichever half is available.
func (t Track) DisplayName() string {
	switch {
	case t.Artist != "" && t.Title != "":
		return t.Artist + " - " + t.Title
	case t.Title != "":
		return t.Title
	default:
		return t.Artist
	}
}

// PlaybackPhase is the position of the current track in its lifecycle.
type PlaybackPhase int

const (
	// PhaseEmpty means no track has been loaded
	PhaseEmpty PlaybackPhase = iota

	// PhaseLoading means playback was requested and awaits confirmation
	PhaseLoading

	// PhasePlaying means the media element confirmed playback
	PhasePlaying

	// PhasePaused means the track is loaded but not producing audio
	PhasePaused

	// PhaseEnded means the track played to its end
	PhaseEnded
)

// String returns a human-readable representation of the phase.
func (p PlaybackPhase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseLoading:
		return "loading"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// PlaybackState is a snapshot of the single shared playback record.
// Snapshots are produced by the playback store; observers only read them.
type PlaybackState struct {
	// CurrentTrack is the loaded track (nil if none)
	CurrentTrack *Track

	// IsPlaying is true iff the media element is producing audio
	IsPlaying bool

	// IsOpen reports whether the full player surface is visible
	IsOpen bool

	// CurrentTime is the transport position in seconds
	CurrentTime float64

	// Duration is the track length in seconds (0 while unknown)
	Duration float64

	// Progress is CurrentTime/Duration as a percentage in [0, 100]
	Progress float64

	// Volume is the stored volume level (0.0 to 1.0)
	Volume float64

	// IsMuted indicates if audio is muted; Volume is preserved while muted
	IsMuted bool

	// Phase is the lifecycle position of the current track
	Phase PlaybackPhase

	// Version increases with every mutation of the store
	Version uint64
}

// NewPlaybackState returns the state the store starts with.
func NewPlaybackState() PlaybackState {
	return PlaybackState{
		Volume: 1,
		Phase:  PhaseEmpty,
	}
}

// HasTrack returns true if a track is loaded.
func (s PlaybackState) HasTrack() bool {
	return s.CurrentTrack != nil
}

// IsCurrent returns true if the track with the given ID is the loaded one.
func (s PlaybackState) IsCurrent(id string) bool {
	return s.CurrentTrack != nil && s.CurrentTrack.ID == id
}

// ShortcutVisible reports whether the minimized floating control should be
// shown: the full surface is hidden but a track is loaded.
func (s PlaybackState) ShortcutVisible() bool {
	return !s.IsOpen && s.CurrentTrack != nil
}

// EffectiveVolume is the level actually applied to the media element.
func (s PlaybackState) EffectiveVolume() float64 {
	if s.IsMuted {
		return 0
	}
	return s.Volume
}

// Progress derives the 0-100 progress percentage from a position and a
// duration. Unknown, zero or invalid durations yield 0.
func Progress(currentTime, duration float64) float64 {
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) || math.IsNaN(currentTime) {
		return 0
	}
	p := currentTime / duration * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// ClampTime restricts a requested position to [0, duration].
// NaN maps to the lower bound.
func ClampTime(t, duration float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if duration <= 0 || math.IsNaN(duration) {
		return 0
	}
	if t > duration {
		return duration
	}
	return t
}

// ClampVolume restricts a volume level to [0, 1].
// NaN maps to the lower bound.
func ClampVolume(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
