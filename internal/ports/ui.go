// Package ports define the view interfaces of the playback surfaces.
// These interfaces allow presenters to update widgets without depending on Fyne directly.
package ports

import (
	"github.com/xampmusic/xamp-player/internal/domain"
)

// PlayerSurfaceView is the persistent bottom player bar.
//
// Thread-safety: Methods are called from the presenter, which dispatches to
// the UI thread before calling them.
type PlayerSurfaceView interface {
	// SetVisible shows or hides the whole bar.
	SetVisible(visible bool)

	// SetTrackInfo updates title, artist and cover.
	SetTrackInfo(track domain.Track)

	// ClearTrackInfo resets the track display to its empty state.
	ClearTrackInfo()

	// SetPlayState switches the play/pause button.
	SetPlayState(playing bool)

	// SetTimes updates the position/duration labels (seconds).
	SetTimes(current, duration float64)

	// SetProgress moves the seek slider (0-100).
	SetProgress(progress float64)

	// SetVolume moves the volume slider (0.0-1.0, already zero when muted).
	SetVolume(volume float64)

	// SetMuteState switches the mute button.
	SetMuteState(muted bool)
}

// ShortcutView is the minimized floating control.
type ShortcutView interface {
	// SetVisible shows or hides the shortcut.
	SetVisible(visible bool)

	// SetPlayState switches the play/pause button.
	SetPlayState(playing bool)
}

// TrackListView renders one track list (song grid, artist top tracks, in-post tracklist).
type TrackListView interface {
	// SetTracks replaces the rendered rows.
	SetTracks(tracks []domain.Track)

	// SetActive highlights the row of the current track (-1 for none)
	// and marks whether it is playing.
	SetActive(index int, playing bool)
}
