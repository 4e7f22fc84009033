package service

import (
	"log/slog"
	"sync"

	"github.com/xampmusic/xamp-player/internal/domain"
	"github.com/xampmusic/xamp-player/internal/ports"
)

// TrackPlayer is the part of the playback store a track list drives.
type TrackPlayer interface {
	PlayTrack(track domain.Track)
	State() domain.PlaybackState
}

// TrackList is a named, ordered set of playable tracks: a song grid, an
// artist's top tracks or a blog post's tracklist. Rows only call store
// actions; they never touch the media binding.
//
// All operations are thread-safe via sync.RWMutex.
type TrackList struct {
	// Dependencies (injected)
	logger *slog.Logger
	player TrackPlayer
	bus    ports.EventBus

	// State
	name   string
	tracks []domain.Track

	// Concurrency control
	mu sync.RWMutex

	// Event subscription
	autoAdvanceSub domain.SubscriptionID
	active         *ActiveList
}

// ActiveList remembers which track list started the current track.
// Lists that share one ActiveList advance only when they own the ended track.
type ActiveList struct {
	mu      sync.Mutex
	list    *TrackList
	trackID string
}

// NewActiveList creates an empty holder.
func NewActiveList() *ActiveList {
	return &ActiveList{}
}

func (a *ActiveList) mark(list *TrackList, trackID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.list = list
	a.trackID = trackID
}

func (a *ActiveList) owns(list *TrackList, trackID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.list == list && a.trackID == trackID
}

// NewTrackList creates a track list.
func NewTrackList(logger *slog.Logger, player TrackPlayer, name string, tracks []domain.Track) *TrackList {
	list := &TrackList{
		logger: logger.With(slog.String("list", name)),
		player: player,
		name:   name,
	}
	list.SetTracks(tracks)
	return list
}

// Name returns the list name.
func (l *TrackList) Name() string {
	return l.name
}

// SetTracks replaces the rows of the list.
func (l *TrackList) SetTracks(tracks []domain.Track) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.tracks = make([]domain.Track, len(tracks))
	copy(l.tracks, tracks)
}

// Tracks returns a copy of the rows.
func (l *TrackList) Tracks() []domain.Track {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Track, len(l.tracks))
	copy(out, l.tracks)
	return out
}

// Len returns the number of rows.
func (l *TrackList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.tracks)
}

// Trigger plays the i-th track. Triggering the current track toggles it.
func (l *TrackList) Trigger(index int) error {
	l.mu.RLock()
	if index < 0 || index >= len(l.tracks) {
		l.mu.RUnlock()
		return domain.ErrInvalidIndex
	}
	track := l.tracks[index]
	active := l.active
	l.mu.RUnlock()

	if active != nil {
		active.mark(l, track.ID)
	}

	l.logger.Debug("track triggered", slog.Int("index", index), slog.String("track_id", track.ID))
	l.player.PlayTrack(track)
	return nil
}

// ActiveIndex returns the row of the current track, or -1.
func (l *TrackList) ActiveIndex() int {
	return l.activeIndex(l.player.State())
}

func (l *TrackList) activeIndex(state domain.PlaybackState) int {
	if state.CurrentTrack == nil {
		return -1
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	for i, t := range l.tracks {
		if t.ID == state.CurrentTrack.ID {
			return i
		}
	}
	return -1
}

// IsActive reports whether the i-th row is the current track.
func (l *TrackList) IsActive(index int) bool {
	return index >= 0 && l.ActiveIndex() == index
}

// IsActivePlaying reports whether the i-th row is the current track and playing.
func (l *TrackList) IsActivePlaying(index int) bool {
	state := l.player.State()
	return index >= 0 && state.IsPlaying && l.activeIndex(state) == index
}

// EnableAutoAdvance plays the next row when a track this list started ends.
// Lists sharing active hand ownership to whichever of them triggered last;
// a nil active gives the list a holder of its own. The last row does not
// wrap around.
func (l *TrackList) EnableAutoAdvance(bus ports.EventBus, active *ActiveList) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.bus != nil {
		return
	}
	if active == nil {
		active = NewActiveList()
	}
	l.bus = bus
	l.active = active
	l.autoAdvanceSub = bus.Subscribe(domain.EventTrackEnded, l.handleTrackEnded)
}

// Close removes the auto-advance subscription, if any.
func (l *TrackList) Close() {
	l.mu.Lock()
	bus, sub := l.bus, l.autoAdvanceSub
	l.bus = nil
	l.mu.Unlock()

	if bus != nil {
		bus.Unsubscribe(sub)
	}
}

func (l *TrackList) handleTrackEnded(event domain.Event) {
	ended, ok := event.(domain.TrackEndedEvent)
	if !ok {
		return
	}

	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	if active == nil || !active.owns(l, ended.Track.ID) {
		return
	}

	l.mu.RLock()
	next := -1
	for i, t := range l.tracks {
		if t.ID == ended.Track.ID {
			next = i + 1
			break
		}
	}
	count := len(l.tracks)
	l.mu.RUnlock()

	if next <= 0 || next >= count {
		return
	}

	l.logger.Debug("auto-advancing", slog.Int("index", next))
	if err := l.Trigger(next); err != nil {
		l.logger.Warn("auto-advance failed", slog.Any("error", err))
	}
}
