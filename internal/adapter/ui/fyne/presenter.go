// Package fyne provides Fyne UI adapter implementations.
// This package implements the player surface, floating shortcut and track
// lists using the Fyne toolkit.
package fyne

import (
	"log/slog"
	"sync"

	"github.com/xampmusic/xamp-player/internal/domain"
	"github.com/xampmusic/xamp-player/internal/ports"
)

// PlayerController is the part of the playback store the surfaces drive.
type PlayerController interface {
	State() domain.PlaybackState
	TogglePlay()
	Seek(seconds float64)
	SetVolume(volume float64)
	ToggleMute()
	OpenPlayer()
	ClosePlayer()
}

// Presenter implements the Presenter pattern (MVP architecture).
// It renders store snapshots onto the player surface and floating shortcut,
// and translates their gestures into store actions.
//
// Responsibilities:
// - Subscribe to state snapshots from the event bus
// - Re-render only the view fields whose value changed
// - Translate UI gestures to store actions
//
// Thread-safety: Snapshots may arrive on any goroutine; rendering is handed to
// dispatch, which must run functions serially on the UI thread.
type Presenter struct {
	// Dependencies
	logger *slog.Logger
	store  PlayerController
	bus    ports.EventBus

	// Views
	surface  ports.PlayerSurfaceView
	shortcut ports.ShortcutView

	// dispatch runs f on the UI thread (fyne.Do in production)
	dispatch func(f func())

	// Presentation state, owned by the UI thread
	rendered bool
	last     domain.PlaybackState
	seeking  bool

	subID        domain.SubscriptionID
	mu           sync.Mutex
	shutdownOnce sync.Once
}

// NewPresenter creates a presenter and renders the current snapshot.
func NewPresenter(
	logger *slog.Logger,
	store PlayerController,
	bus ports.EventBus,
	surface ports.PlayerSurfaceView,
	shortcut ports.ShortcutView,
	dispatch func(f func()),
) *Presenter {
	if dispatch == nil {
		dispatch = func(f func()) { f() }
	}

	p := &Presenter{
		logger:   logger,
		store:    store,
		bus:      bus,
		surface:  surface,
		shortcut: shortcut,
		dispatch: dispatch,
	}

	p.subID = bus.Subscribe(domain.EventStateChanged, p.onStateChanged)

	// Sync UI with current state
	state := store.State()
	p.dispatch(func() { p.render(state) })

	return p
}

func (p *Presenter) onStateChanged(event domain.Event) {
	e, ok := event.(domain.StateChangedEvent)
	if !ok {
		return
	}
	p.dispatch(func() { p.render(e.State) })
}

// render applies a snapshot. Snapshots older than the last rendered one are
// dropped; the diff against the last rendered snapshot decides what to redraw.
func (p *Presenter) render(state domain.PlaybackState) {
	p.mu.Lock()
	if p.rendered && state.Version <= p.last.Version {
		p.mu.Unlock()
		return
	}
	changed := domain.FieldAll
	if p.rendered {
		changed = diffState(p.last, state)
	}
	p.last = state
	p.rendered = true
	seeking := p.seeking
	p.mu.Unlock()

	if changed.Has(domain.FieldOpen | domain.FieldTrack) {
		p.surface.SetVisible(state.IsOpen)
		p.shortcut.SetVisible(state.ShortcutVisible())
	}

	if changed.Has(domain.FieldTrack) {
		if state.CurrentTrack != nil {
			p.surface.SetTrackInfo(*state.CurrentTrack)
		} else {
			p.surface.ClearTrackInfo()
		}
	}

	if changed.Has(domain.FieldPlaying) {
		p.surface.SetPlayState(state.IsPlaying)
		p.shortcut.SetPlayState(state.IsPlaying)
	}

	if changed.Has(domain.FieldTime|domain.FieldDuration) && !seeking {
		p.surface.SetTimes(state.CurrentTime, state.Duration)
		p.surface.SetProgress(state.Progress)
	}

	if changed.Has(domain.FieldVolume | domain.FieldMuted) {
		p.surface.SetVolume(state.EffectiveVolume())
		p.surface.SetMuteState(state.IsMuted)
	}
}

// diffState returns the fields whose values differ between two snapshots.
func diffState(prev, next domain.PlaybackState) domain.StateField {
	var changed domain.StateField

	if !sameTrack(prev.CurrentTrack, next.CurrentTrack) {
		changed |= domain.FieldTrack
	}
	if prev.IsPlaying != next.IsPlaying {
		changed |= domain.FieldPlaying
	}
	if prev.IsOpen != next.IsOpen {
		changed |= domain.FieldOpen
	}
	if prev.CurrentTime != next.CurrentTime || prev.Progress != next.Progress {
		changed |= domain.FieldTime
	}
	if prev.Duration != next.Duration {
		changed |= domain.FieldDuration
	}
	if prev.Volume != next.Volume {
		changed |= domain.FieldVolume
	}
	if prev.IsMuted != next.IsMuted {
		changed |= domain.FieldMuted
	}
	if prev.Phase != next.Phase {
		changed |= domain.FieldPhase
	}

	return changed
}

func sameTrack(a, b *domain.Track) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// UI gesture handlers (called by views)

// OnPlayPauseTapped handles the play/pause button on either surface.
func (p *Presenter) OnPlayPauseTapped() {
	p.store.TogglePlay()
}

// OnSeekStarted suspends progress rendering while the slider is dragged.
func (p *Presenter) OnSeekStarted() {
	p.mu.Lock()
	p.seeking = true
	p.mu.Unlock()
}

// OnSeekEnded seeks to the given progress percentage (0-100) once the drag ends.
func (p *Presenter) OnSeekEnded(progress float64) {
	p.mu.Lock()
	p.seeking = false
	p.mu.Unlock()

	state := p.store.State()
	if state.Duration <= 0 {
		// Nothing to seek in; restore the slider.
		p.dispatch(func() {
			p.surface.SetTimes(state.CurrentTime, state.Duration)
			p.surface.SetProgress(state.Progress)
		})
		return
	}

	p.store.Seek(progress / 100 * state.Duration)
}

// OnVolumeChanged handles volume slider drags (0.0-1.0).
func (p *Presenter) OnVolumeChanged(volume float64) {
	p.mu.Lock()
	current := p.last.EffectiveVolume()
	p.mu.Unlock()

	// Slider echoes of our own SetVolume calls
	if volume == current {
		return
	}
	p.store.SetVolume(volume)
}

// OnMuteTapped toggles mute.
func (p *Presenter) OnMuteTapped() {
	p.store.ToggleMute()
}

// OnCloseTapped hides the player surface. Playback continues.
func (p *Presenter) OnCloseTapped() {
	p.store.ClosePlayer()
}

// OnOpenTapped shows the player surface without touching playback.
func (p *Presenter) OnOpenTapped() {
	p.store.OpenPlayer()
}

// Shutdown stops listening to the store.
// It's safe to call multiple times (idempotent).
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.bus.Unsubscribe(p.subID)
		p.logger.Debug("presenter shut down")
	})
}
