// Package service provides business logic for the xamp player.
package service

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/xampmusic/xamp-player/internal/domain"
	"github.com/xampmusic/xamp-player/internal/media"
	"github.com/xampmusic/xamp-player/internal/ports"
)

// PlaybackStore is the single process-wide playback state container.
// Every mutation goes through one of its actions; it is the only component
// allowed to command the media binding.
//
// Each mutation publishes exactly one StateChangedEvent carrying a
// snapshot and its Version. Events are published after the lock is released,
// so handlers may call store actions.
type PlaybackStore struct {
	// Dependencies (injected)
	logger  *slog.Logger
	binding *media.Binding
	bus     ports.EventBus

	// State
	state  domain.PlaybackState
	closed bool

	// Concurrency control
	mu sync.Mutex
}

// NewPlaybackStore creates the playback store and registers it as the
// binding's listener.
func NewPlaybackStore(
	logger *slog.Logger,
	binding *media.Binding,
	bus ports.EventBus,
) *PlaybackStore {
	store := &PlaybackStore{
		logger:  logger,
		binding: binding,
		bus:     bus,
		state:   domain.NewPlaybackState(),
	}

	binding.SetListener(store)
	if err := binding.SetVolume(store.state.Volume); err != nil {
		logger.Warn("failed to apply initial volume", slog.Any("error", err))
	}

	logger.Debug("playback store initialized")

	return store
}

// State returns a snapshot of the current playback state.
func (s *PlaybackStore) State() domain.PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Attach binds a media element. If a track is current, the element is
// loaded with it, paused at the start.
func (s *PlaybackStore) Attach(element ports.MediaElement) error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return domain.ErrClosed
	}

	if err := s.binding.Attach(element); err != nil {
		s.mu.Unlock()
		return err
	}

	var changed domain.StateField
	if s.state.CurrentTrack != nil {
		s.state.IsPlaying = false
		s.state.CurrentTime = 0
		s.state.Duration = 0
		s.state.Phase = domain.PhasePaused
		changed = domain.FieldPlaying | domain.FieldTime | domain.FieldDuration | domain.FieldPhase
	}

	events := []domain.Event{domain.NewElementAttachedEvent(fmt.Sprintf("%T", element))}
	if changed != 0 {
		events = append(events, s.commitLocked(changed))
	}
	s.mu.Unlock()

	s.logger.Info("media element attached", slog.String("kind", fmt.Sprintf("%T", element)))
	s.publish(events...)
	return nil
}

// PlayTrack makes track the current one and starts it. Triggering the
// current track again toggles play/pause instead of restarting it.
func (s *PlaybackStore) PlayTrack(track domain.Track) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return
	}

	if s.state.IsCurrent(track.ID) {
		events := s.togglePlayLocked()
		s.mu.Unlock()
		s.publish(events...)
		return
	}

	s.logger.Debug("loading track",
		slog.String("track_id", track.ID),
		slog.String("audio_url", track.AudioURL))

	previous := s.state.CurrentTrack
	wasOpen := s.state.IsOpen
	current := track

	s.state.CurrentTrack = &current
	s.state.IsOpen = true
	s.state.IsPlaying = true
	s.state.Phase = domain.PhaseLoading
	s.state.CurrentTime = 0
	s.state.Duration = 0

	events := []domain.Event{domain.NewTrackLoadedEvent(track, previous)}

	if err := s.binding.Load(track.ID, track.AudioURL); err != nil {
		s.logger.Warn("failed to load track", slog.String("track_id", track.ID), slog.Any("error", err))
		s.state.IsPlaying = false
		s.state.Phase = domain.PhasePaused
		events = append(events, domain.NewPlaybackFailedEvent(track, err))
	} else {
		s.binding.Play()
	}

	if !wasOpen {
		events = append(events, domain.NewVisibilityEvent(true))
	}

	events = append([]domain.Event{s.commitLocked(domain.FieldTrack | domain.FieldPlaying | domain.FieldOpen |
		domain.FieldTime | domain.FieldDuration | domain.FieldPhase)}, events...)
	s.mu.Unlock()

	s.publish(events...)
}

// TogglePlay flips between playing and paused. No-op when nothing is loaded.
// Toggling an ended track replays it from the start.
func (s *PlaybackStore) TogglePlay() {
	s.mu.Lock()
	events := s.togglePlayLocked()
	s.mu.Unlock()

	s.publish(events...)
}

// Play resumes the current track if it is paused.
func (s *PlaybackStore) Play() {
	s.mu.Lock()
	var events []domain.Event
	if !s.state.IsPlaying {
		events = s.togglePlayLocked()
	}
	s.mu.Unlock()

	s.publish(events...)
}

// Pause pauses the current track if it is playing.
func (s *PlaybackStore) Pause() {
	s.mu.Lock()
	var events []domain.Event
	if s.state.IsPlaying {
		events = s.togglePlayLocked()
	}
	s.mu.Unlock()

	s.publish(events...)
}

func (s *PlaybackStore) togglePlayLocked() []domain.Event {
	if s.closed || s.state.CurrentTrack == nil {
		return nil
	}

	changed := domain.FieldPlaying | domain.FieldPhase

	if s.state.IsPlaying {
		s.state.IsPlaying = false
		s.state.Phase = domain.PhasePaused
		if err := s.binding.Pause(); err != nil {
			s.logger.Warn("pause failed", slog.Any("error", err))
		}
		return []domain.Event{s.commitLocked(changed)}
	}

	if s.state.Phase == domain.PhaseEnded {
		s.state.CurrentTime = 0
		changed |= domain.FieldTime
		if err := s.binding.Seek(0); err != nil {
			s.logger.Warn("rewind failed", slog.Any("error", err))
		}
	}

	s.state.IsPlaying = true
	s.state.Phase = domain.PhaseLoading
	s.binding.Play()

	return []domain.Event{s.commitLocked(changed)}
}

// Seek moves the transport to the given position in seconds, clamped to
// [0, Duration]. No-op when nothing is loaded.
func (s *PlaybackStore) Seek(seconds float64) {
	s.mu.Lock()

	if s.closed || s.state.CurrentTrack == nil {
		s.mu.Unlock()
		return
	}

	t := domain.ClampTime(seconds, s.state.Duration)
	s.state.CurrentTime = t
	changed := domain.FieldTime

	if s.state.Phase == domain.PhaseEnded && t < s.state.Duration {
		s.state.Phase = domain.PhasePaused
		changed |= domain.FieldPhase
	}

	if err := s.binding.Seek(t); err != nil {
		s.logger.Warn("seek failed", slog.Float64("position", t), slog.Any("error", err))
	}

	event := s.commitLocked(changed)
	s.mu.Unlock()

	s.publish(event)
}

// SetVolume sets the volume, clamped to [0, 1]. A non-zero level unmutes.
func (s *PlaybackStore) SetVolume(volume float64) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return
	}

	v := domain.ClampVolume(volume)
	s.state.Volume = v
	changed := domain.FieldVolume

	if err := s.binding.SetVolume(v); err != nil {
		s.logger.Warn("set volume failed", slog.Any("error", err))
	}

	if v > 0 && s.state.IsMuted {
		s.state.IsMuted = false
		changed |= domain.FieldMuted
		if err := s.binding.SetMuted(false); err != nil {
			s.logger.Warn("unmute failed", slog.Any("error", err))
		}
	}

	event := s.commitLocked(changed)
	s.mu.Unlock()

	s.publish(event)
}

// ToggleMute flips the mute flag. The stored volume is kept.
func (s *PlaybackStore) ToggleMute() {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return
	}

	s.state.IsMuted = !s.state.IsMuted
	if err := s.binding.SetMuted(s.state.IsMuted); err != nil {
		s.logger.Warn("mute failed", slog.Any("error", err))
	}

	event := s.commitLocked(domain.FieldMuted)
	s.mu.Unlock()

	s.publish(event)
}

// OpenPlayer shows the full player surface. Playback is untouched.
func (s *PlaybackStore) OpenPlayer() {
	s.setOpen(true)
}

// ClosePlayer hides the full player surface. Playback is untouched.
func (s *PlaybackStore) ClosePlayer() {
	s.setOpen(false)
}

func (s *PlaybackStore) setOpen(open bool) {
	s.mu.Lock()

	if s.closed || s.state.IsOpen == open {
		s.mu.Unlock()
		return
	}

	s.state.IsOpen = open
	event := s.commitLocked(domain.FieldOpen)
	s.mu.Unlock()

	s.publish(event, domain.NewVisibilityEvent(open))
}

// UpdateProgress records the transport position reported by the media
// element. It never commands the binding.
func (s *PlaybackStore) UpdateProgress(currentTime, duration float64) {
	s.mu.Lock()

	if s.closed || s.state.CurrentTrack == nil {
		s.mu.Unlock()
		return
	}

	changed := domain.FieldTime
	if d := sanitizeSeconds(duration); d != s.state.Duration {
		s.state.Duration = d
		changed |= domain.FieldDuration
	}
	s.state.CurrentTime = sanitizeSeconds(currentTime)
	if s.state.Duration > 0 && s.state.CurrentTime > s.state.Duration {
		s.state.CurrentTime = s.state.Duration
	}

	event := s.commitLocked(changed)
	s.mu.Unlock()

	s.publish(event)
}

// Shutdown closes the binding and its element. Further actions are no-ops.
func (s *PlaybackStore) Shutdown() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.logger.Debug("shutting down playback store")

	return s.binding.Close()
}

// OnPlayResult applies the outcome of the latest play attempt.
func (s *PlaybackStore) OnPlayResult(result media.PlayResult) {
	s.mu.Lock()

	if s.closed || !s.state.IsCurrent(result.Attempt.TrackID) || !s.binding.IsCurrent(result.Attempt) {
		s.mu.Unlock()
		return
	}

	if result.Err == nil {
		s.state.IsPlaying = true
		s.state.Phase = domain.PhasePlaying
		event := s.commitLocked(domain.FieldPlaying | domain.FieldPhase)
		s.mu.Unlock()

		s.publish(event)
		return
	}

	events := s.failLocked(result.Err)
	s.mu.Unlock()

	s.publish(events...)
}

// OnTimeUpdate records natural playback progress.
func (s *PlaybackStore) OnTimeUpdate(current, duration float64) {
	s.UpdateProgress(current, duration)
}

// OnMetadataLoaded records the duration of the loaded source.
func (s *PlaybackStore) OnMetadataLoaded(duration float64) {
	s.mu.Lock()

	if s.closed || s.state.CurrentTrack == nil {
		s.mu.Unlock()
		return
	}

	s.state.Duration = sanitizeSeconds(duration)
	event := s.commitLocked(domain.FieldDuration)
	s.mu.Unlock()

	s.publish(event)
}

// OnEnded marks the current track as played to its end.
func (s *PlaybackStore) OnEnded() {
	s.mu.Lock()

	if s.closed || s.state.CurrentTrack == nil {
		s.mu.Unlock()
		return
	}

	s.state.IsPlaying = false
	s.state.CurrentTime = s.state.Duration
	s.state.Phase = domain.PhaseEnded
	track := *s.state.CurrentTrack

	event := s.commitLocked(domain.FieldPlaying | domain.FieldTime | domain.FieldPhase)
	s.mu.Unlock()

	s.logger.Debug("track ended", slog.String("track_id", track.ID))
	s.publish(event, domain.NewTrackEndedEvent(track))
}

// OnMediaError handles a native failure of the current source.
func (s *PlaybackStore) OnMediaError(err error) {
	s.mu.Lock()

	if s.closed || s.state.CurrentTrack == nil {
		s.mu.Unlock()
		return
	}

	events := s.failLocked(err)
	s.mu.Unlock()

	s.publish(events...)
}

func (s *PlaybackStore) failLocked(err error) []domain.Event {
	track := *s.state.CurrentTrack

	s.logger.Warn("playback failed",
		slog.String("track_id", track.ID),
		slog.Any("error", err))

	s.state.IsPlaying = false
	s.state.Phase = domain.PhasePaused

	return []domain.Event{
		s.commitLocked(domain.FieldPlaying | domain.FieldPhase),
		domain.NewPlaybackFailedEvent(track, err),
	}
}

// commitLocked derives computed fields, bumps the version and returns the
// snapshot event for the mutation.
func (s *PlaybackStore) commitLocked(changed domain.StateField) domain.Event {
	s.state.Progress = domain.Progress(s.state.CurrentTime, s.state.Duration)
	s.state.Version++

	return domain.NewStateChangedEvent(s.snapshotLocked(), changed)
}

func (s *PlaybackStore) snapshotLocked() domain.PlaybackState {
	snapshot := s.state
	if s.state.CurrentTrack != nil {
		track := *s.state.CurrentTrack
		snapshot.CurrentTrack = &track
	}
	return snapshot
}

func (s *PlaybackStore) publish(events ...domain.Event) {
	for _, event := range events {
		s.bus.Publish(event)
	}
}

func sanitizeSeconds(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Verify that PlaybackStore implements the binding listener
var _ media.Listener = (*PlaybackStore)(nil)
