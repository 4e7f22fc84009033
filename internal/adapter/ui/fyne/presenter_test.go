package fyne

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xampmusic/xamp-player/internal/adapter/eventbus"
	"github.com/xampmusic/xamp-player/internal/domain"
	"github.com/xampmusic/xamp-player/internal/logger"
)

type fakeSurface struct {
	visible    []bool
	tracks     []domain.Track
	cleared    int
	playStates []bool
	times      [][2]float64
	progress   []float64
	volumes    []float64
	muted      []bool
}

func (f *fakeSurface) SetVisible(v bool) { f.visible = append(f.visible, v) }
func (f *fakeSurface) SetTrackInfo(t domain.Track) { f.tracks = append(f.tracks, t) }
func (f *fakeSurface) ClearTrackInfo() { f.cleared++ }
func (f *fakeSurface) SetPlayState(p bool) { f.playStates = append(f.playStates, p) }
func (f *fakeSurface) SetTimes(c, d float64) { f.times = append(f.times, [2]float64{c, d}) }
func (f *fakeSurface) SetProgress(p float64) { f.progress = append(f.progress, p) }
func (f *fakeSurface) SetVolume(v float64) { f.volumes = append(f.volumes, v) }
func (f *fakeSurface) SetMuteState(m bool) { f.muted = append(f.muted, m) }
func (f *fakeSurface) reset() { *f = fakeSurface{} }
func (f *fakeSurface) lastVisible() bool { return f.visible[len(f.visible)-1] }
func (f *fakeSurface) lastPlayState() bool { return f.playStates[len(f.playStates)-1] }

type fakeShortcut struct {
	visible    []bool
	playStates []bool
}

func (f *fakeShortcut) SetVisible(v bool) { f.visible = append(f.visible, v) }
func (f *fakeShortcut) SetPlayState(p bool) { f.playStates = append(f.playStates, p) }

type fakeStore struct {
	mu      sync.Mutex
	state   domain.PlaybackState
	calls   []string
	seeks   []float64
	volumes []float64
}

func (f *fakeStore) State() domain.PlaybackState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeStore) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeStore) TogglePlay() { f.record("toggle") }
func (f *fakeStore) ToggleMute() { f.record("mute") }
func (f *fakeStore) OpenPlayer() { f.record("open") }
func (f *fakeStore) ClosePlayer() { f.record("close") }

func (f *fakeStore) Seek(s float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, s)
}

func (f *fakeStore) SetVolume(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volumes = append(f.volumes, v)
}

func snapshot(version uint64, mutate func(s *domain.PlaybackState)) domain.PlaybackState {
	s := domain.NewPlaybackState()
	s.Version = version
	if mutate != nil {
		mutate(&s)
	}
	return s
}

func withTrack(s *domain.PlaybackState) {
	s.CurrentTrack = &domain.Track{ID: "t1", Title: "Song", Artist: "Band", AudioURL: "1.mp3"}
}

type presenterFixture struct {
	presenter *Presenter
	store     *fakeStore
	surface   *fakeSurface
	shortcut  *fakeShortcut
	bus       *eventbus.SyncEventBus
}

func newPresenterFixture(t *testing.T) *presenterFixture {
	t.Helper()

	f := &presenterFixture{
		store:    &fakeStore{state: domain.NewPlaybackState()},
		surface:  &fakeSurface{},
		shortcut: &fakeShortcut{},
		bus:      eventbus.NewSyncEventBus(),
	}
	f.presenter = NewPresenter(logger.NewTestLogger(), f.store, f.bus, f.surface, f.shortcut, nil)
	t.Cleanup(f.presenter.Shutdown)
	return f
}

func (f *presenterFixture) publish(state domain.PlaybackState) {
	f.bus.Publish(domain.NewStateChangedEvent(state, domain.FieldAll))
}

func TestPresenter_InitialRender(t *testing.T) {
	f := newPresenterFixture(t)

	assert.Equal(t, []bool{false}, f.surface.visible)
	assert.Equal(t, []bool{false}, f.shortcut.visible)
	assert.Equal(t, 1, f.surface.cleared)
	assert.Equal(t, []bool{false}, f.surface.playStates)
	assert.Equal(t, [][2]float64{{0, 0}}, f.surface.times)
	assert.Equal(t, []float64{1}, f.surface.volumes)
}

func TestPresenter_RendersOnlyChangedFields(t *testing.T) {
	f := newPresenterFixture(t)
	f.surface.reset()

	f.publish(snapshot(1, func(s *domain.PlaybackState) {
		withTrack(s)
		s.IsOpen = true
		s.IsPlaying = true
	}))

	require.Len(t, f.surface.tracks, 1)
	assert.Equal(t, "Song", f.surface.tracks[0].Title)
	assert.True(t, f.surface.lastVisible())
	assert.True(t, f.surface.lastPlayState())
	assert.Empty(t, f.surface.volumes, "volume did not change")

	f.surface.reset()
	f.publish(snapshot(2, func(s *domain.PlaybackState) {
		withTrack(s)
		s.IsOpen = true
		s.IsPlaying = true
		s.CurrentTime = 30
		s.Duration = 120
		s.Progress = 25
	}))

	assert.Empty(t, f.surface.tracks)
	assert.Empty(t, f.surface.playStates)
	assert.Equal(t, [][2]float64{{30, 120}}, f.surface.times)
	assert.Equal(t, []float64{25}, f.surface.progress)
}

func TestPresenter_DropsOutOfOrderSnapshots(t *testing.T) {
	f := newPresenterFixture(t)

	f.publish(snapshot(5, func(s *domain.PlaybackState) {
		withTrack(s)
		s.IsPlaying = true
	}))
	f.surface.reset()

	f.publish(snapshot(4, nil))

	assert.Empty(t, f.surface.playStates)
	assert.Zero(t, f.surface.cleared)
}

func TestPresenter_ShortcutVisibility(t *testing.T) {
	f := newPresenterFixture(t)

	// Closed with a track: shortcut shows, surface hides
	f.publish(snapshot(1, func(s *domain.PlaybackState) {
		withTrack(s)
		s.IsPlaying = true
	}))
	assert.False(t, f.surface.lastVisible())
	assert.True(t, f.shortcut.visible[len(f.shortcut.visible)-1])
	assert.True(t, f.shortcut.playStates[len(f.shortcut.playStates)-1])

	// Opened: shortcut hides
	f.publish(snapshot(2, func(s *domain.PlaybackState) {
		withTrack(s)
		s.IsPlaying = true
		s.IsOpen = true
	}))
	assert.True(t, f.surface.lastVisible())
	assert.False(t, f.shortcut.visible[len(f.shortcut.visible)-1])
}

func TestPresenter_MutedShowsZeroVolume(t *testing.T) {
	f := newPresenterFixture(t)

	f.publish(snapshot(1, func(s *domain.PlaybackState) {
		s.Volume = 0.6
		s.IsMuted = true
	}))

	assert.Equal(t, 0.0, f.surface.volumes[len(f.surface.volumes)-1])
	assert.True(t, f.surface.muted[len(f.surface.muted)-1])
}

func TestPresenter_SeekDragSuspendsProgress(t *testing.T) {
	f := newPresenterFixture(t)
	f.store.state = snapshot(1, func(s *domain.PlaybackState) {
		withTrack(s)
		s.Duration = 200
	})

	f.presenter.OnSeekStarted()
	f.surface.reset()
	f.publish(snapshot(2, func(s *domain.PlaybackState) {
		withTrack(s)
		s.CurrentTime = 10
		s.Duration = 200
		s.Progress = 5
	}))
	assert.Empty(t, f.surface.progress, "progress must not fight the drag")

	f.presenter.OnSeekEnded(50)
	assert.Equal(t, []float64{100}, f.store.seeks)
}

func TestPresenter_SeekWithoutDurationRestoresSlider(t *testing.T) {
	f := newPresenterFixture(t)
	f.surface.reset()

	f.presenter.OnSeekStarted()
	f.presenter.OnSeekEnded(80)

	assert.Empty(t, f.store.seeks)
	assert.Equal(t, []float64{0}, f.surface.progress)
}

func TestPresenter_Gestures(t *testing.T) {
	f := newPresenterFixture(t)

	f.presenter.OnPlayPauseTapped()
	f.presenter.OnMuteTapped()
	f.presenter.OnCloseTapped()
	f.presenter.OnOpenTapped()
	f.presenter.OnVolumeChanged(0.3)
	f.presenter.OnVolumeChanged(1) // echo of the rendered level

	assert.Equal(t, []string{"toggle", "mute", "close", "open"}, f.store.calls)
	assert.Equal(t, []float64{0.3}, f.store.volumes)
}

func TestPresenter_ShutdownStopsRendering(t *testing.T) {
	f := newPresenterFixture(t)
	f.presenter.Shutdown()
	f.presenter.Shutdown()
	f.surface.reset()

	f.publish(snapshot(1, withTrack))
	assert.Empty(t, f.surface.tracks)
}

func TestDiffState(t *testing.T) {
	base := snapshot(1, withTrack)

	same := base
	assert.Equal(t, domain.StateField(0), diffState(base, same))

	other := base
	other.CurrentTrack = &domain.Track{ID: "t1", Title: "Song", Artist: "Band", AudioURL: "1.mp3"}
	assert.False(t, diffState(base, other).Has(domain.FieldTrack), "equal tracks behind different pointers")

	other.CurrentTrack = nil
	other.IsMuted = true
	changed := diffState(base, other)
	assert.True(t, changed.Has(domain.FieldTrack))
	assert.True(t, changed.Has(domain.FieldMuted))
	assert.False(t, changed.Has(domain.FieldVolume))
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{5.9, "0:05"},
		{65, "1:05"},
		{3600, "60:00"},
		{-3, "0:00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTime(tt.seconds))
	}
}
