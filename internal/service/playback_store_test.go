package service

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xampmusic/xamp-player/internal/adapter/eventbus"
	"github.com/xampmusic/xamp-player/internal/adapter/media/mock"
	"github.com/xampmusic/xamp-player/internal/domain"
	"github.com/xampmusic/xamp-player/internal/logger"
	"github.com/xampmusic/xamp-player/internal/media"
	"github.com/xampmusic/xamp-player/internal/ports"
	"github.com/xampmusic/xamp-player/internal/testutil"
)

type storeFixture struct {
	store   *PlaybackStore
	binding *media.Binding
	element *mock.Element
	bus     *eventbus.SyncEventBus

	mu        sync.Mutex
	snapshots []domain.StateChangedEvent
	failures  []domain.PlaybackFailedEvent
}

// Helper to create a store bound to a mock element
func newStoreFixture(t *testing.T) *storeFixture {
	t.Helper()

	log := logger.NewTestLogger()
	bus := eventbus.NewSyncEventBus()
	binding := media.NewBinding(log)
	store := NewPlaybackStore(log, binding, bus)
	element := mock.NewElement()
	require.NoError(t, store.Attach(element))

	f := &storeFixture{store: store, binding: binding, element: element, bus: bus}
	bus.Subscribe(domain.EventStateChanged, func(e domain.Event) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.snapshots = append(f.snapshots, e.(domain.StateChangedEvent))
	})
	bus.Subscribe(domain.EventPlaybackFailed, func(e domain.Event) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.failures = append(f.failures, e.(domain.PlaybackFailedEvent))
	})

	t.Cleanup(func() {
		_ = store.Shutdown()
		_ = bus.Close()
	})
	return f
}

func (f *storeFixture) snapshotCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.snapshots)
}

func (f *storeFixture) failureCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.failures)
}

// Helper to create a test track
func createTestTrack(id string) domain.Track {
	return domain.Track{
		ID:       id,
		Title:    "Song " + id,
		Artist:   "Test Artist",
		Cover:    "https://cdn.example/" + id + ".jpg",
		AudioURL: "https://cdn.example/" + id + ".mp3",
	}
}

// mockEvent builds a time update claiming to come from source.
func mockEvent(source string) ports.MediaEvent {
	return ports.MediaEvent{
		Kind:     ports.MediaTimeUpdate,
		Source:   source,
		Position: 30 * time.Second,
		Duration: 60 * time.Second,
	}
}

func TestPlaybackStore_InitialState(t *testing.T) {
	f := newStoreFixture(t)

	state := f.store.State()
	assert.Nil(t, state.CurrentTrack)
	assert.False(t, state.IsPlaying)
	assert.False(t, state.IsOpen)
	assert.Equal(t, 1.0, state.Volume)
	assert.False(t, state.IsMuted)
	assert.Equal(t, domain.PhaseEmpty, state.Phase)
	assert.False(t, state.ShortcutVisible())
}

func TestPlaybackStore_PlayTrack(t *testing.T) {
	f := newStoreFixture(t)

	var loaded domain.TrackLoadedEvent
	f.bus.Subscribe(domain.EventTrackLoaded, func(e domain.Event) {
		loaded = e.(domain.TrackLoadedEvent)
	})

	track := createTestTrack("1")
	f.store.PlayTrack(track)

	state := f.store.State()
	require.NotNil(t, state.CurrentTrack)
	assert.Equal(t, "1", state.CurrentTrack.ID)
	assert.True(t, state.IsOpen)
	assert.True(t, state.IsPlaying, "playing is set optimistically")
	assert.Equal(t, 0.0, state.CurrentTime)
	assert.Equal(t, 0.0, state.Progress)
	assert.Equal(t, track.AudioURL, f.element.Source())
	assert.Equal(t, "1", loaded.Track.ID)
	assert.Nil(t, loaded.Previous)

	f.binding.Wait()
	state = f.store.State()
	assert.Equal(t, domain.PhasePlaying, state.Phase)
	assert.True(t, state.IsPlaying)
	assert.True(t, f.element.IsPlaying())
}

func TestPlaybackStore_SingleTrack(t *testing.T) {
	f := newStoreFixture(t)

	f.store.PlayTrack(createTestTrack("A"))
	f.binding.Wait()
	f.store.PlayTrack(createTestTrack("B"))
	f.binding.Wait()

	state := f.store.State()
	assert.Equal(t, "B", state.CurrentTrack.ID)
	assert.True(t, state.IsPlaying)
	assert.Equal(t, createTestTrack("B").AudioURL, f.element.Source())
}

func TestPlaybackStore_PlayPauseConsistency(t *testing.T) {
	f := newStoreFixture(t)

	f.store.PlayTrack(createTestTrack("1"))
	f.binding.Wait()
	require.True(t, f.element.IsPlaying())

	f.store.TogglePlay()
	f.binding.Wait()
	assert.False(t, f.store.State().IsPlaying)
	assert.False(t, f.element.IsPlaying())
	assert.Equal(t, domain.PhasePaused, f.store.State().Phase)

	f.store.TogglePlay()
	f.binding.Wait()
	assert.True(t, f.store.State().IsPlaying)
	assert.True(t, f.element.IsPlaying())
	assert.Equal(t, domain.PhasePlaying, f.store.State().Phase)
}

func TestPlaybackStore_TogglePlayWithoutTrackIsNoop(t *testing.T) {
	f := newStoreFixture(t)
	before := f.snapshotCount()

	f.store.TogglePlay()
	f.store.Seek(30)
	f.binding.Wait()

	assert.Equal(t, before, f.snapshotCount())
	assert.False(t, f.store.State().IsPlaying)
	assert.Equal(t, 0, f.element.PlayCalls())
}

func TestPlaybackStore_PlaybackFailureClearsPlaying(t *testing.T) {
	f := newStoreFixture(t)
	f.element.SetPlayMode(mock.PlayFail)
	f.element.SetFailError(errors.New("autoplay blocked"))

	f.store.PlayTrack(createTestTrack("1"))
	f.binding.Wait()

	state := f.store.State()
	assert.False(t, state.IsPlaying)
	assert.Equal(t, domain.PhasePaused, state.Phase)
	assert.Equal(t, "1", state.CurrentTrack.ID, "a failed start keeps the track loaded")
	require.Equal(t, 1, f.failureCount())
}

func TestPlaybackStore_DetachedPlayNeverClaimsPlaying(t *testing.T) {
	log := logger.NewTestLogger()
	bus := eventbus.NewSyncEventBus()
	defer bus.Close()
	binding := media.NewBinding(log)
	store := NewPlaybackStore(log, binding, bus)
	defer store.Shutdown()

	store.PlayTrack(createTestTrack("1"))
	binding.Wait()

	assert.False(t, store.State().IsPlaying)
	assert.True(t, store.State().IsOpen)
}

func TestPlaybackStore_MediaErrorClearsPlaying(t *testing.T) {
	f := newStoreFixture(t)

	f.store.PlayTrack(createTestTrack("1"))
	f.binding.Wait()
	f.element.FireError(errors.New("404"))

	assert.False(t, f.store.State().IsPlaying)
	assert.Equal(t, 1, f.failureCount())
}

func TestPlaybackStore_MuteRoundTrip(t *testing.T) {
	f := newStoreFixture(t)

	f.store.SetVolume(0.7)
	f.store.ToggleMute()
	assert.True(t, f.store.State().IsMuted)
	assert.Equal(t, 0.0, f.element.Volume())
	assert.InDelta(t, 0.7, f.store.State().Volume, 1e-9)

	f.store.ToggleMute()
	state := f.store.State()
	assert.InDelta(t, 0.7, state.Volume, 1e-9)
	assert.False(t, state.IsMuted)
	assert.InDelta(t, 0.7, f.element.Volume(), 1e-9)
}

func TestPlaybackStore_SetVolume(t *testing.T) {
	f := newStoreFixture(t)

	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"in range", 0.25, 0.25},
		{"above max", 1.7, 1},
		{"below min", -0.3, 0},
		{"nan", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.store.SetVolume(tt.in)
			assert.Equal(t, tt.want, f.store.State().Volume)
		})
	}
}

func TestPlaybackStore_SetVolumeUnmutes(t *testing.T) {
	f := newStoreFixture(t)

	f.store.ToggleMute()
	f.store.SetVolume(0)
	assert.True(t, f.store.State().IsMuted, "zero volume keeps mute")

	f.store.SetVolume(0.5)
	assert.False(t, f.store.State().IsMuted)
	assert.InDelta(t, 0.5, f.element.Volume(), 1e-9)
}

func TestPlaybackStore_ProgressDerivation(t *testing.T) {
	f := newStoreFixture(t)
	f.store.PlayTrack(createTestTrack("1"))
	f.binding.Wait()

	pairs := [][2]float64{{0, 200}, {50, 200}, {200, 200}, {33.3, 100}, {10, 0}, {5, math.NaN()}}
	for _, p := range pairs {
		f.store.UpdateProgress(p[0], p[1])
		state := f.store.State()
		assert.False(t, math.IsNaN(state.Progress))
		if state.Duration > 0 {
			assert.InDelta(t, state.CurrentTime/state.Duration*100, state.Progress, 1e-9)
		} else {
			assert.Equal(t, 0.0, state.Progress)
		}
	}
}

func TestPlaybackStore_UpdateProgressNeverCommandsBinding(t *testing.T) {
	f := newStoreFixture(t)
	f.store.PlayTrack(createTestTrack("1"))
	f.binding.Wait()

	plays, pauses, seeks := f.element.PlayCalls(), f.element.PauseCalls(), len(f.element.Seeks())
	f.store.UpdateProgress(12, 120)

	assert.Equal(t, plays, f.element.PlayCalls())
	assert.Equal(t, pauses, f.element.PauseCalls())
	assert.Len(t, f.element.Seeks(), seeks)
	assert.InDelta(t, 10, f.store.State().Progress, 1e-9)
}

func TestPlaybackStore_VisibilityIndependence(t *testing.T) {
	f := newStoreFixture(t)
	f.store.PlayTrack(createTestTrack("1"))
	f.binding.Wait()

	f.store.ClosePlayer()
	state := f.store.State()
	assert.False(t, state.IsOpen)
	assert.True(t, state.IsPlaying, "closing never stops audio")
	assert.True(t, state.ShortcutVisible())

	f.store.TogglePlay()
	f.binding.Wait()
	assert.False(t, f.store.State().IsPlaying)
	assert.False(t, f.element.IsPlaying())

	f.store.OpenPlayer()
	state = f.store.State()
	assert.True(t, state.IsOpen)
	assert.False(t, state.IsPlaying, "opening never restarts audio")
	assert.False(t, state.ShortcutVisible())
}

func TestPlaybackStore_SeekClamping(t *testing.T) {
	f := newStoreFixture(t)
	f.store.PlayTrack(createTestTrack("1"))
	f.binding.Wait()
	f.element.FireMetadata(200 * time.Second)
	require.Equal(t, 200.0, f.store.State().Duration)

	f.store.Seek(-5)
	assert.Equal(t, 0.0, f.store.State().CurrentTime)

	f.store.Seek(9999)
	assert.Equal(t, 200.0, f.store.State().CurrentTime)
	assert.Equal(t, 100.0, f.store.State().Progress)

	f.store.Seek(math.NaN())
	assert.Equal(t, 0.0, f.store.State().CurrentTime)

	f.store.Seek(50)
	assert.Equal(t, 50.0, f.store.State().CurrentTime)
	assert.Equal(t, 25.0, f.store.State().Progress)
	assert.Equal(t, 50*time.Second, f.element.Position())
}

func TestPlaybackStore_StaleAsyncGuard(t *testing.T) {
	f := newStoreFixture(t)
	f.element.SetPlayMode(mock.PlayManual)

	f.store.PlayTrack(createTestTrack("A"))
	require.Eventually(t, func() bool { return f.element.PendingPlays() == 1 }, time.Second, time.Millisecond)

	f.store.PlayTrack(createTestTrack("B"))
	require.Eventually(t, func() bool { return f.element.PendingPlays() == 1 }, time.Second, time.Millisecond)

	// Late events from A's source are dropped.
	f.element.Emit(mockEvent("https://cdn.example/A.mp3"))

	require.True(t, f.element.ResolveNext(nil))
	f.binding.Wait()

	state := f.store.State()
	assert.Equal(t, "B", state.CurrentTrack.ID)
	assert.True(t, state.IsPlaying)
	assert.Equal(t, domain.PhasePlaying, state.Phase)
	assert.Equal(t, 0.0, state.CurrentTime)
	assert.Equal(t, 0, f.failureCount())
}

func TestPlaybackStore_LateEndedFromSharedURLIgnored(t *testing.T) {
	f := newStoreFixture(t)

	a := createTestTrack("A")
	b := createTestTrack("B")
	b.AudioURL = a.AudioURL

	f.store.PlayTrack(a)
	f.binding.Wait()
	late := f.element.Listener()

	f.store.PlayTrack(b)
	f.binding.Wait()

	late(ports.MediaEvent{Kind: ports.MediaEnded, Source: a.AudioURL})

	state := f.store.State()
	require.NotNil(t, state.CurrentTrack)
	assert.Equal(t, "B", state.CurrentTrack.ID)
	assert.True(t, state.IsPlaying)
	assert.Equal(t, domain.PhasePlaying, state.Phase)
	assert.True(t, f.element.IsPlaying())
}

func TestPlaybackStore_PauseBeforePlayResolves(t *testing.T) {
	f := newStoreFixture(t)
	f.element.SetPlayMode(mock.PlayManual)

	f.store.PlayTrack(createTestTrack("1"))
	require.Eventually(t, func() bool { return f.element.PendingPlays() == 1 }, time.Second, time.Millisecond)

	f.store.TogglePlay()
	require.True(t, f.element.ResolveNext(nil))
	f.binding.Wait()

	assert.False(t, f.store.State().IsPlaying)
	assert.Equal(t, domain.PhasePaused, f.store.State().Phase)
	assert.False(t, f.element.IsPlaying(), "element must match the store")
}

func TestPlaybackStore_RetriggerToggles(t *testing.T) {
	f := newStoreFixture(t)
	track := createTestTrack("1")

	f.store.PlayTrack(track)
	f.binding.Wait()
	f.store.UpdateProgress(42, 200)

	f.store.PlayTrack(track)
	f.binding.Wait()
	state := f.store.State()
	assert.False(t, state.IsPlaying)
	assert.Equal(t, 42.0, state.CurrentTime, "re-trigger never restarts")

	f.store.PlayTrack(track)
	f.binding.Wait()
	state = f.store.State()
	assert.True(t, state.IsPlaying)
	assert.Equal(t, 42.0, state.CurrentTime)
	assert.Empty(t, f.element.Seeks())
}

func TestPlaybackStore_EndedAndReplay(t *testing.T) {
	f := newStoreFixture(t)

	var ended int
	f.bus.Subscribe(domain.EventTrackEnded, func(domain.Event) { ended++ })

	f.store.PlayTrack(createTestTrack("1"))
	f.binding.Wait()
	f.element.FireMetadata(3 * time.Second)
	f.element.Advance(5 * time.Second)

	state := f.store.State()
	assert.Equal(t, domain.PhaseEnded, state.Phase)
	assert.False(t, state.IsPlaying)
	assert.Equal(t, 3.0, state.CurrentTime)
	assert.Equal(t, 1, ended)

	f.store.TogglePlay()
	f.binding.Wait()
	state = f.store.State()
	assert.True(t, state.IsPlaying)
	assert.Equal(t, 0.0, state.CurrentTime)
	assert.Equal(t, []time.Duration{0}, f.element.Seeks())
}

func TestPlaybackStore_VersionsIncrease(t *testing.T) {
	f := newStoreFixture(t)

	f.store.PlayTrack(createTestTrack("1"))
	f.binding.Wait()
	f.store.SetVolume(0.2)
	f.store.ClosePlayer()
	f.store.OpenPlayer()

	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.snapshots)
	for i := 1; i < len(f.snapshots); i++ {
		assert.Greater(t, f.snapshots[i].State.Version, f.snapshots[i-1].State.Version)
	}
}

func TestPlaybackStore_OpenCloseIdempotent(t *testing.T) {
	f := newStoreFixture(t)

	var visibility []domain.EventType
	f.bus.SubscribeAll(func(e domain.Event) {
		if e.Type() == domain.EventPlayerOpened || e.Type() == domain.EventPlayerClosed {
			visibility = append(visibility, e.Type())
		}
	})

	f.store.OpenPlayer()
	f.store.OpenPlayer()
	f.store.ClosePlayer()

	assert.Equal(t, []domain.EventType{domain.EventPlayerOpened, domain.EventPlayerClosed}, visibility)
}

func TestPlaybackStore_AttachLoadsCurrentTrackPaused(t *testing.T) {
	f := newStoreFixture(t)
	f.store.PlayTrack(createTestTrack("1"))
	f.binding.Wait()

	replacement := mock.NewElement()
	require.NoError(t, f.store.Attach(replacement))

	state := f.store.State()
	assert.False(t, state.IsPlaying)
	assert.Equal(t, domain.PhasePaused, state.Phase)
	assert.Equal(t, createTestTrack("1").AudioURL, replacement.Source())
	assert.False(t, f.element.IsPlaying())

	f.store.TogglePlay()
	f.binding.Wait()
	assert.True(t, replacement.IsPlaying())
}

func TestPlaybackStore_ReentrantHandler(t *testing.T) {
	f := newStoreFixture(t)

	// A surface reacting to a failure by closing the player must not deadlock.
	f.bus.Subscribe(domain.EventPlaybackFailed, func(domain.Event) {
		f.store.ClosePlayer()
	})
	f.element.SetPlayMode(mock.PlayFail)

	f.store.PlayTrack(createTestTrack("1"))
	f.binding.Wait()

	assert.False(t, f.store.State().IsOpen)
}

func TestPlaybackStore_Shutdown(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	log := logger.NewTestLogger()
	bus := eventbus.NewSyncEventBus()
	binding := media.NewBinding(log)
	store := NewPlaybackStore(log, binding, bus)
	element := mock.NewElement()
	element.SetPlayMode(mock.PlayManual)
	require.NoError(t, store.Attach(element))

	store.PlayTrack(createTestTrack("1"))
	require.Eventually(t, func() bool { return element.PendingPlays() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, store.Shutdown())
	require.NoError(t, store.Shutdown())
	assert.True(t, element.IsClosed())

	store.PlayTrack(createTestTrack("2"))
	assert.Equal(t, "1", store.State().CurrentTrack.ID)
	assert.ErrorIs(t, store.Attach(mock.NewElement()), domain.ErrClosed)
	require.NoError(t, bus.Close())
}

func TestPlaybackStore_ConcurrentActions(t *testing.T) {
	f := newStoreFixture(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				switch j % 4 {
				case 0:
					f.store.PlayTrack(createTestTrack(string(rune('A' + i))))
				case 1:
					f.store.TogglePlay()
				case 2:
					f.store.UpdateProgress(float64(j), 100)
				default:
					f.store.SetVolume(float64(j) / 25)
				}
			}
		}(i)
	}
	wg.Wait()
	f.binding.Wait()

	state := f.store.State()
	require.NotNil(t, state.CurrentTrack)
	assert.Equal(t, state.IsPlaying, f.element.IsPlaying())
}
