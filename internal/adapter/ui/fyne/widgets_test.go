package fyne

import (
	"encoding/base64"
	"testing"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xampmusic/xamp-player/internal/adapter/eventbus"
	"github.com/xampmusic/xamp-player/internal/adapter/ui/fyne/widgets"
	"github.com/xampmusic/xamp-player/internal/domain"
	"github.com/xampmusic/xamp-player/internal/logger"
	"github.com/xampmusic/xamp-player/internal/service"
)

func syncDispatch(f func()) { f() }

func TestPlayerSurface_Rendering(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	s := NewPlayerSurface(logger.NewTestLogger(), syncDispatch)
	assert.False(t, s.Object().Visible(), "hidden until the store opens it")

	s.SetVisible(true)
	assert.True(t, s.Object().Visible())

	s.SetTrackInfo(domain.Track{ID: "1", Title: "Song", Artist: "Band"})
	assert.Equal(t, "Song", s.title.Text)
	assert.Equal(t, "Band", s.artist.Text)

	s.SetTimes(65, 200)
	assert.Equal(t, "1:05", s.currentTime.Text)
	assert.Equal(t, "3:20", s.endTime.Text)

	s.SetProgress(40)
	assert.Equal(t, 40.0, s.progressSlider.Value)

	s.SetVolume(0.25)
	assert.Equal(t, 0.25, s.volumeSlider.Value)

	s.SetPlayState(true)
	assert.Equal(t, theme.MediaPauseIcon().Name(), s.playButton.Icon.Name())
	s.SetMuteState(true)
	assert.Equal(t, theme.VolumeMuteIcon().Name(), s.muteButton.Icon.Name())

	s.ClearTrackInfo()
	assert.Empty(t, s.title.Text)
}

func TestPlayerSurface_GesturesReachStore(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	store := &fakeStore{state: domain.NewPlaybackState()}
	bus := eventbus.NewSyncEventBus()
	s := NewPlayerSurface(logger.NewTestLogger(), syncDispatch)
	shortcut := NewFloatingShortcut()
	p := NewPresenter(logger.NewTestLogger(), store, bus, s, shortcut, syncDispatch)
	defer p.Shutdown()
	s.Bind(p)
	shortcut.Bind(p)

	test.Tap(s.playButton)
	test.Tap(s.muteButton)
	test.Tap(s.closeButton)
	test.Tap(shortcut.openButton)
	test.Tap(shortcut.playButton)
	test.Tap(shortcut.body)

	assert.Equal(t, []string{"toggle", "mute", "close", "open", "toggle", "open"}, store.calls)
}

func TestFloatingShortcut_Visibility(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	f := NewFloatingShortcut()
	assert.False(t, f.Object().Visible())

	f.SetVisible(true)
	assert.True(t, f.Object().Visible())

	f.SetPlayState(true)
	assert.Equal(t, theme.MediaPauseIcon().Name(), f.playButton.Icon.Name())
}

func TestLoadCover(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	res, err := loadCover("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
	require.NoError(t, err)
	assert.Equal(t, png, res.Content())

	_, err = loadCover("relative/cover.jpg")
	assert.Error(t, err)
}

var sampleTracks = []domain.Track{
	{ID: "a", Title: "Alpha", Artist: "Band", AudioURL: "a.mp3"},
	{ID: "b", Title: "Bravo", Artist: "Other", AudioURL: "b.mp3"},
	{ID: "c", Title: "Charlie", Artist: "Band", AudioURL: "c.mp3"},
}

func TestTrackListWidget_FilterAndRows(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	w := NewTrackListWidget()
	w.SetTracks(sampleTracks)
	assert.Equal(t, 3, w.VisibleCount())

	w.searchEntry.SetText("band")
	assert.Equal(t, 2, w.VisibleCount())

	var tapped []int
	w.SetOnTrackTapped(func(i int) { tapped = append(tapped, i) })
	w.SetActive(2, true)

	row := widgets.NewTrackRow(w.rowTapped)
	w.updateRow(1, row)
	assert.Equal(t, 2, row.Index(), "filtered row maps to the full list")
	assert.Equal(t, "▶ Band - Charlie", row.Text)

	test.Tap(row)
	assert.Equal(t, []int{2}, tapped)

	w.SetActive(2, false)
	w.updateRow(1, row)
	assert.Equal(t, "❚❚ Band - Charlie", row.Text)

	w.searchEntry.SetText("")
	w.updateRow(0, row)
	assert.Equal(t, "Band - Alpha", row.Text)
}

type fakeView struct {
	tracks  []domain.Track
	active  int
	playing bool
}

func (v *fakeView) SetTracks(tracks []domain.Track) { v.tracks = tracks }

func (v *fakeView) SetActive(index int, playing bool) {
	v.active = index
	v.playing = playing
}

type fakePlayer struct {
	state  domain.PlaybackState
	played []domain.Track
}

func (f *fakePlayer) PlayTrack(t domain.Track) { f.played = append(f.played, t) }
func (f *fakePlayer) State() domain.PlaybackState { return f.state }

func TestTrackListPresenter_FollowsStore(t *testing.T) {
	bus := eventbus.NewSyncEventBus()
	player := &fakePlayer{state: domain.NewPlaybackState()}
	list := service.NewTrackList(logger.NewTestLogger(), player, "songs", sampleTracks)
	view := &fakeView{}

	p := NewTrackListPresenter(logger.NewTestLogger(), list, view, bus, player.State(), nil)
	defer p.Shutdown()

	assert.Len(t, view.tracks, 3)
	assert.Equal(t, -1, view.active)

	p.OnTrackTapped(1)
	require.Len(t, player.played, 1)
	assert.Equal(t, "b", player.played[0].ID)

	state := domain.NewPlaybackState()
	state.CurrentTrack = &sampleTracks[1]
	state.IsPlaying = true
	bus.Publish(domain.NewStateChangedEvent(state, domain.FieldTrack|domain.FieldPlaying))
	assert.Equal(t, 1, view.active)
	assert.True(t, view.playing)

	// Time-only snapshots do not reach the list
	view.active = 99
	bus.Publish(domain.NewStateChangedEvent(state, domain.FieldTime))
	assert.Equal(t, 99, view.active)

	var reported []error
	p.SetOnError(func(err error) { reported = append(reported, err) })
	p.OnTrackTapped(10)
	assert.Empty(t, reported, "out-of-range taps are only logged")
}
