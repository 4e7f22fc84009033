package app

import (
	"io"
	"runtime/debug"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xampmusic/xamp-player/internal/adapter/media/mock"
	"github.com/xampmusic/xamp-player/internal/config"
	"github.com/xampmusic/xamp-player/internal/domain"
	"github.com/xampmusic/xamp-player/internal/ports"
	"github.com/xampmusic/xamp-player/internal/testutil"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Player.MockAudio = true
	cfg.Player.ProgressInterval = 10 * time.Millisecond
	cfg.Player.MockDuration = time.Minute
	cfg.MPRIS.Enabled = false
	return cfg
}

func TestNewApplication_Headless(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	app, err := NewApplication(testConfig(), Options{Headless: true, LogOutput: io.Discard})
	require.NoError(t, err)
	require.NotNil(t, app)

	assert.NotNil(t, app.Store())
	assert.NotNil(t, app.Catalog())
	assert.NotNil(t, app.Resolver())
	assert.NotNil(t, app.EventBus())
	assert.Equal(t, 1.0, app.Store().State().Volume)

	assert.Error(t, app.Run(), "headless applications have no window")
	assert.NoError(t, app.Shutdown())
}

func TestNewApplication_InitialVolume(t *testing.T) {
	cfg := testConfig()
	volume := 0.4
	cfg.Player.InitialVolume = &volume

	app, err := NewApplication(cfg, Options{Headless: true, LogOutput: io.Discard})
	require.NoError(t, err)
	defer app.Shutdown()

	assert.InDelta(t, 0.4, app.Store().State().Volume, 1e-9)
}

func TestApplication_PlaysThroughMockElement(t *testing.T) {
	app, err := NewApplication(testConfig(), Options{Headless: true, LogOutput: io.Discard})
	require.NoError(t, err)
	defer app.Shutdown()

	store := app.Store()
	store.PlayTrack(domain.Track{ID: "t1", Title: "Song", AudioURL: "https://cdn.example/1.mp3"})

	require.Eventually(t, func() bool { return store.State().IsPlaying }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return store.State().Duration == 60 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return store.State().CurrentTime > 0 }, time.Second, 5*time.Millisecond)

	store.TogglePlay()
	assert.False(t, store.State().IsPlaying)
	assert.Equal(t, domain.PhasePaused, store.State().Phase)
}

func TestApplication_ElementFactoryOverride(t *testing.T) {
	el := mock.NewElement()
	factory := func(ports.MediaElementConfig) (ports.MediaElement, error) { return el, nil }

	app, err := NewApplication(testConfig(), Options{Headless: true, LogOutput: io.Discard, ElementFactory: factory})
	require.NoError(t, err)

	app.Store().PlayTrack(domain.Track{ID: "t1", AudioURL: "1.mp3"})
	require.Eventually(t, el.IsPlaying, time.Second, 5*time.Millisecond)

	require.NoError(t, app.Shutdown())
	assert.True(t, el.IsClosed(), "shutdown closes the attached element")
}

func TestApplicationLifecycle(t *testing.T) {
	testApp := test.NewApp()
	defer testApp.Quit()

	app, err := NewApplication(testConfig(), Options{TestFyneApp: testApp, LogOutput: io.Discard})
	require.NoError(t, err)

	// Run would normally block, but we're not calling it in test

	assert.NoError(t, app.Shutdown())

	// Shutdown again should not panic
	assert.NoError(t, app.Shutdown())
}

func TestVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	assert.Contains(t, info.FullString(), "XAMP Player dev")

	stamped := VersionInfo{Version: "dev"}.withBuildInfo(&debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.3"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	})
	assert.Equal(t, "XAMP Player v1.2.3 (commit: 0123456-dirty, built: 2026-10-01T12:00:00Z)", stamped.FullString())

	// ldflags values win over the VCS stamp.
	pinned := VersionInfo{Version: "v2.0.0", Commit: "abc", BuildTime: "today"}.withBuildInfo(&debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffffffffff"}},
	})
	assert.Equal(t, "XAMP Player v2.0.0 (commit: abc, built: today)", pinned.FullString())
}
