package app

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xampmusic/xamp-player/internal/domain"
)

func TestPlayLocators_PlaysToTheEnd(t *testing.T) {
	cfg := testConfig()
	cfg.Player.MockDuration = 50 * time.Millisecond

	app, err := NewApplication(cfg, Options{Headless: true, LogOutput: io.Discard})
	require.NoError(t, err)
	defer app.Shutdown()

	var (
		mu     sync.Mutex
		loaded []string
	)
	app.EventBus().Subscribe(domain.EventTrackLoaded, func(event domain.Event) {
		mu.Lock()
		defer mu.Unlock()
		loaded = append(loaded, event.(domain.TrackLoadedEvent).Track.Title)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = app.PlayLocators(ctx, []string{
		"https://cdn.example/first.mp3",
		"https://cdn.example/second.ogg",
	})
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, []string{"first", "second"}, loaded)
	mu.Unlock()
	assert.Equal(t, domain.PhaseEnded, app.Store().State().Phase)
}

func TestPlayLocators_Errors(t *testing.T) {
	app, err := NewApplication(testConfig(), Options{Headless: true, LogOutput: io.Discard})
	require.NoError(t, err)
	defer app.Shutdown()

	assert.ErrorIs(t, app.PlayLocators(context.Background(), nil), domain.ErrNoTrackLoaded)
	assert.Error(t, app.PlayLocators(context.Background(), []string{"/does/not/exist.mp3"}))
}

func TestPlayLocators_CanceledContextPauses(t *testing.T) {
	app, err := NewApplication(testConfig(), Options{Headless: true, LogOutput: io.Discard})
	require.NoError(t, err)
	defer app.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		deadline := time.Now().Add(time.Second)
		for !app.Store().State().IsPlaying && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		cancel()
	}()

	err = app.PlayLocators(ctx, []string{"https://cdn.example/long.mp3"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, app.Store().State().IsPlaying)
}

func TestPrintSongs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"songs":[{"id":"7","title":"Night Drive","artist":"Xamp","streamUrl":"/media/7.mp3"}],"total":41}`))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Content.BaseURL = server.URL + "/api"

	app, err := NewApplication(cfg, Options{Headless: true, LogOutput: io.Discard})
	require.NoError(t, err)
	defer app.Shutdown()

	var out bytes.Buffer
	require.NoError(t, app.PrintSongs(context.Background(), &out, 2))

	assert.Contains(t, out.String(), "Night Drive")
	assert.Contains(t, out.String(), "Xamp")
	assert.Contains(t, out.String(), "1 of 41 songs (page 2)")
}
