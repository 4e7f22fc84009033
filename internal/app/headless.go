package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/xampmusic/xamp-player/internal/domain"
	"github.com/xampmusic/xamp-player/internal/service"
)

// PlayLocators resolves each locator and plays them in order without a
// window. It returns when the last track ends, when a track fails, or when
// ctx is done.
func (a *Application) PlayLocators(ctx context.Context, locators []string) error {
	tracks := make([]domain.Track, 0, len(locators))
	for _, loc := range locators {
		track, err := a.resolver.Resolve(loc)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", loc, err)
		}
		tracks = append(tracks, track)
	}
	if len(tracks) == 0 {
		return domain.ErrNoTrackLoaded
	}

	list := service.NewTrackList(a.logger.With(slog.String("service", "cli")), a.store, "cli", tracks)
	list.EnableAutoAdvance(a.eventBus, nil)
	defer list.Close()

	last := tracks[len(tracks)-1].ID
	done := make(chan error, 1)
	finish := func(err error) {
		select {
		case done <- err:
		default:
		}
	}

	endedSub := a.eventBus.Subscribe(domain.EventTrackEnded, func(event domain.Event) {
		if e, ok := event.(domain.TrackEndedEvent); ok && e.Track.ID == last {
			finish(nil)
		}
	})
	defer a.eventBus.Unsubscribe(endedSub)

	failedSub := a.eventBus.Subscribe(domain.EventPlaybackFailed, func(event domain.Event) {
		if e, ok := event.(domain.PlaybackFailedEvent); ok {
			finish(fmt.Errorf("playback of %s failed: %w", e.Track.DisplayName(), e.Error))
		}
	})
	defer a.eventBus.Unsubscribe(failedSub)

	loadedSub := a.eventBus.Subscribe(domain.EventTrackLoaded, func(event domain.Event) {
		if e, ok := event.(domain.TrackLoadedEvent); ok {
			a.logger.Info("now playing", slog.String("track", e.Track.DisplayName()))
		}
	})
	defer a.eventBus.Unsubscribe(loadedSub)

	if err := list.Trigger(0); err != nil {
		return err
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		a.store.Pause()
		return ctx.Err()
	}
}

// PrintSongs writes one catalog page as a table.
func (a *Application) PrintSongs(ctx context.Context, w io.Writer, page int) error {
	list, total, err := a.catalog.SongGrid(ctx, page)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tARTIST\tTITLE")
	for _, t := range list.Tracks() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Artist, t.Title)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "\n%d of %d songs (page %d)\n", list.Len(), total, max(page, 1))
	return err
}
