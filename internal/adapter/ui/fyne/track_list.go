package fyne

import (
	"errors"
	"log/slog"
	"strings"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/xampmusic/xamp-player/internal/adapter/ui/fyne/widgets"
	"github.com/xampmusic/xamp-player/internal/domain"
	"github.com/xampmusic/xamp-player/internal/ports"
	"github.com/xampmusic/xamp-player/internal/service"
)

// TrackListWidget renders a track list with a search filter.
// Each row triggers its track; the current track is marked.
type TrackListWidget struct {
	root        *fyneapp.Container
	list        *widget.List
	searchEntry *widget.Entry

	// Data state
	tracks   []domain.Track // Full list
	visible  []int          // Indexes into tracks shown in the list
	query    string
	active   int
	playing  bool
	onTapped func(index int)
}

// NewTrackListWidget creates an empty track list view.
func NewTrackListWidget() *TrackListWidget {
	w := &TrackListWidget{active: -1}
	w.buildUI()
	return w
}

// buildUI constructs the track list layout.
func (w *TrackListWidget) buildUI() {
	w.searchEntry = widget.NewEntry()
	w.searchEntry.SetPlaceHolder("Search...")
	w.searchEntry.OnChanged = w.filter

	w.list = widget.NewList(
		func() int {
			return len(w.visible)
		},
		func() fyneapp.CanvasObject {
			return widgets.NewTrackRow(w.rowTapped)
		},
		func(i widget.ListItemID, obj fyneapp.CanvasObject) {
			w.updateRow(i, obj)
		},
	)

	w.root = container.NewBorder(w.searchEntry, nil, nil, nil, w.list)
}

// SetOnTrackTapped sets the callback receiving the track index (in the full list).
func (w *TrackListWidget) SetOnTrackTapped(f func(index int)) {
	w.onTapped = f
}

// Object returns the canvas object to place in a layout.
func (w *TrackListWidget) Object() fyneapp.CanvasObject {
	return w.root
}

func (w *TrackListWidget) rowTapped(index int) {
	if w.onTapped != nil {
		w.onTapped(index)
	}
}

func (w *TrackListWidget) updateRow(i widget.ListItemID, obj fyneapp.CanvasObject) {
	row, ok := obj.(*widgets.TrackRow)
	if !ok || i < 0 || i >= len(w.visible) {
		return
	}

	index := w.visible[i]
	state := widgets.RowIdle
	if index == w.active {
		state = widgets.RowPaused
		if w.playing {
			state = widgets.RowPlaying
		}
	}
	row.Update(index, caption(w.tracks[index]), state)
}

// filter narrows the rows to tracks whose caption contains the query.
func (w *TrackListWidget) filter(query string) {
	w.query = strings.ToLower(strings.TrimSpace(query))
	w.visible = w.visible[:0]
	for i, t := range w.tracks {
		if w.query == "" || strings.Contains(strings.ToLower(caption(t)), w.query) {
			w.visible = append(w.visible, i)
		}
	}
	w.list.Refresh()
}

// VisibleCount returns the number of rows after filtering.
func (w *TrackListWidget) VisibleCount() int {
	return len(w.visible)
}

// TrackListView interface implementation

// SetTracks replaces the rendered rows.
func (w *TrackListWidget) SetTracks(tracks []domain.Track) {
	w.tracks = tracks
	w.filter(w.query)
}

// SetActive marks the current track row.
func (w *TrackListWidget) SetActive(index int, playing bool) {
	if w.active == index && w.playing == playing {
		return
	}
	w.active = index
	w.playing = playing
	w.list.Refresh()
}

// Verify TrackListView implementation
var _ ports.TrackListView = (*TrackListWidget)(nil)

// TrackListPresenter keeps a TrackListView in sync with a service.TrackList
// and forwards row taps as triggers.
type TrackListPresenter struct {
	logger   *slog.Logger
	list     *service.TrackList
	view     ports.TrackListView
	bus      ports.FilteringEventBus
	dispatch func(f func())
	onError  func(err error)

	subID domain.SubscriptionID
}

// NewTrackListPresenter renders the list and starts following the store.
func NewTrackListPresenter(
	logger *slog.Logger,
	list *service.TrackList,
	view ports.TrackListView,
	bus ports.FilteringEventBus,
	state domain.PlaybackState,
	dispatch func(f func()),
) *TrackListPresenter {
	if dispatch == nil {
		dispatch = func(f func()) { f() }
	}

	p := &TrackListPresenter{
		logger:   logger,
		list:     list,
		view:     view,
		bus:      bus,
		dispatch: dispatch,
	}

	p.subID = bus.SubscribeFiltered(domain.EventStateChanged,
		ports.ChangedFields(domain.FieldTrack|domain.FieldPlaying),
		p.onStateChanged)

	tracks := list.Tracks()
	p.dispatch(func() {
		p.view.SetTracks(tracks)
		p.view.SetActive(activeIndex(tracks, state), state.IsPlaying)
	})
	return p
}

// SetOnError sets the callback for trigger failures.
func (p *TrackListPresenter) SetOnError(f func(err error)) {
	p.onError = f
}

func (p *TrackListPresenter) onStateChanged(event domain.Event) {
	e, ok := event.(domain.StateChangedEvent)
	if !ok {
		return
	}
	index := activeIndex(p.list.Tracks(), e.State)
	playing := e.State.IsPlaying
	p.dispatch(func() { p.view.SetActive(index, playing) })
}

// OnTrackTapped triggers the track at index.
func (p *TrackListPresenter) OnTrackTapped(index int) {
	if err := p.list.Trigger(index); err != nil {
		p.logger.Warn("track trigger failed",
			slog.String("list", p.list.Name()),
			slog.Int("index", index),
			slog.Any("error", err))
		if p.onError != nil && !errors.Is(err, domain.ErrInvalidIndex) {
			p.onError(err)
		}
	}
}

// Shutdown stops following the store.
func (p *TrackListPresenter) Shutdown() {
	p.bus.Unsubscribe(p.subID)
}

func activeIndex(tracks []domain.Track, state domain.PlaybackState) int {
	for i, t := range tracks {
		if state.IsCurrent(t.ID) {
			return i
		}
	}
	return -1
}
