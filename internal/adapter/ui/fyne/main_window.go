package fyne

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/xampmusic/xamp-player/internal/domain"
	"github.com/xampmusic/xamp-player/internal/ports"
	"github.com/xampmusic/xamp-player/internal/service"
)

const (
	defaultWidth  = 720
	defaultHeight = 560
	volumeStep    = 0.05
	fetchTimeout  = 15 * time.Second
)

// Store is the full playback store surface the window uses.
type Store interface {
	PlayerController
	PlayTrack(track domain.Track)
}

// MainWindowConfig holds the window dependencies.
type MainWindowConfig struct {
	Logger      *slog.Logger
	Title       string
	Store       Store
	Bus         ports.FilteringEventBus
	Catalog     *service.CatalogService
	Resolver    ports.TrackResolver
	AutoAdvance bool
}

// MainWindow hosts the track lists, the player surface and the floating
// shortcut. Track lists come and go; the player surface and shortcut live as
// long as the window.
type MainWindow struct {
	config MainWindowConfig
	logger *slog.Logger
	app    fyneapp.App
	window fyneapp.Window

	// Surfaces
	presenter *Presenter
	surface   *PlayerSurface
	shortcut  *FloatingShortcut

	// Song grid
	songsView  *TrackListWidget
	songs      *trackListBinding
	page       int
	total      int
	pageLabel  *widget.Label
	prevButton *widget.Button
	nextButton *widget.Button

	// Artist / post lookup
	lookupView  *TrackListWidget
	lookup      *trackListBinding
	lookupKind  *widget.Select
	lookupEntry *widget.Entry

	// List that started the current track; only it auto-advances
	active *service.ActiveList

	// Lifecycle management
	closeOnce     sync.Once
	onBeforeClose func()
}

// trackListBinding pairs a service list with its presenter.
type trackListBinding struct {
	list      *service.TrackList
	presenter *TrackListPresenter
}

func (b *trackListBinding) close() {
	if b == nil {
		return
	}
	b.presenter.Shutdown()
	b.list.Close()
}

// NewMainWindow creates the window and wires the surfaces to the store.
func NewMainWindow(app fyneapp.App, config MainWindowConfig) *MainWindow {
	w := &MainWindow{
		config: config,
		logger: config.Logger,
		app:    app,
		page:   1,
		active: service.NewActiveList(),
	}

	w.window = app.NewWindow(config.Title)

	w.surface = NewPlayerSurface(w.logger.With(slog.String("view", "surface")), fyneapp.Do)
	w.shortcut = NewFloatingShortcut()
	w.presenter = NewPresenter(
		w.logger.With(slog.String("component", "presenter")),
		config.Store, config.Bus, w.surface, w.shortcut, fyneapp.Do)
	w.surface.Bind(w.presenter)
	w.shortcut.Bind(w.presenter)

	w.buildUI()
	w.addShortcuts()

	w.window.Resize(fyneapp.NewSize(defaultWidth, defaultHeight))
	w.window.SetOnClosed(w.shutdown)

	return w
}

// buildUI constructs the UI components.
func (w *MainWindow) buildUI() {
	// Song grid tab
	w.songsView = NewTrackListWidget()
	w.pageLabel = widget.NewLabel("")
	w.prevButton = widget.NewButton("Previous", func() { w.loadSongs(w.page - 1) })
	w.nextButton = widget.NewButton("Next", func() { w.loadSongs(w.page + 1) })
	w.prevButton.Disable()
	w.nextButton.Disable()
	pager := container.NewHBox(w.prevButton, w.pageLabel, w.nextButton)
	songsTab := container.NewBorder(nil, pager, nil, nil, w.songsView.Object())

	// Lookup tab
	w.lookupView = NewTrackListWidget()
	w.lookupKind = widget.NewSelect([]string{"Artist", "Post"}, nil)
	w.lookupKind.SetSelected("Artist")
	w.lookupEntry = widget.NewEntry()
	w.lookupEntry.SetPlaceHolder("slug")
	w.lookupEntry.OnSubmitted = func(string) { w.loadLookup() }
	lookupBar := container.NewBorder(nil, nil, w.lookupKind,
		widget.NewButton("Load", w.loadLookup), w.lookupEntry)
	lookupTab := container.NewBorder(lookupBar, nil, nil, nil, w.lookupView.Object())

	tabs := container.NewAppTabs(
		container.NewTabItem("Songs", songsTab),
		container.NewTabItem("Lookup", lookupTab),
	)

	content := container.NewBorder(nil, w.surface.Object(), nil, nil, tabs)
	w.window.SetContent(container.NewStack(container.NewPadded(content), w.shortcut.Object()))
	w.window.SetMainMenu(fyneapp.NewMainMenu(w.createMenu()...))
}

// createMenu creates the application menu.
func (w *MainWindow) createMenu() []*fyneapp.Menu {
	openFile := fyneapp.NewMenuItem("Open File", func() {
		NewFileDialog(w.window, w.openLocator, w.logger).Show()
	})
	openURL := fyneapp.NewMenuItem("Open URL", func() {
		NewURLDialog(w.window, w.openLocator).Show()
	})
	showPlayer := fyneapp.NewMenuItem("Show Player", w.presenter.OnOpenTapped)
	hidePlayer := fyneapp.NewMenuItem("Hide Player", w.presenter.OnCloseTapped)

	return []*fyneapp.Menu{
		fyneapp.NewMenu("File", openFile, openURL),
		fyneapp.NewMenu("View", showPlayer, hidePlayer),
	}
}

// addShortcuts adds keyboard shortcuts.
func (w *MainWindow) addShortcuts() {
	canvas := w.window.Canvas()

	canvas.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyUp,
		Modifier: fyneapp.KeyModifierAlt,
	}, func(fyneapp.Shortcut) {
		w.config.Store.SetVolume(w.config.Store.State().Volume + volumeStep)
	})

	canvas.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyDown,
		Modifier: fyneapp.KeyModifierAlt,
	}, func(fyneapp.Shortcut) {
		w.config.Store.SetVolume(w.config.Store.State().Volume - volumeStep)
	})

	canvas.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyP,
		Modifier: fyneapp.KeyModifierAlt,
	}, func(fyneapp.Shortcut) {
		w.presenter.OnPlayPauseTapped()
	})
}

// openLocator resolves a file path or URL and plays it.
func (w *MainWindow) openLocator(locator string) {
	if w.config.Resolver == nil {
		return
	}
	track, err := w.config.Resolver.Resolve(locator)
	if err != nil {
		w.showError(fmt.Errorf("failed to open %s: %w", locator, err))
		return
	}
	w.config.Store.PlayTrack(track)
}

// loadSongs fetches a page of the catalog in the background.
func (w *MainWindow) loadSongs(page int) {
	if w.config.Catalog == nil {
		return
	}
	if page < 1 {
		page = 1
	}

	w.prevButton.Disable()
	w.nextButton.Disable()
	w.pageLabel.SetText("Loading...")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		list, total, err := w.config.Catalog.SongGrid(ctx, page)
		fyneapp.Do(func() {
			if err != nil {
				w.pageLabel.SetText("")
				w.updatePager()
				w.showError(err)
				return
			}
			w.page = page
			w.total = total
			w.songs.close()
			w.songs = w.bindList(list, w.songsView)
			w.updatePager()
		})
	}()
}

func (w *MainWindow) updatePager() {
	pages := 1
	if size := w.config.Catalog.PageSize(); size > 0 && w.total > 0 {
		pages = (w.total + size - 1) / size
	}
	w.pageLabel.SetText(fmt.Sprintf("Page %d of %d", w.page, pages))

	if w.page > 1 {
		w.prevButton.Enable()
	}
	if w.page < pages {
		w.nextButton.Enable()
	}
}

// loadLookup fetches an artist's top tracks or a post's tracklist.
func (w *MainWindow) loadLookup() {
	slug := strings.TrimSpace(w.lookupEntry.Text)
	if slug == "" || w.config.Catalog == nil {
		return
	}
	kind := w.lookupKind.Selected

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		var (
			list *service.TrackList
			err  error
		)
		if kind == "Post" {
			list, err = w.config.Catalog.PostTracklist(ctx, slug)
		} else {
			list, err = w.config.Catalog.ArtistTopTracks(ctx, slug)
		}

		fyneapp.Do(func() {
			if err != nil {
				w.showError(err)
				return
			}
			w.lookup.close()
			w.lookup = w.bindList(list, w.lookupView)
		})
	}()
}

func (w *MainWindow) bindList(list *service.TrackList, view *TrackListWidget) *trackListBinding {
	if w.config.AutoAdvance {
		list.EnableAutoAdvance(w.config.Bus, w.active)
	}

	presenter := NewTrackListPresenter(
		w.logger.With(slog.String("list", list.Name())),
		list, view, w.config.Bus, w.config.Store.State(), fyneapp.Do)
	presenter.SetOnError(w.showError)
	view.SetOnTrackTapped(presenter.OnTrackTapped)

	return &trackListBinding{list: list, presenter: presenter}
}

func (w *MainWindow) showError(err error) {
	w.logger.Warn("ui error", slog.Any("error", err))
	dialog.ShowError(err, w.window)
}

// SetOnBeforeClose sets a callback that runs before the window closes.
func (w *MainWindow) SetOnBeforeClose(callback func()) {
	w.onBeforeClose = callback
}

// ShowAndRun shows the window, loads the first catalog page and runs the
// application. Blocks until the window is closed.
func (w *MainWindow) ShowAndRun() {
	w.loadSongs(1)
	w.window.ShowAndRun()
}

func (w *MainWindow) shutdown() {
	w.closeOnce.Do(func() {
		if w.onBeforeClose != nil {
			w.onBeforeClose()
		}
		w.songs.close()
		w.lookup.close()
		w.presenter.Shutdown()
	})
}

// Close closes the window.
// It's safe to call multiple times (idempotent).
func (w *MainWindow) Close() {
	w.shutdown()
	w.window.Close()
}

// GetWindow returns the underlying Fyne window.
func (w *MainWindow) GetWindow() fyneapp.Window {
	return w.window
}
