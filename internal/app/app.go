// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"fmt"
	"io"
	"log/slog"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/xampmusic/xamp-player/internal/adapter/content"
	"github.com/xampmusic/xamp-player/internal/adapter/eventbus"
	ebitenmedia "github.com/xampmusic/xamp-player/internal/adapter/media/ebiten"
	mockmedia "github.com/xampmusic/xamp-player/internal/adapter/media/mock"
	"github.com/xampmusic/xamp-player/internal/adapter/metadata"
	"github.com/xampmusic/xamp-player/internal/adapter/mpris"
	fyneui "github.com/xampmusic/xamp-player/internal/adapter/ui/fyne"
	"github.com/xampmusic/xamp-player/internal/config"
	"github.com/xampmusic/xamp-player/internal/logger"
	"github.com/xampmusic/xamp-player/internal/media"
	"github.com/xampmusic/xamp-player/internal/ports"
	"github.com/xampmusic/xamp-player/internal/service"
)

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for main.go
type Application struct {
	// Core dependencies
	config  *config.Config
	logger  *slog.Logger
	fyneApp fyne.App

	// Infrastructure
	eventBus *eventbus.SyncEventBus
	binding  *media.Binding
	content  ports.ContentClient
	resolver *metadata.Resolver

	// Services
	store   *service.PlaybackStore
	catalog *service.CatalogService

	// Surfaces
	mpris      *mpris.Server
	mainWindow *fyneui.MainWindow
}

// Options tune how the application is built.
type Options struct {
	// Headless skips the Fyne window (CLI playback)
	Headless bool

	// LogOutput overrides the log destination (nil for stderr)
	LogOutput io.Writer

	// ElementFactory overrides the media backend chosen by config
	ElementFactory ports.MediaElementFactory

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App

	// DisableMPRIS skips the session bus even when config enables it
	DisableMPRIS bool
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(cfg *config.Config, opts Options) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	app := &Application{config: cfg}

	// Step 1: Create logger
	app.logger = logger.NewLogger(logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level, slog.LevelInfo),
		Format: cfg.Log.Format,
		Output: opts.LogOutput,
	})
	app.logger.Info("initializing application",
		slog.String("app_id", cfg.App.ID),
		slog.String("version", GetVersionInfo().FullString()))

	// Step 2: Create an event bus
	app.eventBus = eventbus.NewSyncEventBus()
	app.eventBus.SetLogger(app.logger.With(slog.String("component", "eventbus")))

	// Step 3: Create the binding and the playback store
	app.binding = media.NewBinding(app.logger.With(slog.String("component", "binding")))
	app.store = service.NewPlaybackStore(
		app.logger.With(slog.String("service", "playback")),
		app.binding,
		app.eventBus,
	)
	app.store.SetVolume(cfg.Player.Volume())

	// Step 4: Create and attach the media element
	factory := opts.ElementFactory
	if factory == nil {
		factory = app.elementFactory()
	}
	element, err := factory(ports.MediaElementConfig{
		SampleRate:     cfg.Player.SampleRate,
		UpdateInterval: cfg.Player.ProgressInterval,
		HTTPTimeout:    cfg.Player.HTTPTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create media element: %w", err)
	}
	if err := app.store.Attach(element); err != nil {
		_ = element.Close()
		return nil, fmt.Errorf("failed to attach media element: %w", err)
	}

	// Step 5: Create content sources
	app.content = content.NewClient(
		app.logger.With(slog.String("component", "content")),
		cfg.Content.BaseURL,
		cfg.Content.Timeout,
	)
	app.catalog = service.NewCatalogService(
		app.logger.With(slog.String("service", "catalog")),
		app.content,
		app.store,
		cfg.Content.PageSize,
	)
	app.resolver = metadata.NewResolver(app.logger.With(slog.String("component", "metadata")))

	// Step 6: Desktop media keys (non-fatal)
	if cfg.MPRIS.Enabled && !opts.DisableMPRIS {
		if err := app.startMPRIS(); err != nil {
			app.logger.Warn("MPRIS unavailable", slog.Any("error", err))
		}
	}

	if opts.Headless {
		return app, nil
	}

	// Step 7: Create UI
	if opts.TestFyneApp != nil {
		app.fyneApp = opts.TestFyneApp
	} else {
		app.fyneApp = fyneapp.NewWithID(cfg.App.ID)
	}

	app.mainWindow = fyneui.NewMainWindow(app.fyneApp, fyneui.MainWindowConfig{
		Logger:      app.logger.With(slog.String("component", "ui")),
		Title:       cfg.App.Name,
		Store:       app.store,
		Bus:         app.eventBus,
		Catalog:     app.catalog,
		Resolver:    app.resolver,
		AutoAdvance: cfg.Player.AutoAdvance,
	})

	return app, nil
}

func (a *Application) elementFactory() ports.MediaElementFactory {
	if a.config.Player.MockAudio {
		return mockmedia.NewElementFactory(
			a.logger.With(slog.String("element", "mock")),
			a.config.Player.MockDuration)
	}
	return ebitenmedia.NewElementFactory(a.logger.With(slog.String("element", "ebiten")))
}

func (a *Application) startMPRIS() error {
	conn, err := mpris.ConnectSessionBus()
	if err != nil {
		return err
	}

	server := mpris.NewServer(
		a.logger.With(slog.String("component", "mpris")),
		conn, a.store, a.eventBus, a.resolver,
		a.config.MPRIS.Name, a.config.App.Name)
	if err := server.Start(); err != nil {
		_ = server.Close()
		return err
	}

	a.mpris = server
	return nil
}

// Store returns the playback store.
func (a *Application) Store() *service.PlaybackStore {
	return a.store
}

// Catalog returns the content catalog service.
func (a *Application) Catalog() *service.CatalogService {
	return a.catalog
}

// Resolver returns the locator resolver.
func (a *Application) Resolver() ports.TrackResolver {
	return a.resolver
}

// EventBus returns the application event bus.
func (a *Application) EventBus() ports.FilteringEventBus {
	return a.eventBus
}

// Logger returns the root logger.
func (a *Application) Logger() *slog.Logger {
	return a.logger
}

// Run shows the main window and blocks until it is closed.
func (a *Application) Run() error {
	if a.mainWindow == nil {
		return fmt.Errorf("application was built headless")
	}

	a.logger.Info("xamp player started")
	a.mainWindow.ShowAndRun()
	return nil
}

// Shutdown gracefully shuts down the application.
// This should be called via deferring in main.go.
func (a *Application) Shutdown() error {
	a.logger.Info("shutting down application")

	// Shutdown UI and surfaces
	if a.mainWindow != nil {
		a.mainWindow.Close()
	}

	if a.mpris != nil {
		if err := a.mpris.Close(); err != nil {
			a.logger.Warn("failed to close MPRIS server", slog.Any("error", err))
		}
	}

	// Stopping the store closes the binding and its element
	var err error
	if a.store != nil {
		if err = a.store.Shutdown(); err != nil {
			a.logger.Warn("failed to shutdown playback store", slog.Any("error", err))
		}
	}

	if a.eventBus != nil {
		if cerr := a.eventBus.Close(); cerr != nil {
			a.logger.Debug("event bus already closed", slog.Any("error", cerr))
		}
	}

	a.logger.Info("application shutdown complete")
	return err
}
