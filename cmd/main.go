// Package main is the entry point for XAMP Player.
//
// Build:
//
//	go build -o build/xamp-player ./cmd
//
// Run:
//
//	./build/xamp-player                        # desktop player
//	./build/xamp-player play song.mp3 b.ogg    # headless playback
//	./build/xamp-player songs --page 2         # list the catalog
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	"github.com/xampmusic/xamp-player/internal/app"
	"github.com/xampmusic/xamp-player/internal/config"
)

func main() {
	_ = godotenv.Load()

	cli := kingpin.New("xamp-player", "Global audio player for the XAMP music catalog.")
	cli.Version(app.GetVersionInfo().FullString())

	configPath := cli.Flag("config", "Path to a YAML config file.").Envar("XAMP_CONFIG").String()
	verbose := cli.Flag("verbose", "Enable debug logging.").Short('v').Bool()
	mockAudio := cli.Flag("mock-audio", "Use a silent in-memory media element.").Bool()

	uiCmd := cli.Command("ui", "Open the desktop player.").Default()

	playCmd := cli.Command("play", "Play files or URLs in order without a window.")
	locators := playCmd.Arg("locators", "Local paths or http(s) URLs.").Required().Strings()

	songsCmd := cli.Command("songs", "Print one page of the song catalog.")
	page := songsCmd.Flag("page", "Catalog page.").Default("1").Int()

	command := kingpin.MustParse(cli.Parse(os.Args[1:]))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *mockAudio {
		cfg.Player.MockAudio = true
	}

	switch command {
	case uiCmd.FullCommand():
		err = runUI(cfg)
	case playCmd.FullCommand():
		err = runPlay(cfg, *locators)
	case songsCmd.FullCommand():
		err = runSongs(cfg, *page)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runUI(cfg *config.Config) error {
	application, err := app.NewApplication(cfg, app.Options{})
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	defer func() {
		if err := application.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
	}()

	// Blocks until the window is closed
	return application.Run()
}

func runPlay(cfg *config.Config, locators []string) error {
	application, err := app.NewApplication(cfg, app.Options{Headless: true})
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer application.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.PlayLocators(ctx, locators); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func runSongs(cfg *config.Config, page int) error {
	application, err := app.NewApplication(cfg, app.Options{Headless: true, DisableMPRIS: true})
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer application.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Content.Timeout+5*time.Second)
	defer cancel()

	return application.PrintSongs(ctx, os.Stdout, page)
}
