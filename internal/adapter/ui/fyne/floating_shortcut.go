package fyne

import (
	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/xampmusic/xamp-player/internal/adapter/ui/fyne/widgets"
	"github.com/xampmusic/xamp-player/internal/ports"
)

// FloatingShortcut is the minimized control shown while the player bar is
// hidden and a track is loaded. Tapping its body reopens the bar.
type FloatingShortcut struct {
	root       *fyneapp.Container
	body       *widgets.TappableStack
	playButton *widget.Button
	openButton *widget.Button
}

// NewFloatingShortcut builds the shortcut, anchored to the bottom-right corner.
func NewFloatingShortcut() *FloatingShortcut {
	f := &FloatingShortcut{}

	f.playButton = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), nil)
	f.openButton = widget.NewButtonWithIcon("", theme.MediaMusicIcon(), nil)
	f.openButton.Importance = widget.HighImportance

	f.body = widgets.NewTappableStack(container.NewHBox(f.openButton, f.playButton), nil, nil)

	f.root = container.NewVBox(
		layout.NewSpacer(),
		container.NewHBox(layout.NewSpacer(), f.body),
	)
	f.root.Hide()
	return f
}

// Bind forwards gestures to the presenter. Opening never touches playback.
func (f *FloatingShortcut) Bind(p *Presenter) {
	f.playButton.OnTapped = p.OnPlayPauseTapped
	f.openButton.OnTapped = p.OnOpenTapped
	f.body.SetOnTapped(func(*fyneapp.PointEvent) { p.OnOpenTapped() })
	f.body.SetOnSecondaryTapped(func(*fyneapp.PointEvent) { p.OnPlayPauseTapped() })
}

// Object returns the overlay to stack above the main content.
func (f *FloatingShortcut) Object() fyneapp.CanvasObject {
	return f.root
}

// SetVisible shows or hides the shortcut.
func (f *FloatingShortcut) SetVisible(visible bool) {
	if visible {
		f.root.Show()
	} else {
		f.root.Hide()
	}
}

// SetPlayState switches the play/pause button.
func (f *FloatingShortcut) SetPlayState(playing bool) {
	if playing {
		f.playButton.SetIcon(theme.MediaPauseIcon())
	} else {
		f.playButton.SetIcon(theme.MediaPlayIcon())
	}
}

// Verify ShortcutView implementation
var _ ports.ShortcutView = (*FloatingShortcut)(nil)
