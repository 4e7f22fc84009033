package fyne

import (
	"log/slog"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/xampmusic/xamp-player/internal/domain"
	"github.com/xampmusic/xamp-player/internal/ports"
)

// PlayerSurface is the persistent bottom player bar.
// It is a "dumb view": all decisions live in the Presenter.
type PlayerSurface struct {
	logger   *slog.Logger
	dispatch func(f func())

	// UI components
	root           *fyneapp.Container
	cover          *canvas.Image
	title          *widget.Label
	artist         *widget.Label
	playButton     *widget.Button
	muteButton     *widget.Button
	closeButton    *widget.Button
	currentTime    *widget.Label
	endTime        *widget.Label
	progressSlider *widget.Slider
	volumeSlider   *widget.Slider

	// cover reference currently shown or loading
	coverRef string
}

// NewPlayerSurface builds the bar. dispatch runs functions on the UI thread.
func NewPlayerSurface(logger *slog.Logger, dispatch func(f func())) *PlayerSurface {
	if dispatch == nil {
		dispatch = fyneapp.Do
	}

	s := &PlayerSurface{
		logger:   logger,
		dispatch: dispatch,
	}
	s.buildUI()
	return s
}

// buildUI constructs the UI components.
func (s *PlayerSurface) buildUI() {
	s.cover = canvas.NewImageFromResource(theme.MediaMusicIcon())
	s.cover.FillMode = canvas.ImageFillContain
	s.cover.SetMinSize(fyneapp.NewSize(56, 56))

	s.title = widget.NewLabel("")
	s.title.Truncation = fyneapp.TextTruncateEllipsis
	s.title.TextStyle = fyneapp.TextStyle{Bold: true}
	s.artist = widget.NewLabel("")
	s.artist.Truncation = fyneapp.TextTruncateEllipsis

	s.playButton = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), nil)
	s.muteButton = widget.NewButtonWithIcon("", theme.VolumeUpIcon(), nil)
	s.closeButton = widget.NewButtonWithIcon("", theme.CancelIcon(), nil)

	s.progressSlider = widget.NewSlider(0, 100)
	s.progressSlider.Step = 0.1
	s.currentTime = widget.NewLabel(FormatTime(0))
	s.endTime = widget.NewLabel(FormatTime(0))
	sliderHolder := container.NewBorder(nil, nil, s.currentTime, s.endTime, s.progressSlider)

	s.volumeSlider = widget.NewSlider(0, 1)
	s.volumeSlider.Step = 0.01
	s.volumeSlider.Value = 1
	volumeHolder := container.NewBorder(nil, nil, s.muteButton, nil, s.volumeSlider)

	info := container.NewBorder(nil, nil, s.cover, nil, container.NewVBox(s.title, s.artist))
	controls := container.NewBorder(nil, nil, s.playButton, container.NewHBox(container.NewGridWrap(fyneapp.NewSize(140, 36), volumeHolder), s.closeButton), sliderHolder)

	s.root = container.NewVBox(widget.NewSeparator(), info, controls)
	s.root.Hide()
}

// Bind forwards gestures to the presenter.
func (s *PlayerSurface) Bind(p *Presenter) {
	s.playButton.OnTapped = p.OnPlayPauseTapped
	s.muteButton.OnTapped = p.OnMuteTapped
	s.closeButton.OnTapped = p.OnCloseTapped

	s.progressSlider.OnChanged = func(float64) {
		p.OnSeekStarted()
	}
	s.progressSlider.OnChangeEnded = p.OnSeekEnded
	s.volumeSlider.OnChanged = p.OnVolumeChanged
}

// Object returns the canvas object to place in a layout.
func (s *PlayerSurface) Object() fyneapp.CanvasObject {
	return s.root
}

// PlayerSurfaceView interface implementation

// SetVisible shows or hides the bar.
func (s *PlayerSurface) SetVisible(visible bool) {
	if visible {
		s.root.Show()
	} else {
		s.root.Hide()
	}
}

// SetTrackInfo updates title, artist and cover.
func (s *PlayerSurface) SetTrackInfo(track domain.Track) {
	title := track.Title
	if title == "" {
		title = caption(track)
	}
	s.title.SetText(title)
	s.artist.SetText(track.Artist)
	s.setCover(track.Cover)
}

// ClearTrackInfo resets the track display.
func (s *PlayerSurface) ClearTrackInfo() {
	s.title.SetText("")
	s.artist.SetText("")
	s.setCover("")
}

func (s *PlayerSurface) setCover(ref string) {
	if ref == s.coverRef {
		return
	}
	s.coverRef = ref
	s.cover.Resource = theme.MediaMusicIcon()
	s.cover.Image = nil
	s.cover.Refresh()

	if ref == "" {
		return
	}

	go func() {
		res, err := loadCover(ref)
		if err != nil {
			s.logger.Debug("failed to load cover", slog.String("cover", ref), slog.Any("error", err))
			return
		}
		s.dispatch(func() {
			if s.coverRef != ref {
				return
			}
			s.cover.Resource = res
			s.cover.Refresh()
		})
	}()
}

// SetPlayState switches the play/pause button.
func (s *PlayerSurface) SetPlayState(playing bool) {
	if playing {
		s.playButton.SetIcon(theme.MediaPauseIcon())
	} else {
		s.playButton.SetIcon(theme.MediaPlayIcon())
	}
}

// SetTimes updates the time labels.
func (s *PlayerSurface) SetTimes(current, duration float64) {
	s.currentTime.SetText(FormatTime(current))
	s.endTime.SetText(FormatTime(duration))
}

// SetProgress moves the seek slider without firing its callbacks.
func (s *PlayerSurface) SetProgress(progress float64) {
	s.progressSlider.Value = progress
	s.progressSlider.Refresh()
}

// SetVolume moves the volume slider without firing its callbacks.
func (s *PlayerSurface) SetVolume(volume float64) {
	s.volumeSlider.Value = volume
	s.volumeSlider.Refresh()
}

// SetMuteState switches the mute button.
func (s *PlayerSurface) SetMuteState(muted bool) {
	if muted {
		s.muteButton.SetIcon(theme.VolumeMuteIcon())
	} else {
		s.muteButton.SetIcon(theme.VolumeUpIcon())
	}
}

// Verify PlayerSurfaceView implementation
var _ ports.PlayerSurfaceView = (*PlayerSurface)(nil)
