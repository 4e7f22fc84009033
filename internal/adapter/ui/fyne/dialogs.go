package fyne

import (
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/xampmusic/xamp-player/internal/adapter/metadata"
)

// FileDialog is a helper for opening a local audio file.
type FileDialog struct {
	window   fyne.Window
	callback func(string)
	logger   *slog.Logger
}

// NewFileDialog creates a new file dialog.
func NewFileDialog(window fyne.Window, callback func(string), logger *slog.Logger) *FileDialog {
	return &FileDialog{
		window:   window,
		callback: callback,
		logger:   logger,
	}
}

// Show displays the file dialog, filtered to supported formats.
func (d *FileDialog) Show() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			d.logger.Error("file dialog error", slog.Any("error", err))
			return
		}
		if reader == nil {
			return // User cancelled
		}
		defer reader.Close()

		filePath := reader.URI().Path()
		if d.callback != nil {
			d.callback(filePath)
		}
	}, d.window)
	fd.SetFilter(storage.NewExtensionFileFilter(metadata.SupportedFormats))
	fd.Show()
}

// URLDialog asks for a remote stream URL.
type URLDialog struct {
	window   fyne.Window
	callback func(string)
}

// NewURLDialog creates a new URL entry dialog.
func NewURLDialog(window fyne.Window, callback func(string)) *URLDialog {
	return &URLDialog{
		window:   window,
		callback: callback,
	}
}

// Show displays the dialog.
func (d *URLDialog) Show() {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("https://")

	items := []*widget.FormItem{widget.NewFormItem("Stream URL", entry)}
	dialog.ShowForm("Open URL", "Open", "Cancel", items, func(ok bool) {
		url := strings.TrimSpace(entry.Text)
		if ok && url != "" && d.callback != nil {
			d.callback(url)
		}
	}, d.window)
}
