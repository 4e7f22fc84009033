package fyne

import (
	"fmt"
	"math"
	"strings"

	fyneapp "fyne.io/fyne/v2"

	"github.com/xampmusic/xamp-player/internal/adapter/metadata"
	"github.com/xampmusic/xamp-player/internal/domain"
)

// FormatTime renders seconds as m:ss. Unknown or invalid values render 0:00.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// caption returns the text shown for a track, never empty.
func caption(track domain.Track) string {
	if name := track.DisplayName(); name != "" {
		return name
	}
	return "Unknown track"
}

// loadCover turns a track cover reference into a resource.
// Remote covers are fetched, so callers run this off the UI thread.
func loadCover(cover string) (fyneapp.Resource, error) {
	if data, ok := metadata.DecodeDataURI(cover); ok {
		return fyneapp.NewStaticResource("cover", data), nil
	}
	if strings.HasPrefix(cover, "http://") || strings.HasPrefix(cover, "https://") {
		return fyneapp.LoadResourceFromURLString(cover)
	}
	return nil, fmt.Errorf("unsupported cover reference")
}
