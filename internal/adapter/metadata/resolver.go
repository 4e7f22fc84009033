// Package metadata turns user-supplied locators into playable tracks.
// Local files are identified by path and described by their embedded tags.
package metadata

import (
	"encoding/base64"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/google/uuid"

	"github.com/xampmusic/xamp-player/internal/domain"
	"github.com/xampmusic/xamp-player/internal/ports"
)

// SupportedFormats lists the extensions the audio backend can decode.
var SupportedFormats = []string{".mp3", ".ogg", ".wav"}

// IsSupported checks if the locator has a decodable extension.
func IsSupported(locator string) bool {
	ext := strings.ToLower(filepath.Ext(stripQuery(locator)))
	for _, f := range SupportedFormats {
		if ext == f {
			return true
		}
	}
	return false
}

// Resolver implements ports.TrackResolver for URLs and local files.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver creates a new resolver.
func NewResolver(logger *slog.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Resolve builds a track for an http(s) URL or a local file path.
// IDs are stable: resolving the same locator twice yields the same ID.
func (r *Resolver) Resolve(locator string) (domain.Track, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return domain.Track{}, domain.NewValidationError("locator", locator, "must not be empty")
	}

	if isRemote(locator) {
		return r.resolveRemote(locator)
	}
	return r.resolveFile(locator)
}

func (r *Resolver) resolveRemote(locator string) (domain.Track, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return domain.Track{}, domain.NewValidationError("locator", locator, err.Error())
	}

	title := strings.TrimSuffix(path.Base(u.Path), path.Ext(u.Path))
	if title == "" || title == "." || title == "/" {
		title = u.Host
	}

	return domain.Track{
		ID:       trackID(locator),
		Title:    title,
		AudioURL: locator,
	}, nil
}

func (r *Resolver) resolveFile(locator string) (domain.Track, error) {
	abs, err := filepath.Abs(locator)
	if err != nil {
		return domain.Track{}, domain.NewValidationError("locator", locator, err.Error())
	}

	if !IsSupported(abs) {
		return domain.Track{}, domain.NewMediaError("resolve", abs, domain.ErrUnsupportedFormat)
	}

	if _, err := os.Stat(abs); os.IsNotExist(err) {
		return domain.Track{}, domain.ErrFileNotFound
	}

	track := domain.Track{
		ID:       trackID("file://" + filepath.ToSlash(abs)),
		Title:    strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs)),
		AudioURL: abs,
	}

	r.readTags(&track)
	return track, nil
}

// readTags fills title, artist and cover from embedded tags when present.
func (r *Resolver) readTags(track *domain.Track) {
	file, err := os.Open(track.AudioURL)
	if err != nil {
		return
	}
	defer file.Close()

	meta, err := tag.ReadFrom(file)
	if err != nil || meta == nil {
		r.logger.Debug("no tags found", slog.String("path", track.AudioURL))
		return
	}

	if title := strings.TrimSpace(meta.Title()); title != "" {
		track.Title = title
	}
	if artist := strings.TrimSpace(meta.Artist()); artist != "" {
		track.Artist = artist
	}
	if picture := meta.Picture(); picture != nil && len(picture.Data) > 0 {
		track.Cover = dataURI(picture.MIMEType, picture.Data)
	}
}

// dataURI embeds artwork so the track stays a plain value.
func dataURI(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI returns the bytes of a base64 data URI.
func DecodeDataURI(ref string) ([]byte, bool) {
	if !strings.HasPrefix(ref, "data:") {
		return nil, false
	}
	_, payload, ok := strings.Cut(ref, ";base64,")
	if !ok {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, false
	}
	return data, true
}

func trackID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func isRemote(locator string) bool {
	l := strings.ToLower(locator)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

func stripQuery(locator string) string {
	if i := strings.IndexAny(locator, "?#"); i >= 0 && isRemote(locator) {
		return locator[:i]
	}
	return locator
}

// Verify that Resolver implements the TrackResolver interface
var _ ports.TrackResolver = (*Resolver)(nil)
