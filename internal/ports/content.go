// Package ports define the content source interface for track retrieval.
// The remote content API is a black box; only the fields playback needs are mapped.
package ports

import (
	"context"

	"github.com/xampmusic/xamp-player/internal/domain"
)

//go:generate mockgen -destination=mocks/content_mock.go -package=mocks github.com/xampmusic/xamp-player/internal/ports ContentClient

// ContentClient retrieves playable tracks from the remote content API.
// Implementations can use HTTP, fixtures, or in-memory data.
//
// Thread-safety: Implementations must be thread-safe.
type ContentClient interface {
	// FetchSongs returns one page of the song catalog.
	// page is 1-based; limit is the page size.
	//
	// Returns the tracks of the page and the total number of songs.
	FetchSongs(ctx context.Context, page, limit int) ([]domain.Track, int, error)

	// FetchArtistTopTracks returns the top tracks of the artist with the given slug.
	FetchArtistTopTracks(ctx context.Context, slug string) ([]domain.Track, error)

	// FetchPostTracks returns the in-post tracklist of the blog post with the given slug.
	// Posts without a tracklist return an empty slice (not an error).
	FetchPostTracks(ctx context.Context, slug string) ([]domain.Track, error)
}

// TrackResolver turns a user-supplied locator (URL or local path) into a Track.
type TrackResolver interface {
	// Resolve builds a track for the locator, reading embedded metadata when available.
	Resolve(locator string) (domain.Track, error)
}
