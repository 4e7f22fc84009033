package service

import (
	"context"
	"log/slog"

	"github.com/xampmusic/xamp-player/internal/domain"
	"github.com/xampmusic/xamp-player/internal/ports"
)

// CatalogService builds track lists from the content API.
type CatalogService struct {
	// Dependencies (injected)
	logger *slog.Logger
	client ports.ContentClient
	player TrackPlayer

	pageSize int
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	logger *slog.Logger,
	client ports.ContentClient,
	player TrackPlayer,
	pageSize int,
) *CatalogService {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &CatalogService{
		logger:   logger,
		client:   client,
		player:   player,
		pageSize: pageSize,
	}
}

// PageSize returns the number of songs per grid page.
func (s *CatalogService) PageSize() int {
	return s.pageSize
}

// SongGrid returns one page of the song catalog as a track list, plus the
// total number of songs.
func (s *CatalogService) SongGrid(ctx context.Context, page int) (*TrackList, int, error) {
	if page < 1 {
		page = 1
	}

	tracks, total, err := s.client.FetchSongs(ctx, page, s.pageSize)
	if err != nil {
		return nil, 0, err
	}

	return NewTrackList(s.logger, s.player, "songs", s.playable(tracks)), total, nil
}

// ArtistTopTracks returns the top tracks of an artist as a track list.
func (s *CatalogService) ArtistTopTracks(ctx context.Context, slug string) (*TrackList, error) {
	tracks, err := s.client.FetchArtistTopTracks(ctx, slug)
	if err != nil {
		return nil, err
	}

	return NewTrackList(s.logger, s.player, "artist:"+slug, s.playable(tracks)), nil
}

// PostTracklist returns the in-post tracklist of a blog post.
func (s *CatalogService) PostTracklist(ctx context.Context, slug string) (*TrackList, error) {
	tracks, err := s.client.FetchPostTracks(ctx, slug)
	if err != nil {
		return nil, err
	}

	return NewTrackList(s.logger, s.player, "post:"+slug, s.playable(tracks)), nil
}

// playable drops tracks without an ID or audio URL.
func (s *CatalogService) playable(tracks []domain.Track) []domain.Track {
	out := make([]domain.Track, 0, len(tracks))
	for _, t := range tracks {
		if err := t.Validate(); err != nil {
			s.logger.Warn("skipping unplayable track", slog.String("track_id", t.ID), slog.Any("error", err))
			continue
		}
		out = append(out, t)
	}
	return out
}
