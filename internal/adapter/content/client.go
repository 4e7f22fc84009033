// Package content provides an HTTP implementation of the ContentClient interface.
// Only the track fields the player needs are decoded from the content API.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xampmusic/xamp-player/internal/domain"
	"github.com/xampmusic/xamp-player/internal/ports"
)

const _maxResponseSize = 4 * 1024 * 1024 // 4 MB

// Client talks to the xamp content API over JSON/HTTP.
type Client struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
}

// NewClient creates a content API client.
func NewClient(logger *slog.Logger, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// songDTO is a row of the song catalog.
type songDTO struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Cover     string `json:"cover"`
	StreamURL string `json:"streamUrl"`
}

type songsResponse struct {
	Songs []songDTO `json:"songs"`
	Total int       `json:"total"`
}

// trackDTO is a track embedded in artist and blog post payloads.
type trackDTO struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	ArtistName string `json:"artist_name"`
	Image      string `json:"image"`
	MP3File    string `json:"mp3_file"`
}

type artistResponse struct {
	Name      string     `json:"name"`
	TopTracks []trackDTO `json:"top_tracks"`
}

type postResponse struct {
	Title  string     `json:"title"`
	Tracks []trackDTO `json:"tracks"`
}

func (d songDTO) toTrack() domain.Track {
	return domain.Track{
		ID:       d.ID,
		Title:    d.Title,
		Artist:   d.Artist,
		Cover:    d.Cover,
		AudioURL: d.StreamURL,
	}
}

func (d trackDTO) toTrack() domain.Track {
	return domain.Track{
		ID:       d.ID,
		Title:    d.Title,
		Artist:   d.ArtistName,
		Cover:    d.Image,
		AudioURL: d.MP3File,
	}
}

// FetchSongs returns one page of the song catalog.
func (c *Client) FetchSongs(ctx context.Context, page, limit int) ([]domain.Track, int, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var resp songsResponse
	if err := c.get(ctx, "songs", "/music/songs/?"+query.Encode(), &resp); err != nil {
		return nil, 0, err
	}

	tracks := make([]domain.Track, 0, len(resp.Songs))
	for _, s := range resp.Songs {
		tracks = append(tracks, c.resolve(s.toTrack()))
	}
	return tracks, resp.Total, nil
}

// FetchArtistTopTracks returns the top tracks of the artist with the given slug.
func (c *Client) FetchArtistTopTracks(ctx context.Context, slug string) ([]domain.Track, error) {
	var resp artistResponse
	if err := c.get(ctx, "artist", "/music/artists/"+url.PathEscape(slug)+"/", &resp); err != nil {
		return nil, err
	}
	return c.tracks(resp.TopTracks), nil
}

// FetchPostTracks returns the in-post tracklist of the blog post with the given slug.
func (c *Client) FetchPostTracks(ctx context.Context, slug string) ([]domain.Track, error) {
	var resp postResponse
	if err := c.get(ctx, "post", "/blog/posts/"+url.PathEscape(slug)+"/", &resp); err != nil {
		return nil, err
	}
	return c.tracks(resp.Tracks), nil
}

func (c *Client) tracks(dtos []trackDTO) []domain.Track {
	out := make([]domain.Track, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, c.resolve(d.toTrack()))
	}
	return out
}

// resolve turns site-relative media and cover paths into absolute URLs.
func (c *Client) resolve(t domain.Track) domain.Track {
	t.AudioURL = c.absolute(t.AudioURL)
	t.Cover = c.absolute(t.Cover)
	return t
}

func (c *Client) absolute(ref string) string {
	if ref == "" || !strings.HasPrefix(ref, "/") {
		return ref
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return ref
	}
	return base.Scheme + "://" + base.Host + ref
}

func (c *Client) get(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return domain.NewContentError(op, 0, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "xamp-player/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.NewContentError(op, 0, fmt.Errorf("network error: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.NewContentError(op, resp.StatusCode, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, _maxResponseSize)).Decode(out); err != nil {
		return domain.NewContentError(op, 0, fmt.Errorf("failed to decode response: %w", err))
	}

	c.logger.Debug("content fetched", slog.String("op", op), slog.String("path", path))
	return nil
}

// Verify that Client implements the ContentClient interface
var _ ports.ContentClient = (*Client)(nil)
