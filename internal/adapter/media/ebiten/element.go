// Package ebiten provides a MediaElement backed by ebiten's audio package.
// Sources are fetched and decoded in the background; MP3, Ogg Vorbis and
// WAV are supported.
package ebiten

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"

	"github.com/xampmusic/xamp-player/internal/domain"
	"github.com/xampmusic/xamp-player/internal/ports"
)

const (
	// decoded streams are 16-bit stereo
	bytesPerFrame = 4

	_maxSourceSize = 256 * 1024 * 1024 // 256 MB
)

var (
	contextOnce   sync.Once
	sharedContext *audio.Context
)

// audioContext returns the process-wide audio context. ebiten allows only
// one; later calls reuse the first sample rate.
func audioContext(sampleRate int) *audio.Context {
	contextOnce.Do(func() {
		if c := audio.CurrentContext(); c != nil {
			sharedContext = c
			return
		}
		sharedContext = audio.NewContext(sampleRate)
	})
	return sharedContext
}

// resource is one loaded source. It is replaced, never reused.
type resource struct {
	url      string
	ready    chan struct{}
	replaced chan struct{}
	cancel   context.CancelFunc

	// Set once ready is closed
	player *audio.Player
	length time.Duration
	err    error

	seekTo time.Duration
	ended  bool
}

// Element plays one source at a time through the shared audio context.
//
// Thread-safety: This implementation is thread-safe.
type Element struct {
	// Dependencies
	logger *slog.Logger
	audio  *audio.Context
	client *http.Client

	// Configuration
	interval time.Duration

	// State
	res      *resource
	volume   float64
	playing  bool
	listener ports.MediaListener
	closed   bool

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewElement creates an element and starts its progress ticker.
func NewElement(logger *slog.Logger, config ports.MediaElementConfig) *Element {
	if config.SampleRate <= 0 {
		config.SampleRate = 44100
	}
	if config.UpdateInterval <= 0 {
		config.UpdateInterval = 250 * time.Millisecond
	}
	if config.HTTPTimeout <= 0 {
		config.HTTPTimeout = 30 * time.Second
	}

	e := &Element{
		logger:   logger,
		audio:    audioContext(config.SampleRate),
		client:   &http.Client{Timeout: config.HTTPTimeout},
		interval: config.UpdateInterval,
		volume:   1,
		stop:     make(chan struct{}),
	}

	e.wg.Add(1)
	go e.tick()

	return e
}

// NewElementFactory returns a factory for ebiten-backed elements.
func NewElementFactory(logger *slog.Logger) ports.MediaElementFactory {
	return func(config ports.MediaElementConfig) (ports.MediaElement, error) {
		return NewElement(logger, config), nil
	}
}

// SetSource replaces the current resource and starts loading the new one.
func (e *Element) SetSource(url string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return domain.ErrClosed
	}

	e.releaseLocked()

	ctx, cancel := context.WithCancel(context.Background())
	res := &resource{
		url:      url,
		ready:    make(chan struct{}),
		replaced: make(chan struct{}),
		cancel:   cancel,
	}
	e.res = res
	e.playing = false

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.load(ctx, res)
	}()

	return nil
}

// releaseLocked drops the current resource, waking plays waiting on it.
func (e *Element) releaseLocked() {
	res := e.res
	if res == nil {
		return
	}

	res.cancel()
	close(res.replaced)
	if res.player != nil {
		res.player.Pause()
		if err := res.player.Close(); err != nil {
			e.logger.Debug("failed to close player", slog.Any("error", err))
		}
	}
	e.res = nil
}

func (e *Element) load(ctx context.Context, res *resource) {
	player, length, err := e.open(ctx, res.url)

	e.mu.Lock()
	if e.res != res {
		e.mu.Unlock()
		if player != nil {
			_ = player.Close()
		}
		return
	}

	if err != nil {
		res.err = domain.NewMediaError("load", res.url, err)
	} else {
		res.player = player
		res.length = length
		player.SetVolume(e.volume)
		if res.seekTo > 0 {
			if serr := player.SetPosition(res.seekTo); serr != nil {
				e.logger.Debug("initial seek failed", slog.Any("error", serr))
			}
		}
	}
	close(res.ready)
	listener := e.listener
	e.mu.Unlock()

	if err != nil {
		e.logger.Warn("failed to load source", slog.String("source", res.url), slog.Any("error", err))
		emit(listener, ports.MediaEvent{Kind: ports.MediaError, Source: res.url, Err: res.err})
		return
	}

	e.logger.Debug("source ready", slog.String("source", res.url), slog.Duration("length", length))
	emit(listener, ports.MediaEvent{Kind: ports.MediaMetadataLoaded, Source: res.url, Duration: length})
}

// open fetches and decodes a source into a player.
func (e *Element) open(ctx context.Context, url string) (*audio.Player, time.Duration, error) {
	data, contentType, err := fetch(ctx, e.client, url, _maxSourceSize)
	if err != nil {
		return nil, 0, err
	}

	stream, err := decode(e.audio.SampleRate(), formatOf(url, contentType), data)
	if err != nil {
		return nil, 0, err
	}

	player, err := e.audio.NewPlayer(stream)
	if err != nil {
		return nil, 0, fmt.Errorf("create player: %w", err)
	}

	return player, streamDuration(stream.Length(), e.audio.SampleRate()), nil
}

// Play waits for the source to be ready and starts playback.
func (e *Element) Play(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return domain.ErrClosed
	}
	res := e.res
	e.mu.Unlock()

	if res == nil {
		return domain.ErrNoSource
	}

	select {
	case <-res.ready:
	case <-res.replaced:
		return domain.ErrSourceReplaced
	case <-ctx.Done():
		return ctx.Err()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.res != res {
		return domain.ErrSourceReplaced
	}
	if res.err != nil {
		return res.err
	}

	if res.ended {
		if err := res.player.Rewind(); err != nil {
			return domain.NewMediaError("play", res.url, err)
		}
		res.ended = false
	}

	res.player.Play()
	e.playing = true
	return nil
}

// Pause pauses playback.
func (e *Element) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return domain.ErrClosed
	}

	e.playing = false
	if e.res != nil && e.res.player != nil {
		e.res.player.Pause()
	}
	return nil
}

// Seek sets the playback position. Before the source is ready the position
// is applied once it loads.
func (e *Element) Seek(position time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return domain.ErrClosed
	}

	res := e.res
	if res == nil {
		return nil
	}

	if res.player == nil {
		res.seekTo = position
		return nil
	}

	if err := res.player.SetPosition(position); err != nil {
		return domain.NewMediaError("seek", res.url, err)
	}
	res.ended = false
	return nil
}

// Position returns the current playback position.
func (e *Element) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.res == nil || e.res.player == nil {
		return 0
	}
	return e.res.player.Position()
}

// Duration returns the length of the current source, or 0 while loading.
func (e *Element) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.res == nil {
		return 0
	}
	return e.res.length
}

// SetVolume sets the output level.
func (e *Element) SetVolume(volume float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return domain.ErrClosed
	}

	e.volume = domain.ClampVolume(volume)
	if e.res != nil && e.res.player != nil {
		e.res.player.SetVolume(e.volume)
	}
	return nil
}

// SetListener registers the event callback.
func (e *Element) SetListener(listener ports.MediaListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listener = listener
}

// tick emits time updates while playing and detects the end of stream.
func (e *Element) tick() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
			listener, events := e.poll()
			for _, ev := range events {
				emit(listener, ev)
			}
		}
	}
}

// poll observes the resource and captures the listener under one lock, so
// events about a replaced source never reach the listener that replaced it.
func (e *Element) poll() (ports.MediaListener, []ports.MediaEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := e.res
	if !e.playing || res == nil || res.player == nil {
		return nil, nil
	}

	if !res.player.IsPlaying() {
		e.playing = false
		res.ended = true
		return e.listener, []ports.MediaEvent{
			{Kind: ports.MediaTimeUpdate, Source: res.url, Position: res.length, Duration: res.length},
			{Kind: ports.MediaEnded, Source: res.url, Position: res.length, Duration: res.length},
		}
	}

	return e.listener, []ports.MediaEvent{{
		Kind:     ports.MediaTimeUpdate,
		Source:   res.url,
		Position: res.player.Position(),
		Duration: res.length,
	}}
}

func emit(listener ports.MediaListener, event ports.MediaEvent) {
	if listener != nil {
		listener(event)
	}
}

// Close stops the ticker and releases the current source.
func (e *Element) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.playing = false
	e.releaseLocked()
	close(e.stop)
	e.mu.Unlock()

	e.wg.Wait()
	return nil
}

// fetch reads a source from http(s) or the local filesystem. Sources larger
// than limit bytes fail with domain.ErrSourceTooLarge.
func fetch(ctx context.Context, client *http.Client, locator string, limit int64) ([]byte, string, error) {
	lower := strings.ToLower(locator)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		f, err := os.Open(strings.TrimPrefix(locator, "file://"))
		if err != nil {
			return nil, "", fmt.Errorf("read file: %w", err)
		}
		defer f.Close()

		data, err := readLimited(f, limit)
		if err != nil {
			return nil, "", fmt.Errorf("read file: %w", err)
		}
		return data, "", nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "xamp-player/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if resp.ContentLength > limit {
		return nil, "", fmt.Errorf("%w: %d bytes", domain.ErrSourceTooLarge, resp.ContentLength)
	}

	data, err := readLimited(resp.Body, limit)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read body: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// readLimited reads one byte past limit so truncation is reported, not decoded.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: over %d bytes", domain.ErrSourceTooLarge, limit)
	}
	return data, nil
}

// formatOf picks a decoder name from the locator extension, falling back
// to the response content type.
func formatOf(locator, contentType string) string {
	p := locator
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}

	switch strings.ToLower(path.Ext(p)) {
	case ".mp3":
		return "mp3"
	case ".ogg", ".oga":
		return "vorbis"
	case ".wav":
		return "wav"
	}

	switch {
	case strings.Contains(contentType, "mpeg"), strings.Contains(contentType, "mp3"):
		return "mp3"
	case strings.Contains(contentType, "ogg"), strings.Contains(contentType, "vorbis"):
		return "vorbis"
	case strings.Contains(contentType, "wav"):
		return "wav"
	}
	return ""
}

// stream is the common shape of ebiten's decoded streams.
type stream interface {
	io.ReadSeeker
	Length() int64
}

func decode(sampleRate int, format string, data []byte) (stream, error) {
	r := bytes.NewReader(data)

	switch format {
	case "mp3":
		s, err := mp3.DecodeWithSampleRate(sampleRate, r)
		if err != nil {
			return nil, fmt.Errorf("decode mp3: %w", err)
		}
		return s, nil
	case "vorbis":
		s, err := vorbis.DecodeWithSampleRate(sampleRate, r)
		if err != nil {
			return nil, fmt.Errorf("decode vorbis: %w", err)
		}
		return s, nil
	case "wav":
		s, err := wav.DecodeWithSampleRate(sampleRate, r)
		if err != nil {
			return nil, fmt.Errorf("decode wav: %w", err)
		}
		return s, nil
	default:
		return nil, domain.ErrUnsupportedFormat
	}
}

// streamDuration converts a decoded byte length into a duration.
func streamDuration(length int64, sampleRate int) time.Duration {
	if length <= 0 || sampleRate <= 0 {
		return 0
	}
	frames := length / bytesPerFrame
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}

// Verify that Element implements the MediaElement interface
var _ ports.MediaElement = (*Element)(nil)
