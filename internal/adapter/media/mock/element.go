// Package mock provides an in-memory implementation of the MediaElement interface.
// It is used for testing the playback core without an audio device, and by
// the --mock-audio flag for headless runs.
package mock

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/xampmusic/xamp-player/internal/domain"
	"github.com/xampmusic/xamp-player/internal/ports"
)

// PlayMode controls how Play resolves.
type PlayMode int

const (
	// PlayAuto resolves every Play immediately with success
	PlayAuto PlayMode = iota

	// PlayFail resolves every Play immediately with the configured error
	PlayFail

	// PlayManual keeps every Play pending until ResolveNext is called
	PlayManual
)

// Element is a mock implementation of the MediaElement interface.
// It simulates a media resource in memory without producing audio.
//
// Thread-safety: This implementation is thread-safe.
type Element struct {
	// Dependencies
	logger *slog.Logger

	// Resource state
	source   string
	position time.Duration
	duration time.Duration
	volume   float64
	playing  bool
	listener ports.MediaListener
	closed   bool

	// Behavior configuration (for testing error scenarios)
	mode         PlayMode
	failErr      error
	autoDuration time.Duration
	pending      []*pendingPlay

	// Call recording
	playCalls  int
	pauseCalls int
	seeks      []time.Duration

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

// pendingPlay is a Play call waiting for ResolveNext.
type pendingPlay struct {
	source string
	done   chan error
}

// NewElement creates a new mock media element with automatic play resolution.
func NewElement() *Element {
	return &Element{
		volume:  1,
		mode:    PlayAuto,
		failErr: domain.ErrPlaybackFailed,
		stop:    make(chan struct{}),
	}
}

// NewElementFactory returns a factory producing mock elements that report
// the given duration for every source and advance on their own clock.
func NewElementFactory(logger *slog.Logger, duration time.Duration) ports.MediaElementFactory {
	return func(config ports.MediaElementConfig) (ports.MediaElement, error) {
		el := NewElement()
		el.SetLogger(logger)
		el.SetAutoDuration(duration)
		el.StartClock(config.UpdateInterval)
		return el, nil
	}
}

// SetLogger sets the logger for this element.
func (m *Element) SetLogger(logger *slog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// SetPlayMode configures how subsequent Play calls resolve (for testing).
func (m *Element) SetPlayMode(mode PlayMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = mode
}

// SetFailError sets the error returned by Play in PlayFail mode.
func (m *Element) SetFailError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

// SetAutoDuration makes every SetSource report metadata with the given
// duration shortly after loading. Zero disables it.
func (m *Element) SetAutoDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoDuration = d
}

// SetSource replaces the current resource.
func (m *Element) SetSource(url string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return domain.ErrClosed
	}

	replaced := m.pending
	m.pending = nil
	m.source = url
	m.position = 0
	m.duration = 0
	m.playing = false
	auto := m.autoDuration
	m.mu.Unlock()

	for _, p := range replaced {
		p.done <- domain.ErrSourceReplaced
	}

	if auto > 0 {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.loadMetadata(url, auto)
		}()
	}

	return nil
}

func (m *Element) loadMetadata(url string, d time.Duration) {
	m.mu.Lock()
	if m.closed || m.source != url {
		m.mu.Unlock()
		return
	}
	m.duration = d
	listener := m.listener
	m.mu.Unlock()

	m.emit(listener, ports.MediaEvent{Kind: ports.MediaMetadataLoaded, Source: url, Duration: d})
}

// Play starts playback according to the configured PlayMode.
func (m *Element) Play(ctx context.Context) error {
	m.mu.Lock()
	m.playCalls++

	if m.closed {
		m.mu.Unlock()
		return domain.ErrClosed
	}
	if m.source == "" {
		m.mu.Unlock()
		return domain.ErrNoSource
	}

	switch m.mode {
	case PlayFail:
		err := m.failErr
		m.mu.Unlock()
		return err
	case PlayManual:
		p := &pendingPlay{source: m.source, done: make(chan error, 1)}
		m.pending = append(m.pending, p)
		m.mu.Unlock()

		select {
		case err := <-p.done:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	default:
		m.playing = true
		m.mu.Unlock()
		return nil
	}
}

// PendingPlays returns the number of Play calls waiting for resolution.
func (m *Element) PendingPlays() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// ResolveNext resolves the oldest pending Play with err.
// A nil err starts playback. Returns false if nothing was pending.
func (m *Element) ResolveNext(err error) bool {
	m.mu.Lock()
	if len(m.pending) == 0 {
		m.mu.Unlock()
		return false
	}

	p := m.pending[0]
	m.pending = m.pending[1:]
	if err == nil && p.source == m.source {
		m.playing = true
	}
	m.mu.Unlock()

	p.done <- err
	return true
}

// Pause pauses playback.
func (m *Element) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrClosed
	}

	m.pauseCalls++
	m.playing = false
	return nil
}

// Seek sets the playback position.
func (m *Element) Seek(position time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrClosed
	}

	m.position = position
	m.seeks = append(m.seeks, position)
	return nil
}

// Position returns the current playback position.
func (m *Element) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

// Duration returns the length of the current resource.
func (m *Element) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

// SetVolume sets the output level.
func (m *Element) SetVolume(volume float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrClosed
	}

	m.volume = volume
	return nil
}

// SetListener registers the event callback.
func (m *Element) SetListener(listener ports.MediaListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = listener
}

// StartClock advances the element by interval on every tick while playing,
// emitting time updates like a real resource. Stopped by Close.
func (m *Element) StartClock(interval time.Duration) {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				m.Advance(interval)
			}
		}
	}()
}

// Advance moves the position forward by d if playing, emitting a time
// update, or an ended event once the duration is reached.
func (m *Element) Advance(d time.Duration) {
	m.mu.Lock()
	if !m.playing || m.closed {
		m.mu.Unlock()
		return
	}

	m.position += d
	ended := false
	if m.duration > 0 && m.position >= m.duration {
		m.position = m.duration
		m.playing = false
		ended = true
	}
	ev := ports.MediaEvent{
		Kind:     ports.MediaTimeUpdate,
		Source:   m.source,
		Position: m.position,
		Duration: m.duration,
	}
	listener := m.listener
	m.mu.Unlock()

	m.emit(listener, ev)
	if ended {
		ev.Kind = ports.MediaEnded
		m.emit(listener, ev)
	}
}

// FireMetadata sets the duration and emits a metadata event for the current source.
func (m *Element) FireMetadata(d time.Duration) {
	m.mu.Lock()
	m.duration = d
	ev := ports.MediaEvent{Kind: ports.MediaMetadataLoaded, Source: m.source, Duration: d}
	listener := m.listener
	m.mu.Unlock()

	m.emit(listener, ev)
}

// FireError emits a native failure for the current source and stops playback.
func (m *Element) FireError(err error) {
	m.mu.Lock()
	m.playing = false
	ev := ports.MediaEvent{Kind: ports.MediaError, Source: m.source, Err: err}
	listener := m.listener
	m.mu.Unlock()

	m.emit(listener, ev)
}

// Emit delivers an arbitrary event to the listener (for testing stale sources).
func (m *Element) Emit(event ports.MediaEvent) {
	m.emit(m.Listener(), event)
}

// Listener returns the installed listener. Tests hold on to it to deliver
// events late, after the listener has been replaced.
func (m *Element) Listener() ports.MediaListener {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listener
}

// emit delivers event to a listener captured together with the state the
// event describes.
func (m *Element) emit(listener ports.MediaListener, event ports.MediaEvent) {
	m.mu.Lock()
	logger := m.logger
	m.mu.Unlock()

	if logger != nil {
		logger.Debug("mock media event",
			slog.String("kind", event.Kind.String()),
			slog.String("source", event.Source))
	}

	if listener != nil {
		listener(event)
	}
}

// Close releases the element and fails pending plays.
func (m *Element) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.playing = false
	pending := m.pending
	m.pending = nil
	close(m.stop)
	m.mu.Unlock()

	for _, p := range pending {
		p.done <- domain.ErrClosed
	}

	m.wg.Wait()
	return nil
}

// Helper methods for testing

// IsPlaying returns true if the element is producing (simulated) audio.
func (m *Element) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Source returns the current locator.
func (m *Element) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.source
}

// Volume returns the level last applied.
func (m *Element) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// PlayCalls returns how many times Play was called.
func (m *Element) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

// PauseCalls returns how many times Pause was called.
func (m *Element) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

// Seeks returns every position passed to Seek.
func (m *Element) Seeks() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.seeks))
	copy(out, m.seeks)
	return out
}

// IsClosed returns true after Close.
func (m *Element) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify that Element implements the MediaElement interface
var _ ports.MediaElement = (*Element)(nil)
