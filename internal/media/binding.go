// Package media binds the playback store to a single media element.
//
// The binding owns the element exclusively. It turns imperative store
// commands into element calls, runs play attempts asynchronously and tags
// them so that results from superseded attempts never reach the store.
package media

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/xampmusic/xamp-player/internal/domain"
	"github.com/xampmusic/xamp-player/internal/ports"
)

// Listener receives the events the binding raises upward.
// Methods are called from binding or element goroutines, never while the
// binding's lock is held, and never synchronously from a binding command.
type Listener interface {
	// OnPlayResult reports the outcome of the latest play attempt.
	OnPlayResult(result PlayResult)

	// OnTimeUpdate reports the transport position and duration in seconds.
	OnTimeUpdate(current, duration float64)

	// OnMetadataLoaded reports the duration of a freshly loaded source.
	OnMetadataLoaded(duration float64)

	// OnEnded reports that the source played to its end.
	OnEnded()

	// OnMediaError reports a native failure of the current source.
	OnMediaError(err error)
}

// PlayAttempt identifies one asynchronous play request.
type PlayAttempt struct {
	TrackID string

	// Generation increments on every Load
	Generation uint64

	// Seq increments on every Play and Pause
	Seq uint64
}

// PlayResult is the outcome of a play attempt. Err is nil on success.
type PlayResult struct {
	Attempt PlayAttempt
	Err     error
}

type command int

const (
	cmdNone command = iota
	cmdPlay
	cmdPause
)

// Binding adapts a ports.MediaElement for the playback store.
//
// Thread-safety: This implementation is thread-safe.
type Binding struct {
	// Dependencies
	logger   *slog.Logger
	element  ports.MediaElement
	listener Listener

	// Loaded source
	trackID string
	source  string

	// Attempt tagging
	generation uint64
	seq        uint64
	lastCmd    command

	// Outcome of the latest play attempt
	latestDone bool
	latestOK   bool

	// Output level
	volume float64
	muted  bool

	closed bool
	ctx    context.Context
	cancel context.CancelFunc

	mu sync.Mutex
	wg sync.WaitGroup
}

// NewBinding creates a detached binding.
func NewBinding(logger *slog.Logger) *Binding {
	ctx, cancel := context.WithCancel(context.Background())
	return &Binding{
		logger: logger,
		volume: 1,
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetListener registers the receiver of binding events.
func (b *Binding) SetListener(listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listener = listener
}

// Attach binds an element. A previously attached element is detached first.
// If a source is loaded, the new element is loaded with it, paused.
func (b *Binding) Attach(element ports.MediaElement) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return domain.ErrClosed
	}

	if b.element != nil {
		b.releaseLocked()
	}

	b.element = element
	if b.source != "" {
		b.generation++
		b.lastCmd = cmdNone
	}
	element.SetListener(b.listenerFor(b.generation))

	if err := element.SetVolume(b.effectiveVolumeLocked()); err != nil {
		b.logger.Warn("failed to apply volume to attached element", slog.Any("error", err))
	}

	if b.source != "" {
		if err := element.SetSource(b.source); err != nil {
			return domain.NewMediaError("load", b.source, err)
		}
	}

	b.logger.Debug("media element attached", slog.String("source", b.source))
	return nil
}

// Detach unbinds the current element and returns it (nil if none).
// The element is paused and outstanding play attempts become stale.
func (b *Binding) Detach() ports.MediaElement {
	b.mu.Lock()
	defer b.mu.Unlock()

	el := b.element
	if el != nil {
		b.releaseLocked()
	}
	return el
}

func (b *Binding) releaseLocked() {
	b.element.SetListener(nil)
	if err := b.element.Pause(); err != nil {
		b.logger.Debug("pause on detach failed", slog.Any("error", err))
	}
	b.element = nil
	b.seq++
	b.lastCmd = cmdPause
}

// Attached returns true if an element is bound.
func (b *Binding) Attached() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.element != nil
}

// Load replaces the source. Every outstanding play attempt becomes stale.
func (b *Binding) Load(trackID, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return domain.ErrClosed
	}

	b.generation++
	b.lastCmd = cmdNone
	b.trackID = trackID
	b.source = url

	if b.element == nil {
		return nil
	}

	b.element.SetListener(b.listenerFor(b.generation))
	if err := b.element.SetSource(url); err != nil {
		return domain.NewMediaError("load", url, err)
	}

	b.logger.Debug("source loaded",
		slog.String("track_id", trackID),
		slog.Uint64("generation", b.generation))
	return nil
}

// Play starts an asynchronous play attempt and returns its tag.
// The result is delivered through Listener.OnPlayResult unless superseded.
func (b *Binding) Play() PlayAttempt {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	b.lastCmd = cmdPlay
	b.latestDone = false
	b.latestOK = false
	attempt := PlayAttempt{TrackID: b.trackID, Generation: b.generation, Seq: b.seq}

	if b.closed {
		return attempt
	}

	el := b.element
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		var err error
		switch {
		case el == nil:
			err = domain.ErrNotAttached
		default:
			err = el.Play(b.ctx)
		}
		b.resolve(attempt, el, err)
	}()

	return attempt
}

// resolve delivers a play outcome if it is still the latest command.
func (b *Binding) resolve(attempt PlayAttempt, el ports.MediaElement, err error) {
	if b.settle(attempt, el, err) {
		return
	}

	b.mu.Lock()
	b.latestDone = true
	b.latestOK = err == nil
	listener := b.listener
	b.mu.Unlock()

	if err != nil {
		b.logger.Warn("play attempt failed",
			slog.String("track_id", attempt.TrackID),
			slog.Any("error", err))
		if el != nil {
			if perr := el.Pause(); perr != nil {
				b.logger.Debug("pause after failed play failed", slog.Any("error", perr))
			}
		}
	}

	if listener != nil {
		listener.OnPlayResult(PlayResult{Attempt: attempt, Err: err})
	}

	// A pause may have been issued while the listener was handling the result.
	b.settle(attempt, el, err)
}

// settle reports whether attempt is stale. A stale attempt that still
// managed to start the element is paused again unless the latest command
// expects audio.
func (b *Binding) settle(attempt PlayAttempt, el ports.MediaElement, err error) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return true
	}

	if attempt.Generation == b.generation && attempt.Seq == b.seq {
		return false
	}

	b.logger.Debug("discarding superseded play result",
		slog.String("track_id", attempt.TrackID),
		slog.Uint64("generation", attempt.Generation),
		slog.Uint64("seq", attempt.Seq))

	if err == nil && el != nil && el == b.element && !b.expectsPlayingLocked() {
		if perr := el.Pause(); perr != nil {
			b.logger.Warn("failed to re-pause element", slog.Any("error", perr))
		}
	}
	return true
}

// expectsPlayingLocked reports whether the latest command is a play that
// has not failed.
func (b *Binding) expectsPlayingLocked() bool {
	return b.lastCmd == cmdPlay && (!b.latestDone || b.latestOK)
}

// IsCurrent returns true if attempt is the latest transport command.
func (b *Binding) IsCurrent(attempt PlayAttempt) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return attempt.Generation == b.generation && attempt.Seq == b.seq
}

// Pause pauses the element. Outstanding play attempts become stale.
func (b *Binding) Pause() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	b.lastCmd = cmdPause

	if b.element == nil {
		return nil
	}
	return b.element.Pause()
}

// Seek moves the element to the given position in seconds, clamped to
// [0, duration] when the duration is known.
func (b *Binding) Seek(seconds float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.element == nil {
		return nil
	}

	pos := toDuration(seconds)
	if pos < 0 {
		pos = 0
	}
	if d := b.element.Duration(); d > 0 && pos > d {
		pos = d
	}
	return b.element.Seek(pos)
}

// SetVolume stores the level and applies it unless muted.
func (b *Binding) SetVolume(volume float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.volume = domain.ClampVolume(volume)
	return b.applyVolumeLocked()
}

// SetMuted silences the element or restores the stored level.
func (b *Binding) SetMuted(muted bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.muted = muted
	return b.applyVolumeLocked()
}

func (b *Binding) effectiveVolumeLocked() float64 {
	if b.muted {
		return 0
	}
	return b.volume
}

func (b *Binding) applyVolumeLocked() error {
	if b.element == nil {
		return nil
	}
	return b.element.SetVolume(b.effectiveVolumeLocked())
}

// listenerFor returns the element listener for one load. Reloading the same
// URL still installs a new listener, so late events of the previous load
// carry the old generation.
func (b *Binding) listenerFor(generation uint64) ports.MediaListener {
	return func(event ports.MediaEvent) {
		b.handleEvent(generation, event)
	}
}

// handleEvent forwards element events of the current load and drops the rest.
func (b *Binding) handleEvent(generation uint64, event ports.MediaEvent) {
	b.mu.Lock()
	if b.closed || generation != b.generation || event.Source != b.source {
		b.mu.Unlock()
		b.logger.Debug("dropping stale media event",
			slog.String("kind", event.Kind.String()),
			slog.String("source", event.Source),
			slog.Uint64("generation", generation))
		return
	}
	listener := b.listener
	b.mu.Unlock()

	if listener == nil {
		return
	}

	switch event.Kind {
	case ports.MediaTimeUpdate:
		listener.OnTimeUpdate(event.Position.Seconds(), event.Duration.Seconds())
	case ports.MediaMetadataLoaded:
		listener.OnMetadataLoaded(event.Duration.Seconds())
	case ports.MediaEnded:
		listener.OnEnded()
	case ports.MediaError:
		b.logger.Warn("media element error",
			slog.String("source", event.Source),
			slog.Any("error", event.Err))
		listener.OnMediaError(domain.NewMediaError("decode", event.Source, event.Err))
	}
}

// Wait blocks until every in-flight play attempt has resolved.
func (b *Binding) Wait() {
	b.wg.Wait()
}

// Close cancels in-flight attempts and closes the element.
func (b *Binding) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.cancel()
	el := b.element
	b.element = nil
	b.mu.Unlock()

	var err error
	if el != nil {
		el.SetListener(nil)
		err = el.Close()
	}

	b.wg.Wait()
	return err
}

func toDuration(seconds float64) time.Duration {
	if math.IsNaN(seconds) {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
