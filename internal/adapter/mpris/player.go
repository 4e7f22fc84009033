package mpris

import (
	"log/slog"

	"github.com/godbus/dbus/v5"
)

var (
	errNotSupported = dbus.NewError("org.mpris.MediaPlayer2.Error.NotSupported", []interface{}{"not supported"})
	errReadOnly     = dbus.NewError("org.freedesktop.DBus.Error.PropertyReadOnly", []interface{}{"property is read-only"})
	errUnknownProp  = dbus.NewError("org.freedesktop.DBus.Error.UnknownProperty", []interface{}{"unknown property"})
	errUnknownIface = dbus.NewError("org.freedesktop.DBus.Error.UnknownInterface", []interface{}{"unknown interface"})
)

// root implements org.mpris.MediaPlayer2.
type root struct {
	s *Server
}

// Raise shows the full player surface.
func (r *root) Raise() *dbus.Error {
	r.s.ctrl.OpenPlayer()
	return nil
}

// Quit is not supported; the window owns the process lifetime.
func (r *root) Quit() *dbus.Error {
	return errNotSupported
}

// player implements org.mpris.MediaPlayer2.Player.
type player struct {
	s *Server
}

func (p *player) Play() *dbus.Error {
	p.s.ctrl.Play()
	return nil
}

func (p *player) Pause() *dbus.Error {
	p.s.ctrl.Pause()
	return nil
}

func (p *player) PlayPause() *dbus.Error {
	p.s.ctrl.TogglePlay()
	return nil
}

// Stop pauses. The loaded track is kept so the surfaces stay populated.
func (p *player) Stop() *dbus.Error {
	p.s.ctrl.Pause()
	return nil
}

func (p *player) Next() *dbus.Error {
	return nil
}

func (p *player) Previous() *dbus.Error {
	return nil
}

// Seek moves relative to the current position (microseconds).
func (p *player) Seek(offset int64) *dbus.Error {
	state := p.s.ctrl.State()
	if !state.HasTrack() {
		return nil
	}
	p.s.ctrl.Seek(state.CurrentTime + fromMicros(offset))
	p.s.emitSeeked()
	return nil
}

// SetPosition moves to an absolute position if trackID is still current.
func (p *player) SetPosition(trackID dbus.ObjectPath, position int64) *dbus.Error {
	state := p.s.ctrl.State()
	if !state.HasTrack() || trackID != trackObjectPath(state.CurrentTrack.ID) {
		return nil
	}
	if position < 0 {
		return nil
	}
	p.s.ctrl.Seek(fromMicros(position))
	p.s.emitSeeked()
	return nil
}

// OpenUri resolves a locator and plays it.
func (p *player) OpenUri(uri string) *dbus.Error {
	if p.s.resolver == nil {
		return errNotSupported
	}
	track, err := p.s.resolver.Resolve(uri)
	if err != nil {
		p.s.logger.Warn("failed to open uri", slog.String("uri", uri), slog.Any("error", err))
		return dbus.MakeFailedError(err)
	}
	p.s.ctrl.PlayTrack(track)
	return nil
}
