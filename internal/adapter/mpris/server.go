// Package mpris exposes the playback store on the D-Bus session bus as an
// MPRIS2 media player, so desktop media keys and applets can drive it.
package mpris

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/xampmusic/xamp-player/internal/domain"
	"github.com/xampmusic/xamp-player/internal/ports"
)

const (
	objectPath      = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	busNamePrefix   = "org.mpris.MediaPlayer2."
	rootInterface   = "org.mpris.MediaPlayer2"
	playerInterface = "org.mpris.MediaPlayer2.Player"
	propsInterface  = "org.freedesktop.DBus.Properties"
)

// Conn is the subset of *dbus.Conn the server needs.
// This abstraction allows tests to run without a session bus.
type Conn interface {
	Export(v interface{}, path dbus.ObjectPath, iface string) error
	RequestName(name string, flags dbus.RequestNameFlags) (dbus.RequestNameReply, error)
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error
	Close() error
}

// Controller is the store surface the media keys act on.
type Controller interface {
	State() domain.PlaybackState
	PlayTrack(track domain.Track)
	TogglePlay()
	Play()
	Pause()
	Seek(seconds float64)
	SetVolume(volume float64)
	OpenPlayer()
}

// Server publishes one MPRIS2 player.
//
// Thread-safety: This implementation is thread-safe.
type Server struct {
	// Dependencies
	logger   *slog.Logger
	conn     Conn
	ctrl     Controller
	bus      ports.FilteringEventBus
	resolver ports.TrackResolver

	// Configuration
	name     string
	identity string

	subID   domain.SubscriptionID
	started bool
	mu      sync.Mutex
}

// NewServer creates a server on an existing connection.
// resolver may be nil, in which case OpenUri is rejected.
func NewServer(
	logger *slog.Logger,
	conn Conn,
	ctrl Controller,
	bus ports.FilteringEventBus,
	resolver ports.TrackResolver,
	name, identity string,
) *Server {
	return &Server{
		logger:   logger,
		conn:     conn,
		ctrl:     ctrl,
		bus:      bus,
		resolver: resolver,
		name:     name,
		identity: identity,
	}
}

// ConnectSessionBus opens a private session bus connection.
func ConnectSessionBus() (*dbus.Conn, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("session bus connection failed: %w", err)
	}
	return conn, nil
}

// BusName returns the well-known name the server claims.
func (s *Server) BusName() string {
	return busNamePrefix + s.name
}

// Start exports the MPRIS objects, claims the bus name and begins mirroring
// store snapshots as PropertiesChanged signals.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	exports := []struct {
		v     interface{}
		iface string
	}{
		{&root{s}, rootInterface},
		{&player{s}, playerInterface},
		{&properties{s}, propsInterface},
	}
	for _, e := range exports {
		if err := s.conn.Export(e.v, objectPath, e.iface); err != nil {
			return fmt.Errorf("failed to export %s: %w", e.iface, err)
		}
	}

	reply, err := s.conn.RequestName(s.BusName(), dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", s.BusName())
	}

	s.subID = s.bus.SubscribeFiltered(domain.EventStateChanged,
		ports.ChangedFields(domain.FieldTrack|domain.FieldPlaying|domain.FieldDuration|domain.FieldVolume|domain.FieldMuted),
		s.handleStateChanged)
	s.started = true

	s.logger.Info("MPRIS player registered", slog.String("bus_name", s.BusName()))
	return nil
}

// Close stops mirroring and closes the connection.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return s.conn.Close()
	}
	s.started = false
	s.bus.Unsubscribe(s.subID)
	return s.conn.Close()
}

func (s *Server) handleStateChanged(event domain.Event) {
	e, ok := event.(domain.StateChangedEvent)
	if !ok {
		return
	}

	changed := changedProperties(e.State, e.Changed)
	if len(changed) == 0 {
		return
	}

	if err := s.conn.Emit(objectPath, propsInterface+".PropertiesChanged",
		playerInterface, changed, []string{}); err != nil {
		s.logger.Warn("failed to emit PropertiesChanged", slog.Any("error", err))
	}
}

func (s *Server) emitSeeked() {
	pos := toMicros(s.ctrl.State().CurrentTime)
	if err := s.conn.Emit(objectPath, playerInterface+".Seeked", pos); err != nil {
		s.logger.Warn("failed to emit Seeked", slog.Any("error", err))
	}
}
