package mpris

import (
	"math"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/xampmusic/xamp-player/internal/domain"
)

const noTrackPath = dbus.ObjectPath("/org/mpris/MediaPlayer2/TrackList/NoTrack")

// properties implements org.freedesktop.DBus.Properties for both interfaces.
type properties struct {
	s *Server
}

func (p *properties) Get(iface, prop string) (dbus.Variant, *dbus.Error) {
	all, derr := p.GetAll(iface)
	if derr != nil {
		return dbus.Variant{}, derr
	}
	v, ok := all[prop]
	if !ok {
		return dbus.Variant{}, errUnknownProp
	}
	return v, nil
}

func (p *properties) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	switch iface {
	case rootInterface:
		return rootProperties(p.s.identity, p.s.resolver != nil), nil
	case playerInterface:
		return playerProperties(p.s.ctrl.State()), nil
	default:
		return nil, errUnknownIface
	}
}

// Set accepts only Player.Volume.
func (p *properties) Set(iface, prop string, value dbus.Variant) *dbus.Error {
	if iface != playerInterface && iface != rootInterface {
		return errUnknownIface
	}
	if iface != playerInterface || prop != "Volume" {
		if _, derr := p.Get(iface, prop); derr != nil {
			return derr
		}
		return errReadOnly
	}

	var volume float64
	if err := value.Store(&volume); err != nil {
		return dbus.MakeFailedError(err)
	}
	p.s.ctrl.SetVolume(volume)
	return nil
}

func rootProperties(identity string, canOpen bool) map[string]dbus.Variant {
	schemes := []string{}
	mimes := []string{}
	if canOpen {
		schemes = []string{"file", "http", "https"}
		mimes = []string{"audio/mpeg", "audio/ogg", "audio/wav"}
	}
	return map[string]dbus.Variant{
		"CanQuit":             dbus.MakeVariant(false),
		"CanRaise":            dbus.MakeVariant(true),
		"HasTrackList":        dbus.MakeVariant(false),
		"Identity":            dbus.MakeVariant(identity),
		"SupportedUriSchemes": dbus.MakeVariant(schemes),
		"SupportedMimeTypes":  dbus.MakeVariant(mimes),
	}
}

func playerProperties(state domain.PlaybackState) map[string]dbus.Variant {
	props := map[string]dbus.Variant{
		"Position":      dbus.MakeVariant(toMicros(state.CurrentTime)),
		"Rate":          dbus.MakeVariant(1.0),
		"MinimumRate":   dbus.MakeVariant(1.0),
		"MaximumRate":   dbus.MakeVariant(1.0),
		"CanGoNext":     dbus.MakeVariant(false),
		"CanGoPrevious": dbus.MakeVariant(false),
		"CanControl":    dbus.MakeVariant(true),
	}
	for k, v := range changedProperties(state, domain.FieldAll) {
		props[k] = v
	}
	return props
}

// changedProperties maps snapshot fields onto the Player properties they affect.
// Position is polled by clients and never signalled.
func changedProperties(state domain.PlaybackState, changed domain.StateField) map[string]dbus.Variant {
	props := make(map[string]dbus.Variant)

	if changed.Has(domain.FieldTrack | domain.FieldPlaying) {
		props["PlaybackStatus"] = dbus.MakeVariant(playbackStatus(state))
		props["CanPlay"] = dbus.MakeVariant(state.HasTrack())
		props["CanPause"] = dbus.MakeVariant(state.HasTrack())
	}
	if changed.Has(domain.FieldTrack | domain.FieldDuration) {
		props["Metadata"] = dbus.MakeVariant(metadata(state))
		props["CanSeek"] = dbus.MakeVariant(state.HasTrack() && state.Duration > 0)
	}
	if changed.Has(domain.FieldVolume | domain.FieldMuted) {
		props["Volume"] = dbus.MakeVariant(state.EffectiveVolume())
	}

	return props
}

func playbackStatus(state domain.PlaybackState) string {
	switch {
	case state.IsPlaying:
		return "Playing"
	case state.HasTrack():
		return "Paused"
	default:
		return "Stopped"
	}
}

func metadata(state domain.PlaybackState) map[string]dbus.Variant {
	if !state.HasTrack() {
		return map[string]dbus.Variant{
			"mpris:trackid": dbus.MakeVariant(noTrackPath),
		}
	}

	t := state.CurrentTrack
	md := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(trackObjectPath(t.ID)),
		"xesam:title":   dbus.MakeVariant(t.Title),
		"xesam:url":     dbus.MakeVariant(t.AudioURL),
	}
	if t.Artist != "" {
		md["xesam:artist"] = dbus.MakeVariant([]string{t.Artist})
	}
	if state.Duration > 0 {
		md["mpris:length"] = dbus.MakeVariant(toMicros(state.Duration))
	}
	// data URIs are not valid art URLs
	if t.Cover != "" && !strings.HasPrefix(t.Cover, "data:") {
		md["mpris:artUrl"] = dbus.MakeVariant(t.Cover)
	}
	return md
}

// trackObjectPath maps a track ID onto a valid D-Bus object path.
func trackObjectPath(id string) dbus.ObjectPath {
	var b strings.Builder
	b.WriteString("/org/xampmusic/track/")
	if id == "" {
		b.WriteString("_")
	}
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return dbus.ObjectPath(b.String())
}

func toMicros(seconds float64) int64 {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0
	}
	return int64(seconds * 1e6)
}

func fromMicros(us int64) float64 {
	return float64(us) / 1e6
}
