package mpris

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/prop"

	"github.com/widdle/reader"
)

// Session is the bridge's own media session: an MPRIS player exported
// on the session bus. Incoming method calls from system surfaces are
// turned into playback commands and handed to the sink; pushes from
// the playback engine update the exported properties.
type Session struct {
	conn  *dbus.Conn
	name  string
	props *prop.Properties
	sink  reader.CommandSink

	mu        sync.Mutex
	lastState reader.PlaybackStateSnapshot
	released  bool
}

// NewSession claims busName on the session bus and exports the player
// objects. Commands arriving from the bus are delivered to sink.
func NewSession(busName string, sink reader.CommandSink) (*Session, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, err
	}

	reply, err := conn.RequestName(busName, dbus.NameFlagReplaceExisting)
	if err != nil {
		return nil, err
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return nil, fmt.Errorf("mpris: bus name %s already taken", busName)
	}

	s := &Session{conn: conn, name: busName, sink: sink}

	if err := conn.Export(&rootAdapter{s}, ObjectPath, RootInterface); err != nil {
		return nil, err
	}
	if err := conn.Export(&playerAdapter{s}, ObjectPath, PlayerInterface); err != nil {
		return nil, err
	}

	props, err := prop.Export(conn, ObjectPath, defaultProps())
	if err != nil {
		return nil, err
	}
	s.props = props

	return s, nil
}

func defaultProps() map[string]map[string]*prop.Prop {
	return map[string]map[string]*prop.Prop{
		RootInterface: {
			"Identity":            {Value: "Widdle Reader", Emit: prop.EmitTrue},
			"CanQuit":             {Value: false, Emit: prop.EmitTrue},
			"CanRaise":            {Value: false, Emit: prop.EmitTrue},
			"HasTrackList":        {Value: false, Emit: prop.EmitTrue},
			"SupportedUriSchemes": {Value: []string{"widdle", "file"}, Emit: prop.EmitTrue},
			"SupportedMimeTypes":  {Value: []string{"audio/mpeg", "audio/mp4", "audio/ogg", "audio/flac"}, Emit: prop.EmitTrue},
		},
		PlayerInterface: {
			"PlaybackStatus": {Value: "Stopped", Emit: prop.EmitTrue},
			"Rate":           {Value: 1.0, Writable: true, Emit: prop.EmitTrue},
			"MinimumRate":    {Value: 0.5, Emit: prop.EmitTrue},
			"MaximumRate":    {Value: 3.0, Emit: prop.EmitTrue},
			"Metadata":       {Value: map[string]dbus.Variant{}, Emit: prop.EmitTrue},
			"Position":       {Value: int64(0), Emit: prop.EmitFalse},
			"Volume":         {Value: 1.0, Writable: true, Emit: prop.EmitTrue},
			"CanGoNext":      {Value: true, Emit: prop.EmitTrue},
			"CanGoPrevious":  {Value: true, Emit: prop.EmitTrue},
			"CanPlay":        {Value: true, Emit: prop.EmitTrue},
			"CanPause":       {Value: true, Emit: prop.EmitTrue},
			"CanSeek":        {Value: true, Emit: prop.EmitTrue},
			"CanControl":     {Value: true, Emit: prop.EmitTrue},
		},
	}
}

// Name returns the claimed bus name.
func (s *Session) Name() string {
	return s.name
}

// Owner returns this connection's unique bus name.
func (s *Session) Owner() string {
	names := s.conn.Names()
	if len(names) == 0 {
		return ""
	}

	return names[0]
}

// Token mints a session token for this session.
func (s *Session) Token() reader.SessionToken {
	return reader.NewSessionToken(s.name)
}

// SetMetadata mirrors md into the exported Metadata property.
func (s *Session) SetMetadata(md reader.NowPlayingMetadata) error {
	if derr := s.props.Set(PlayerInterface, "Metadata", dbus.MakeVariant(metadataToVariants(md))); derr != nil {
		return derr
	}

	return nil
}

// SetPlaybackState mirrors st into the exported transport properties.
// Repeated calls with identical values only re-set the same values.
func (s *Session) SetPlaybackState(st reader.PlaybackStateSnapshot) error {
	status := "Paused"
	if st.IsPlaying {
		status = "Playing"
	}

	if derr := s.props.Set(PlayerInterface, "PlaybackStatus", dbus.MakeVariant(status)); derr != nil {
		return derr
	}
	if derr := s.props.Set(PlayerInterface, "Position", dbus.MakeVariant(st.Position().Microseconds())); derr != nil {
		return derr
	}
	if derr := s.props.Set(PlayerInterface, "Rate", dbus.MakeVariant(st.Speed)); derr != nil {
		return derr
	}

	s.mu.Lock()
	s.lastState = st
	s.mu.Unlock()

	return nil
}

// Release gives up the bus name. The shared connection stays open.
func (s *Session) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return nil
	}
	s.released = true

	_, err := s.conn.ReleaseName(s.name)
	return err
}

// deliver hands a command to the sink. Delivery failures are logged,
// never surfaced to the bus: the relay path inside the sink is the
// failure handling.
func (s *Session) deliver(cmd reader.PlaybackCommand) {
	if s.sink == nil {
		log.Println("mpris: no command sink, dropping", cmd.Action)
		return
	}

	if err := s.sink.Deliver(cmd); err != nil {
		log.Printf("mpris: deliver %s: %v\n", cmd.Action, err)
	}
}

func (s *Session) snapshot() reader.PlaybackStateSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastState
}

// rootAdapter exports the org.mpris.MediaPlayer2 methods.
type rootAdapter struct {
	s *Session
}

func (a *rootAdapter) Raise() *dbus.Error { return nil }
func (a *rootAdapter) Quit() *dbus.Error  { return nil }

// playerAdapter exports the org.mpris.MediaPlayer2.Player methods.
type playerAdapter struct {
	s *Session
}

func (a *playerAdapter) Play() *dbus.Error {
	a.s.deliver(reader.NewCommand(reader.ActionPlay))
	return nil
}

func (a *playerAdapter) Pause() *dbus.Error {
	a.s.deliver(reader.NewCommand(reader.ActionPause))
	return nil
}

func (a *playerAdapter) PlayPause() *dbus.Error {
	if a.s.snapshot().IsPlaying {
		a.s.deliver(reader.NewCommand(reader.ActionPause))
	} else {
		a.s.deliver(reader.NewCommand(reader.ActionPlay))
	}

	return nil
}

// Stop maps to pause: an audiobook player keeps its position.
func (a *playerAdapter) Stop() *dbus.Error {
	a.s.deliver(reader.NewCommand(reader.ActionPause))
	return nil
}

func (a *playerAdapter) Next() *dbus.Error {
	a.s.deliver(reader.NewCommand(reader.ActionSkipToNext))
	return nil
}

func (a *playerAdapter) Previous() *dbus.Error {
	a.s.deliver(reader.NewCommand(reader.ActionSkipToPrevious))
	return nil
}

// Seek handles the relative seek of the MPRIS spec by resolving it
// against the last pushed position.
func (a *playerAdapter) Seek(offsetMicros int64) *dbus.Error {
	base := a.s.snapshot().PositionMillis
	target := base + (time.Duration(offsetMicros) * time.Microsecond).Milliseconds()
	if target < 0 {
		target = 0
	}

	a.s.deliver(reader.SeekTo(target))
	return nil
}

func (a *playerAdapter) SetPosition(trackID dbus.ObjectPath, positionMicros int64) *dbus.Error {
	a.s.deliver(reader.SeekTo((time.Duration(positionMicros) * time.Microsecond).Milliseconds()))
	return nil
}

func (a *playerAdapter) OpenUri(uri string) *dbus.Error {
	if strings.HasPrefix(uri, "widdle://") {
		a.s.deliver(reader.PlayFromMediaID(strings.TrimPrefix(uri, "widdle://")))
	} else {
		a.s.deliver(reader.PlayFromSearch(uri))
	}

	return nil
}
