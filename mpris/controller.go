package mpris

import (
	"errors"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/widdle/reader"
)

// ErrUnsupportedAction is returned for transport verbs MPRIS does not
// expose; callers are expected to fall back to the relay path.
var ErrUnsupportedAction = errors.New("mpris: action not supported by controller")

// Controller drives an MPRIS player's transport controls. It
// implements reader.Controller.
type Controller struct {
	dest  string
	conn  *dbus.Conn
	bo    dbus.BusObject
	owner string
}

// NewController returns a controller for the player at dest. The
// owner is resolved eagerly so a vanished name surfaces here rather
// than on first use.
func NewController(dest string) (*Controller, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, err
	}

	owner, err := nameOwner(conn, dest)
	if err != nil {
		return nil, err
	}

	bo := conn.Object(dest, ObjectPath)

	return &Controller{dest: dest, conn: conn, bo: bo, owner: owner}, nil
}

// Name returns the bus name of the controlled player.
func (c *Controller) Name() string {
	return c.dest
}

// Owner returns the unique connection name owning the player.
func (c *Controller) Owner() string {
	return c.owner
}

// call invokes an MPRIS player method.
func (c *Controller) call(method string, args ...interface{}) error {
	return c.bo.Call(PlayerInterface+"."+method, 0, args...).Err
}

// Play starts or resumes playback.
func (c *Controller) Play() error {
	return c.call("Play")
}

// Pause pauses playback of the current content.
func (c *Controller) Pause() error {
	return c.call("Pause")
}

// SkipToNext advances to the next chapter or track.
func (c *Controller) SkipToNext() error {
	return c.call("Next")
}

// SkipToPrevious returns to the previous chapter or track.
func (c *Controller) SkipToPrevious() error {
	return c.call("Previous")
}

// SeekTo sets the playback position.
func (c *Controller) SeekTo(positionMillis int64) error {
	trackID := c.trackID()

	pos := time.Duration(positionMillis) * time.Millisecond
	return c.call("SetPosition", trackID, pos.Microseconds())
}

// SetSpeed sets the playback rate.
func (c *Controller) SetSpeed(speed float64) error {
	return c.bo.SetProperty(PlayerInterface+".Rate", dbus.MakeVariant(speed))
}

// PlayFromMediaID opens a media item by its identifier.
func (c *Controller) PlayFromMediaID(mediaID string) error {
	return c.call("OpenUri", "widdle://"+mediaID)
}

// PlayFromSearch is not part of the MPRIS verb set.
func (c *Controller) PlayFromSearch(query string) error {
	return ErrUnsupportedAction
}

// trackID returns the raw mpris:trackid of the current track, or the
// no-track sentinel when unavailable.
func (c *Controller) trackID() dbus.ObjectPath {
	md := c.metadata()
	if v, ok := md["mpris:trackid"]; ok {
		if path, ok := v.Value().(dbus.ObjectPath); ok {
			return path
		}
	}

	return dbus.ObjectPath("/org/mpris/MediaPlayer2/TrackList/NoTrack")
}

// metadata returns the player's MPRIS metadata map.
func (c *Controller) metadata() map[string]dbus.Variant {
	v, err := c.bo.GetProperty(PlayerInterface + ".Metadata")
	if err != nil {
		return nil
	}

	m, _ := v.Value().(map[string]dbus.Variant)
	return m
}

// NowPlaying reads the player's current metadata as bridge metadata.
func (c *Controller) NowPlaying() reader.NowPlayingMetadata {
	return metadataFromVariants(c.metadata())
}

// PlaybackStatus returns the player's transport state string.
func (c *Controller) PlaybackStatus() string {
	v, err := c.bo.GetProperty(PlayerInterface + ".PlaybackStatus")
	if err != nil {
		return "Unknown"
	}

	s, _ := v.Value().(string)
	return s
}

// Position returns the current playback position.
func (c *Controller) Position() time.Duration {
	v, err := c.bo.GetProperty(PlayerInterface + ".Position")
	if err != nil {
		return 0
	}

	pos, _ := v.Value().(int64)
	return time.Duration(pos) * time.Microsecond
}
