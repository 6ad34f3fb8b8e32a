// Package mpris binds the bridge to the desktop's native media
// session surface: it exports an org.mpris.MediaPlayer2 player on the
// session bus (the owned session) and can drive other players through
// a controller handle.
package mpris

import (
	"errors"
	"strings"

	"github.com/godbus/dbus/v5"
)

// Well-known MPRIS names.
const (
	BusNamePrefix   = "org.mpris.MediaPlayer2"
	ObjectPath      = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	RootInterface   = "org.mpris.MediaPlayer2"
	PlayerInterface = "org.mpris.MediaPlayer2.Player"
)

// DefaultBusName is the bus name claimed by the bridge's own session.
const DefaultBusName = BusNamePrefix + ".widdle"

// Discover returns the MPRIS players currently on the session bus.
// The bridge never calls this to adopt foreign sessions; it exists
// for interactive tooling.
func Discover() ([]string, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, err
	}

	var names []string
	err = conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names)
	if err != nil {
		return nil, err
	}

	var dests []string
	for _, name := range names {
		if strings.HasPrefix(name, BusNamePrefix) {
			dests = append(dests, name)
		}
	}

	if len(dests) == 0 {
		return nil, errors.New("no mpris player instance found")
	}

	return dests, nil
}

// nameOwner resolves the unique connection name owning a bus name.
func nameOwner(conn *dbus.Conn, name string) (string, error) {
	var owner string
	err := conn.BusObject().Call("org.freedesktop.DBus.GetNameOwner", 0, name).Store(&owner)
	if err != nil {
		return "", err
	}

	return owner, nil
}
