package mpris

import (
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/widdle/reader"
)

// metadataToVariants builds the MPRIS metadata map for md.
//
// https://www.freedesktop.org/wiki/Specifications/mpris-spec/metadata/
func metadataToVariants(md reader.NowPlayingMetadata) map[string]dbus.Variant {
	m := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(trackIDPath(md.MediaID)),
		"xesam:title":   dbus.MakeVariant(md.Title),
		"xesam:album":   dbus.MakeVariant(md.Album),
		"mpris:length":  dbus.MakeVariant(md.Duration().Microseconds()),
	}

	if md.Artist != "" {
		m["xesam:artist"] = dbus.MakeVariant([]string{md.Artist})
	}
	if md.ArtworkURI != "" {
		m["mpris:artUrl"] = dbus.MakeVariant(md.ArtworkURI)
	}
	if md.DisplayDescription != "" {
		m["xesam:comment"] = dbus.MakeVariant([]string{md.DisplayDescription})
	}

	return m
}

// metadataFromVariants is the inverse of metadataToVariants, tolerant
// of missing keys.
func metadataFromVariants(m map[string]dbus.Variant) reader.NowPlayingMetadata {
	var md reader.NowPlayingMetadata

	if v, ok := m["xesam:title"]; ok {
		md.Title, _ = v.Value().(string)
	}
	if v, ok := m["xesam:album"]; ok {
		md.Album, _ = v.Value().(string)
	}
	if v, ok := m["xesam:artist"]; ok {
		if artists, ok := v.Value().([]string); ok && len(artists) > 0 {
			md.Artist = artists[0]
		}
	}
	if v, ok := m["mpris:length"]; ok {
		if micros, ok := v.Value().(int64); ok {
			md.DurationMillis = (time.Duration(micros) * time.Microsecond).Milliseconds()
		}
	}
	if v, ok := m["mpris:artUrl"]; ok {
		md.ArtworkURI, _ = v.Value().(string)
	}

	return md
}

// trackIDPath derives a D-Bus object path from a media ID. MPRIS
// requires a valid path, so anything outside [A-Za-z0-9_] is mapped.
func trackIDPath(mediaID string) dbus.ObjectPath {
	if mediaID == "" {
		return dbus.ObjectPath("/org/mpris/MediaPlayer2/TrackList/NoTrack")
	}

	safe := make([]byte, 0, len(mediaID))
	for i := 0; i < len(mediaID); i++ {
		b := mediaID[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9', b == '_':
			safe = append(safe, b)
		default:
			safe = append(safe, '_')
		}
	}

	return dbus.ObjectPath("/com/widdle/reader/track/" + string(safe))
}
