package reader

import (
	"strconv"
	"time"
)

// Capability represents one of the transport actions a session
// advertises to controllers.
type Capability uint

// String returns the string representation of the capability.
func (c Capability) String() string {
	switch c {
	case CapNone:
		return "none"
	case CapPlay:
		return "play"
	case CapPause:
		return "pause"
	case CapSeek:
		return "seek"
	case CapSkipToNext:
		return "skip_to_next"
	case CapSkipToPrevious:
		return "skip_to_previous"
	case CapSetSpeed:
		return "set_speed"
	default:
		return strconv.Itoa(int(c))
	}
}

// Defined transport capabilities.
const (
	CapNone           Capability = 0
	CapPlay           Capability = 1 << 0
	CapPause          Capability = 1 << 1
	CapSeek           Capability = 1 << 2
	CapSkipToNext     Capability = 1 << 3
	CapSkipToPrevious Capability = 1 << 4
	CapSetSpeed       Capability = 1 << 5
)

// CapDefault is the capability set advertised while a book is loaded.
const CapDefault = CapPlay | CapPause | CapSeek | CapSkipToNext | CapSkipToPrevious | CapSetSpeed

// Capabilities returns the individual capabilities present in c.
func (c Capability) Capabilities() []Capability {
	result := make([]Capability, 0)

	for _, cap := range []Capability{CapPlay, CapPause, CapSeek, CapSkipToNext, CapSkipToPrevious, CapSetSpeed} {
		if c&cap != 0 {
			result = append(result, cap)
		}
	}

	return result
}

// CapableOf returns true if c includes all given capabilities.
func (c Capability) CapableOf(capabilities ...Capability) bool {
	var mask Capability
	for _, cap := range capabilities {
		mask |= cap
	}

	return c&mask == mask
}

// NowPlayingMetadata describes the media artefact currently loaded by
// the playback engine. It is mirrored into the native media session
// on every chapter or track change and lives only for the current
// playback session.
type NowPlayingMetadata struct {
	MediaID            string `json:"mediaId"`
	Title              string `json:"title"`
	Artist             string `json:"artist"`
	Album              string `json:"album"`
	DurationMillis     int64  `json:"durationMillis"`
	ArtworkURI         string `json:"artworkUri,omitempty"`
	DisplayTitle       string `json:"displayTitle,omitempty"`
	DisplaySubtitle    string `json:"displaySubtitle,omitempty"`
	DisplayDescription string `json:"displayDescription,omitempty"`
}

// Duration returns the media duration.
func (md NowPlayingMetadata) Duration() time.Duration {
	return time.Duration(md.DurationMillis) * time.Millisecond
}

// PlaybackStateSnapshot captures the transport state at one instant.
// It is recomputed on every position tick and transport event; no
// history is retained.
type PlaybackStateSnapshot struct {
	PositionMillis int64      `json:"positionMillis"`
	IsPlaying      bool       `json:"isPlaying"`
	Speed          float64    `json:"speed"`
	Actions        Capability `json:"actions"`
	GeneratedAt    int64      `json:"generatedAt"`
}

// NewPlaybackStateSnapshot returns a snapshot stamped with the
// current time and the default capability set.
func NewPlaybackStateSnapshot(positionMillis int64, playing bool, speed float64) PlaybackStateSnapshot {
	return PlaybackStateSnapshot{
		PositionMillis: positionMillis,
		IsPlaying:      playing,
		Speed:          speed,
		Actions:        CapDefault,
		GeneratedAt:    time.Now().UnixMilli(),
	}
}

// Position returns the playback position.
func (st PlaybackStateSnapshot) Position() time.Duration {
	return time.Duration(st.PositionMillis) * time.Millisecond
}
