package channel

import (
	"strconv"

	"github.com/widdle/reader"
)

// Argument keys shared by the control methods. All arguments travel
// as a flat string-keyed map.
const (
	argMediaID            = "mediaId"
	argTitle              = "title"
	argArtist             = "artist"
	argAlbum              = "album"
	argDurationMillis     = "durationMillis"
	argArtworkURI         = "artworkUri"
	argDisplayTitle       = "displayTitle"
	argDisplaySubtitle    = "displaySubtitle"
	argDisplayDescription = "displayDescription"

	argPositionMillis = "positionMillis"
	argIsPlaying      = "isPlaying"
	argSpeed          = "speed"
	argActions        = "actions"
	argGeneratedAt    = "generatedAt"

	argAction    = "action"
	argTimestamp = "timestamp"

	// ArgToken carries a base64-free raw JSON token in register calls.
	ArgToken = "token"

	// ArgDirect is the hasDirectControl result key.
	ArgDirect = "direct"
)

// MetadataArgs flattens metadata into method-call arguments.
func MetadataArgs(md reader.NowPlayingMetadata) map[string]string {
	return map[string]string{
		argMediaID:            md.MediaID,
		argTitle:              md.Title,
		argArtist:             md.Artist,
		argAlbum:              md.Album,
		argDurationMillis:     strconv.FormatInt(md.DurationMillis, 10),
		argArtworkURI:         md.ArtworkURI,
		argDisplayTitle:       md.DisplayTitle,
		argDisplaySubtitle:    md.DisplaySubtitle,
		argDisplayDescription: md.DisplayDescription,
	}
}

// ParseMetadataArgs is the inverse of MetadataArgs. Unknown keys are
// ignored; missing keys yield zero values.
func ParseMetadataArgs(args map[string]string) reader.NowPlayingMetadata {
	duration, _ := strconv.ParseInt(args[argDurationMillis], 10, 64)

	return reader.NowPlayingMetadata{
		MediaID:            args[argMediaID],
		Title:              args[argTitle],
		Artist:             args[argArtist],
		Album:              args[argAlbum],
		DurationMillis:     duration,
		ArtworkURI:         args[argArtworkURI],
		DisplayTitle:       args[argDisplayTitle],
		DisplaySubtitle:    args[argDisplaySubtitle],
		DisplayDescription: args[argDisplayDescription],
	}
}

// StateArgs flattens a playback state snapshot into method-call
// arguments.
func StateArgs(st reader.PlaybackStateSnapshot) map[string]string {
	return map[string]string{
		argPositionMillis: strconv.FormatInt(st.PositionMillis, 10),
		argIsPlaying:      strconv.FormatBool(st.IsPlaying),
		argSpeed:          strconv.FormatFloat(st.Speed, 'f', -1, 64),
		argActions:        strconv.FormatUint(uint64(st.Actions), 10),
		argGeneratedAt:    strconv.FormatInt(st.GeneratedAt, 10),
	}
}

// ParseStateArgs is the inverse of StateArgs.
func ParseStateArgs(args map[string]string) reader.PlaybackStateSnapshot {
	position, _ := strconv.ParseInt(args[argPositionMillis], 10, 64)
	playing, _ := strconv.ParseBool(args[argIsPlaying])
	speed, _ := strconv.ParseFloat(args[argSpeed], 64)
	actions, _ := strconv.ParseUint(args[argActions], 10, 32)
	generatedAt, _ := strconv.ParseInt(args[argGeneratedAt], 10, 64)

	return reader.PlaybackStateSnapshot{
		PositionMillis: position,
		IsPlaying:      playing,
		Speed:          speed,
		Actions:        reader.Capability(actions),
		GeneratedAt:    generatedAt,
	}
}

// CommandArgs flattens a playback command into method-call arguments.
// Command parameters share the map with the action and timestamp;
// parameter keys never collide with the reserved two.
func CommandArgs(cmd reader.PlaybackCommand) map[string]string {
	args := map[string]string{
		argAction:    string(cmd.Action),
		argTimestamp: strconv.FormatInt(cmd.Timestamp, 10),
	}
	for k, v := range cmd.Params {
		args[k] = v
	}

	return args
}

// ParseCommandArgs is the inverse of CommandArgs.
func ParseCommandArgs(args map[string]string) reader.PlaybackCommand {
	timestamp, _ := strconv.ParseInt(args[argTimestamp], 10, 64)

	cmd := reader.PlaybackCommand{
		Action:    reader.Action(args[argAction]),
		Timestamp: timestamp,
	}

	for k, v := range args {
		if k == argAction || k == argTimestamp {
			continue
		}
		if cmd.Params == nil {
			cmd.Params = make(map[string]string)
		}
		cmd.Params[k] = v
	}

	return cmd
}
