package reader

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Action identifies a transport verb carried by a PlaybackCommand.
type Action string

// Actions understood by the bridge and the application runtime.
const (
	ActionPlay            Action = "play"
	ActionPause           Action = "pause"
	ActionSkipToNext      Action = "skipToNext"
	ActionSkipToPrevious  Action = "skipToPrevious"
	ActionSeekTo          Action = "seekTo"
	ActionSetSpeed        Action = "setSpeed"
	ActionPlayFromMediaID Action = "playFromMediaId"
	ActionPlayFromSearch  Action = "playFromSearch"
)

// Valid reports whether a is one of the defined actions.
func (a Action) Valid() bool {
	switch a {
	case ActionPlay, ActionPause, ActionSkipToNext, ActionSkipToPrevious,
		ActionSeekTo, ActionSetSpeed, ActionPlayFromMediaID, ActionPlayFromSearch:
		return true
	default:
		return false
	}
}

// Parameter keys used by actions that carry arguments.
const (
	ParamPosition = "position"
	ParamSpeed    = "speed"
	ParamMediaID  = "mediaId"
	ParamQuery    = "query"
)

// Errors returned when extracting typed parameters from a command.
var (
	ErrUnknownAction = errors.New("unknown playback action")
	ErrMissingParam  = errors.New("missing command parameter")
)

// PlaybackCommand is a single transport request. It is created on a
// user or system interaction and consumed at most once by whichever
// path picks it up. Timestamps are milliseconds since the Unix epoch.
type PlaybackCommand struct {
	Action    Action            `json:"action"`
	Params    map[string]string `json:"params,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

// NewCommand returns a command for an action that takes no arguments.
func NewCommand(action Action) PlaybackCommand {
	return PlaybackCommand{Action: action, Timestamp: time.Now().UnixMilli()}
}

// SeekTo returns a seekTo command targeting pos.
func SeekTo(positionMillis int64) PlaybackCommand {
	cmd := NewCommand(ActionSeekTo)
	cmd.Params = map[string]string{ParamPosition: strconv.FormatInt(positionMillis, 10)}
	return cmd
}

// SetSpeed returns a setSpeed command for the given playback rate.
func SetSpeed(speed float64) PlaybackCommand {
	cmd := NewCommand(ActionSetSpeed)
	cmd.Params = map[string]string{ParamSpeed: strconv.FormatFloat(speed, 'f', -1, 64)}
	return cmd
}

// PlayFromMediaID returns a playFromMediaId command for mediaID.
func PlayFromMediaID(mediaID string) PlaybackCommand {
	cmd := NewCommand(ActionPlayFromMediaID)
	cmd.Params = map[string]string{ParamMediaID: mediaID}
	return cmd
}

// PlayFromSearch returns a playFromSearch command for query.
func PlayFromSearch(query string) PlaybackCommand {
	cmd := NewCommand(ActionPlayFromSearch)
	cmd.Params = map[string]string{ParamQuery: query}
	return cmd
}

// Position returns the seek target of a seekTo command.
func (c PlaybackCommand) Position() (int64, error) {
	s, ok := c.Params[ParamPosition]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingParam, ParamPosition)
	}

	return strconv.ParseInt(s, 10, 64)
}

// Speed returns the playback rate of a setSpeed command.
func (c PlaybackCommand) Speed() (float64, error) {
	s, ok := c.Params[ParamSpeed]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingParam, ParamSpeed)
	}

	return strconv.ParseFloat(s, 64)
}

// MediaID returns the media identifier of a playFromMediaId command.
func (c PlaybackCommand) MediaID() (string, error) {
	s, ok := c.Params[ParamMediaID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, ParamMediaID)
	}

	return s, nil
}

// Query returns the search string of a playFromSearch command.
func (c PlaybackCommand) Query() (string, error) {
	s, ok := c.Params[ParamQuery]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, ParamQuery)
	}

	return s, nil
}

// MarshalBinary implements the encoding.BinaryMarshaler interface,
// producing the mailbox wire format.
func (c PlaybackCommand) MarshalBinary() ([]byte, error) {
	if !c.Action.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, c.Action)
	}

	return json.Marshal(c)
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (c *PlaybackCommand) UnmarshalBinary(data []byte) error {
	var parsed PlaybackCommand
	if err := json.Unmarshal(data, &parsed); err != nil {
		return err
	}
	if !parsed.Action.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownAction, parsed.Action)
	}

	*c = parsed
	return nil
}

// Dispatch applies the command to the given transport controls.
func (c PlaybackCommand) Dispatch(tc TransportControls) error {
	switch c.Action {
	case ActionPlay:
		return tc.Play()
	case ActionPause:
		return tc.Pause()
	case ActionSkipToNext:
		return tc.SkipToNext()
	case ActionSkipToPrevious:
		return tc.SkipToPrevious()
	case ActionSeekTo:
		pos, err := c.Position()
		if err != nil {
			return err
		}
		return tc.SeekTo(pos)
	case ActionSetSpeed:
		speed, err := c.Speed()
		if err != nil {
			return err
		}
		return tc.SetSpeed(speed)
	case ActionPlayFromMediaID:
		id, err := c.MediaID()
		if err != nil {
			return err
		}
		return tc.PlayFromMediaID(id)
	case ActionPlayFromSearch:
		q, err := c.Query()
		if err != nil {
			return err
		}
		return tc.PlayFromSearch(q)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, c.Action)
	}
}
