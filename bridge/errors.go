package bridge

// An Error is a bridge-boundary failure with a stable code. Codes
// cross the command channel unchanged, so callers on either side can
// assert on failure kinds instead of log output.
type Error struct {
	Code        string
	Description string
}

// Error implements the error interface.
func (err *Error) Error() string {
	return err.Description
}

// Bridge error values. Nothing here is fatal: every one marks a
// degradation to a lower-fidelity path, not a stop.
var (
	ErrInvalidToken       = &Error{"INVALID_TOKEN", "session token did not deserialize"}
	ErrRegister           = &Error{"REGISTER_ERROR", "could not construct session handle"}
	ErrMetadata           = &Error{"METADATA_ERROR", "metadata push failed"}
	ErrState              = &Error{"STATE_ERROR", "playback state push failed"}
	ErrCommand            = &Error{"COMMAND_ERROR", "command dispatch failed"}
	ErrChannelUnavailable = &Error{"CHANNEL_UNAVAILABLE", "no application runtime connected"}
	ErrMailbox            = &Error{"MAILBOX_ERROR", "relay mailbox write failed"}
)
