// Package reader defines the shared vocabulary of the Widdle Reader
// media bridge: playback commands, now-playing metadata, playback
// state snapshots and the session interfaces the bridge mediates
// between.
package reader

// MediaSession is an OS-level "now playing" object that system
// surfaces (lock screen, car head unit) observe. The bridge pushes
// metadata and state into it; pushes are expected at a 1-2 second
// cadence and must be cheap and idempotent.
type MediaSession interface {
	SetMetadata(md NowPlayingMetadata) error
	SetPlaybackState(st PlaybackStateSnapshot) error
	Release() error
}

// TransportControls is the verb set a media session exposes to its
// controllers.
type TransportControls interface {
	Play() error
	Pause() error
	SkipToNext() error
	SkipToPrevious() error
	SeekTo(positionMillis int64) error
	SetSpeed(speed float64) error
	PlayFromMediaID(mediaID string) error
	PlayFromSearch(query string) error
}

// Controller is a handle on a live media session owned by some
// process, usable to drive its transport controls directly.
type Controller interface {
	TransportControls

	// Owner returns the identity of the connection owning the
	// session, or an empty string if it cannot be resolved.
	Owner() string
}

// CommandSink receives playback commands routed by the bridge to the
// application runtime.
type CommandSink interface {
	Deliver(cmd PlaybackCommand) error
}

// Mailbox is the durable last-resort channel for playback commands,
// used when no live path to the application runtime exists. It holds
// at most one pending command; writes overwrite.
type Mailbox interface {
	PostCommand(cmd PlaybackCommand) error

	// TakeCommand returns the pending command and removes it. A nil
	// command with a nil error means the mailbox is empty.
	TakeCommand() (*PlaybackCommand, error)
}

// Launcher cold-starts the application process so it can pick up a
// pending command.
type Launcher interface {
	Launch(cmd PlaybackCommand) error
}
