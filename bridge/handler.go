package bridge

import (
	"errors"
	"strconv"
	"sync"

	"github.com/widdle/reader"
	"github.com/widdle/reader/channel"
)

// Handler returns the channel handler exposing the bridge's control
// methods to a connected application runtime.
func (b *Bridge) Handler() channel.HandlerFunc {
	return func(method string, args map[string]string) (map[string]string, *channel.CallError) {
		switch method {
		case channel.MethodRegisterMediaSession:
			return nil, callError(b.RegisterSessionToken([]byte(args[channel.ArgToken])))

		case channel.MethodRegisterServiceSession:
			return nil, callError(b.RegisterServiceSession([]byte(args[channel.ArgToken])))

		case channel.MethodUpdateMetadata:
			return nil, callError(b.UpdateMetadata(channel.ParseMetadataArgs(args)))

		case channel.MethodUpdatePlaybackState:
			return nil, callError(b.UpdatePlaybackState(channel.ParseStateArgs(args)))

		case channel.MethodRefreshPlaybackState:
			st := b.RefreshPlaybackState()
			if st == nil {
				return map[string]string{}, nil
			}
			return channel.StateArgs(*st), nil

		case channel.MethodMediaSessionCommand:
			cmd := channel.ParseCommandArgs(args)
			if !cmd.Action.Valid() {
				return nil, &channel.CallError{
					Code:    ErrCommand.Code,
					Message: reader.ErrUnknownAction.Error(),
				}
			}
			return nil, callError(b.ExecuteCommand(cmd, true))

		case channel.MethodHasDirectControl:
			return map[string]string{
				channel.ArgDirect: strconv.FormatBool(b.HasDirectControl()),
			}, nil

		case channel.MethodClearMediaSession:
			b.ClearSession()
			return nil, nil

		default:
			return nil, &channel.CallError{
				Code:    channel.CodeUnknownMethod,
				Message: "unknown method " + method,
			}
		}
	}
}

// HandlerFor returns the channel handler for a single connection. The
// connection is adopted as the bridge's runtime channel the first time
// the remote side makes a session-owning call; query-only clients
// never become the runtime, so a passing CLI connection cannot
// displace the application.
func (b *Bridge) HandlerFor(rc RuntimeCaller) channel.HandlerFunc {
	inner := b.Handler()
	var adopt sync.Once

	return func(method string, args map[string]string) (map[string]string, *channel.CallError) {
		switch method {
		case channel.MethodRegisterMediaSession, channel.MethodRegisterServiceSession,
			channel.MethodUpdateMetadata, channel.MethodUpdatePlaybackState:
			adopt.Do(func() {
				b.AttachRuntime(rc)
				b.FlushMailbox()
			})
		}

		return inner(method, args)
	}
}

// callError converts a bridge error into a channel error reply,
// keeping the code stable across the wire.
func callError(err error) *channel.CallError {
	if err == nil {
		return nil
	}

	var berr *Error
	if errors.As(err, &berr) {
		return &channel.CallError{Code: berr.Code, Message: berr.Description}
	}

	return &channel.CallError{Code: ErrCommand.Code, Message: err.Error()}
}
