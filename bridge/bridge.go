// Package bridge routes playback commands from system surfaces to the
// application runtime and mirrors metadata and playback state the
// other way, tolerating the absence of a live, directly-controllable
// session at every step.
package bridge

import (
	"log"
	"sync"

	"github.com/widdle/reader"
	"github.com/widdle/reader/artwork"
	"github.com/widdle/reader/channel"
)

// RuntimeCaller is the live command channel to the application
// runtime, if one is connected.
type RuntimeCaller interface {
	Call(method string, args map[string]string) (map[string]string, error)
	IsClosed() bool
}

// Config wires a Bridge's collaborators. All fields are optional;
// missing ones shrink the set of paths a command can take.
type Config struct {
	// OwnerID identifies this process on the session bus. Direct
	// control is only exercised against controllers whose owner
	// matches it.
	OwnerID string

	// Session is the locally-owned media session, used as the
	// fallback emitter for updates.
	Session reader.MediaSession

	// Mailbox is the durable last-resort command channel.
	Mailbox reader.Mailbox

	// Launcher cold-starts the application process when no runtime is
	// connected.
	Launcher reader.Launcher

	// NewController builds a controller handle from a token's bus
	// name.
	NewController func(busName string) (reader.Controller, error)

	// NewTarget builds an update-target handle from a token's bus
	// name.
	NewTarget func(busName string) (reader.MediaSession, error)

	// Artwork rewrites metadata artwork URIs into bounded cached
	// copies before they cross into the session layer.
	Artwork *artwork.Loader
}

// Bridge is the mediator between the playback engine and the native
// media session. One instance per process, owned by the composition
// root and passed down explicitly.
//
// The host frameworks do not serialize our callbacks, so the bridge
// locks around its handle state.
type Bridge struct {
	cfg Config

	mu           sync.Mutex
	controller   reader.Controller
	binding      SessionBinding
	runtime      RuntimeCaller
	lastMetadata *reader.NowPlayingMetadata
	lastState    *reader.PlaybackStateSnapshot
}

// New returns a bridge with the owned session (if any) pre-bound.
func New(cfg Config) *Bridge {
	b := &Bridge{cfg: cfg}
	if cfg.Session != nil {
		b.binding.BindOwned(cfg.Session)
	}

	return b
}

// BindSession installs the locally-owned session after construction
// and records its owner identity for direct-control checks. Used when
// the session cannot exist before the bridge, e.g. when the bridge is
// the session's command sink.
func (b *Bridge) BindSession(s reader.MediaSession, ownerID string) {
	b.mu.Lock()
	b.binding.BindOwned(s)
	b.cfg.OwnerID = ownerID
	b.mu.Unlock()
}

// AttachRuntime installs the live channel to the application runtime.
func (b *Bridge) AttachRuntime(rc RuntimeCaller) {
	b.mu.Lock()
	b.runtime = rc
	b.mu.Unlock()
}

// DetachRuntime drops the runtime channel if rc is still the one
// attached.
func (b *Bridge) DetachRuntime(rc RuntimeCaller) {
	b.mu.Lock()
	if b.runtime == rc {
		b.runtime = nil
	}
	b.mu.Unlock()
}

// RegisterSessionToken rebuilds the controller handle from a raw
// session token. It fails safe: on a bad token or an unconstructible
// handle the prior controller state is left unchanged and "no
// controller" remains a valid steady state.
func (b *Bridge) RegisterSessionToken(data []byte) error {
	token, err := reader.ParseSessionToken(data)
	if err != nil {
		log.Println("bridge: register session:", err)
		return ErrInvalidToken
	}

	if b.cfg.NewController == nil {
		log.Println("bridge: register session: no controller factory")
		return ErrRegister
	}

	ctrl, err := b.cfg.NewController(token.BusName)
	if err != nil {
		log.Println("bridge: register session:", err)
		return ErrRegister
	}

	b.mu.Lock()
	b.controller = ctrl
	b.mu.Unlock()

	return nil
}

// RegisterServiceSession sets the external update target from a raw
// session token, with the same fail-safe contract as
// RegisterSessionToken.
func (b *Bridge) RegisterServiceSession(data []byte) error {
	token, err := reader.ParseSessionToken(data)
	if err != nil {
		log.Println("bridge: register service session:", err)
		return ErrInvalidToken
	}

	if b.cfg.NewTarget == nil {
		log.Println("bridge: register service session: no target factory")
		return ErrRegister
	}

	target, err := b.cfg.NewTarget(token.BusName)
	if err != nil {
		log.Println("bridge: register service session:", err)
		return ErrRegister
	}

	b.mu.Lock()
	b.binding.BindExternal(target)
	b.mu.Unlock()

	return nil
}

// ClearSession drops the controller handle and the external target.
// The owned session stays bound.
func (b *Bridge) ClearSession() {
	b.mu.Lock()
	b.controller = nil
	b.binding.ClearExternal()
	b.lastMetadata = nil
	b.lastState = nil
	b.mu.Unlock()
}

// HasDirectControl reports whether a same-owner controller handle is
// bound, i.e. whether ExecuteCommand may take the direct path.
func (b *Bridge) HasDirectControl() bool {
	b.mu.Lock()
	ctrl := b.controller
	owner := b.cfg.OwnerID
	b.mu.Unlock()

	if ctrl == nil || owner == "" {
		return false
	}

	return ctrl.Owner() == owner
}

// Deliver implements reader.CommandSink for the owned session:
// commands arriving from system surfaces are routed to the
// application runtime. The direct path is never taken here, because
// commands from our own session must reach our own engine.
func (b *Bridge) Deliver(cmd reader.PlaybackCommand) error {
	return b.ExecuteCommand(cmd, false)
}

// ExecuteCommand routes one playback command. If allowDirect is set
// and a same-owner controller is bound, the transport control is
// invoked synchronously; a failure there falls through to the relay
// path exactly once, with no retry. The relay path tries the command
// channel, then a cold process launch, and unconditionally persists
// the command to the mailbox when the channel could not deliver it.
func (b *Bridge) ExecuteCommand(cmd reader.PlaybackCommand, allowDirect bool) error {
	if allowDirect {
		b.mu.Lock()
		ctrl := b.controller
		owner := b.cfg.OwnerID
		b.mu.Unlock()

		if ctrl != nil && owner != "" && ctrl.Owner() == owner {
			err := cmd.Dispatch(ctrl)
			if err == nil {
				return nil
			}
			log.Printf("bridge: direct %s failed, relaying: %v\n", cmd.Action, err)
		}
	}

	return b.relay(cmd)
}

// relay delivers a command without a controller: channel, then
// process launch plus durable mailbox. The OS may hand us a control
// event while the application process is fully dead; the mailbox is
// what survives that.
func (b *Bridge) relay(cmd reader.PlaybackCommand) error {
	b.mu.Lock()
	rt := b.runtime
	b.mu.Unlock()

	if rt != nil && !rt.IsClosed() {
		_, err := rt.Call(channel.MethodMediaSessionCommand, channel.CommandArgs(cmd))
		if err == nil {
			return nil
		}
		log.Printf("bridge: channel relay %s failed: %v\n", cmd.Action, err)
	}

	if b.cfg.Launcher != nil {
		if err := b.cfg.Launcher.Launch(cmd); err != nil {
			log.Printf("bridge: launch for %s failed: %v\n", cmd.Action, err)
		}
	}

	if b.cfg.Mailbox == nil {
		return ErrChannelUnavailable
	}
	if err := b.cfg.Mailbox.PostCommand(cmd); err != nil {
		log.Printf("bridge: mailbox write for %s failed: %v\n", cmd.Action, err)
		return ErrMailbox
	}

	return nil
}

// UpdateMetadata mirrors metadata into the current update target.
// With no target bound this logs and no-ops; it never escalates.
func (b *Bridge) UpdateMetadata(md reader.NowPlayingMetadata) error {
	b.mu.Lock()
	target := b.binding.Target()
	b.mu.Unlock()

	if target == nil {
		log.Println("bridge: update metadata: no session bound")
		return nil
	}

	if md.ArtworkURI != "" && b.cfg.Artwork != nil {
		if u, err := b.cfg.Artwork.CacheURL(md.ArtworkURI); err == nil {
			md.ArtworkURI = u
		} else {
			// No artwork beats oversized or broken artwork.
			log.Println("bridge: artwork:", err)
			md.ArtworkURI = ""
		}
	}

	if err := target.SetMetadata(md); err != nil {
		log.Println("bridge: update metadata:", err)
		return ErrMetadata
	}

	b.mu.Lock()
	b.lastMetadata = &md
	b.mu.Unlock()

	return nil
}

// UpdatePlaybackState mirrors a state snapshot into the current
// update target. Safe to call at tick cadence and with no session
// bound.
func (b *Bridge) UpdatePlaybackState(st reader.PlaybackStateSnapshot) error {
	b.mu.Lock()
	target := b.binding.Target()
	b.mu.Unlock()

	if target == nil {
		log.Println("bridge: update state: no session bound")
		return nil
	}

	if err := target.SetPlaybackState(st); err != nil {
		log.Println("bridge: update state:", err)
		return ErrState
	}

	b.mu.Lock()
	b.lastState = &st
	b.mu.Unlock()

	return nil
}

// RefreshPlaybackState re-pushes the last known metadata and state
// into the current target and returns the last state, if any.
func (b *Bridge) RefreshPlaybackState() *reader.PlaybackStateSnapshot {
	b.mu.Lock()
	md := b.lastMetadata
	st := b.lastState
	b.mu.Unlock()

	if md != nil {
		if err := b.UpdateMetadata(*md); err != nil {
			log.Println("bridge: refresh:", err)
		}
	}
	if st != nil {
		if err := b.UpdatePlaybackState(*st); err != nil {
			log.Println("bridge: refresh:", err)
		}
	}

	return st
}

// FlushMailbox hands any pending mailbox command to the freshly
// attached runtime. Called when the application runtime connects.
func (b *Bridge) FlushMailbox() {
	if b.cfg.Mailbox == nil {
		return
	}

	cmd, err := b.cfg.Mailbox.TakeCommand()
	if err != nil {
		log.Println("bridge: mailbox read:", err)
		return
	}
	if cmd == nil {
		return
	}

	b.mu.Lock()
	rt := b.runtime
	b.mu.Unlock()

	if rt == nil || rt.IsClosed() {
		// Put it back for the next connection.
		if err := b.cfg.Mailbox.PostCommand(*cmd); err != nil {
			log.Println("bridge: mailbox restore:", err)
		}
		return
	}

	if _, err := rt.Call(channel.MethodMediaSessionCommand, channel.CommandArgs(*cmd)); err != nil {
		log.Printf("bridge: mailbox flush %s failed: %v\n", cmd.Action, err)
		if err := b.cfg.Mailbox.PostCommand(*cmd); err != nil {
			log.Println("bridge: mailbox restore:", err)
		}
	}
}

// BindingKind exposes the current binding state, mostly for
// diagnostics.
func (b *Bridge) BindingKind() BindingKind {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.binding.Kind()
}
