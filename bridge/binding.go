package bridge

import (
	"github.com/widdle/reader"
)

// BindingKind names the state of the session binding.
type BindingKind int

// Binding states. ExternalTarget wins over OwnedSession when both
// handles are held.
const (
	Unbound BindingKind = iota
	OwnedSession
	ExternalTarget
)

// String returns the string representation of the binding kind.
func (k BindingKind) String() string {
	switch k {
	case Unbound:
		return "unbound"
	case OwnedSession:
		return "owned_session"
	case ExternalTarget:
		return "external_target"
	default:
		return "unknown"
	}
}

// SessionBinding holds the handles a bridge may push updates into:
// its own session (the fallback emitter) and an explicitly-set
// external target. The two are held concurrently and may refer to
// different underlying sessions; Target resolves which one wins.
type SessionBinding struct {
	owned    reader.MediaSession
	external reader.MediaSession
}

// BindOwned installs the locally-owned session.
func (b *SessionBinding) BindOwned(s reader.MediaSession) {
	b.owned = s
}

// BindExternal installs an external update target, which takes
// precedence over the owned session.
func (b *SessionBinding) BindExternal(s reader.MediaSession) {
	b.external = s
}

// ClearExternal drops the external target, falling back to the owned
// session if one is bound.
func (b *SessionBinding) ClearExternal() {
	b.external = nil
}

// Clear drops both handles.
func (b *SessionBinding) Clear() {
	b.owned = nil
	b.external = nil
}

// Kind returns the current binding state.
func (b *SessionBinding) Kind() BindingKind {
	switch {
	case b.external != nil:
		return ExternalTarget
	case b.owned != nil:
		return OwnedSession
	default:
		return Unbound
	}
}

// Target resolves the session updates should go to: the external
// target first, then the owned session, then nothing.
func (b *SessionBinding) Target() reader.MediaSession {
	if b.external != nil {
		return b.external
	}

	return b.owned
}
