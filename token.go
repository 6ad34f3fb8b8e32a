package reader

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Errors returned when parsing session tokens.
var (
	ErrEmptyToken   = errors.New("empty session token")
	ErrInvalidToken = errors.New("invalid session token")
)

// SessionToken is the serialized identity of a media session, usable
// to construct a controller for it in another process. The wire form
// is an opaque byte blob; callers must validate it by parsing before
// trusting it.
type SessionToken struct {
	BusName   string    `json:"busName"`
	Owner     uuid.UUID `json:"owner"`
	CreatedAt int64     `json:"createdAt"`
}

// NewSessionToken mints a token identifying the session reachable at
// the given bus name.
func NewSessionToken(busName string) SessionToken {
	return SessionToken{
		BusName:   busName,
		Owner:     uuid.New(),
		CreatedAt: time.Now().UnixMilli(),
	}
}

// ParseSessionToken deserializes a raw token blob. It fails on empty
// input, malformed bytes, and tokens missing an identity.
func ParseSessionToken(data []byte) (*SessionToken, error) {
	if len(data) == 0 {
		return nil, ErrEmptyToken
	}

	var token SessionToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, ErrInvalidToken
	}

	if token.BusName == "" || token.Owner == uuid.Nil {
		return nil, ErrInvalidToken
	}

	return &token, nil
}

// Bytes returns the wire form of the token.
func (t SessionToken) Bytes() []byte {
	data, err := json.Marshal(t)
	if err != nil {
		// All fields are marshalable; this cannot happen.
		panic(err)
	}

	return data
}
