// Package channel implements the method-call command channel between
// the bridge daemon and the application runtime: length-prefixed
// protobuf envelopes carrying JSON payloads, with request-id
// correlation and heartbeats.
package channel

import (
	"errors"
	"fmt"

	"github.com/gogo/protobuf/proto"

	"github.com/widdle/reader/channel/internal/wire"
)

// Endpoint IDs used for the two sides of the pipe.
const (
	BridgeID  = "bridge-0"
	RuntimeID = "runtime-0"
)

// Reserved message namespaces.
const (
	NamespaceConnection = "urn:x-widdle:bridge.connection"
	NamespaceHeartbeat  = "urn:x-widdle:bridge.heartbeat"
	NamespaceControl    = "urn:x-widdle:bridge.control"
)

// Internal message types for the connection and heartbeat namespaces.
const (
	TypeConnect = "CONNECT"
	TypeClose   = "CLOSE"
	TypePing    = "PING"
	TypePong    = "PONG"
)

// Methods of the control namespace.
const (
	MethodRegisterMediaSession   = "registerMediaSession"
	MethodRegisterServiceSession = "registerServiceSession"
	MethodUpdateMetadata         = "updateMetadata"
	MethodUpdatePlaybackState    = "updatePlaybackState"
	MethodRefreshPlaybackState   = "refreshPlaybackState"
	MethodMediaSessionCommand    = "mediaSessionCommand"
	MethodHasDirectControl       = "hasDirectControl"
	MethodClearMediaSession      = "clearMediaSession"
)

// Error codes carried in error replies.
const (
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeRegisterError      = "REGISTER_ERROR"
	CodeMetadataError      = "METADATA_ERROR"
	CodeStateError         = "STATE_ERROR"
	CodeCommandError       = "COMMAND_ERROR"
	CodeUnknownMethod      = "UNKNOWN_METHOD"
	CodeChannelUnavailable = "CHANNEL_UNAVAILABLE"
)

// Msg is a bridge protocol data unit with textual payload.
type Msg struct {
	SourceID      string
	DestinationID string
	Namespace     string
	Payload       string
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (m *Msg) UnmarshalBinary(data []byte) error {
	bm := new(wire.BridgeMessage)
	if err := proto.Unmarshal(data, bm); err != nil {
		return err
	}

	m.SourceID = bm.GetSourceId()
	m.DestinationID = bm.GetDestinationId()
	m.Namespace = bm.GetNamespace()
	m.Payload = bm.GetPayloadUtf8()

	if bm.GetPayloadType() != wire.BridgeMessage_STRING {
		return errors.New("unsupported payload type")
	}

	return nil
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (m *Msg) MarshalBinary() ([]byte, error) {
	bm := &wire.BridgeMessage{
		ProtocolVersion: wire.BridgeMessage_BRIDGE_V1.Enum(),
		SourceId:        &m.SourceID,
		DestinationId:   &m.DestinationID,
		Namespace:       &m.Namespace,
		PayloadType:     wire.BridgeMessage_STRING.Enum(),
		PayloadUtf8:     &m.Payload,
	}

	return proto.Marshal(bm)
}

// String implements the fmt.Stringer interface.
func (m *Msg) String() string {
	return fmt.Sprintf("%s -> %s [%s] %s", m.SourceID, m.DestinationID, m.Namespace, m.Payload)
}

// Header contains the fields shared by all control payloads.
type Header struct {
	RequestID uint64 `json:"requestId,omitempty"`
	Type      string `json:"type"`
}

// Request is a method call on the control namespace. Arguments are a
// flat string-keyed map.
type Request struct {
	RequestID uint64            `json:"requestId"`
	Method    string            `json:"method"`
	Args      map[string]string `json:"args,omitempty"`
}

// Response reply types.
const (
	TypeSuccess = "success"
	TypeError   = "error"
)

// Response is the reply to a Request, correlated by request ID.
type Response struct {
	RequestID uint64            `json:"requestId"`
	Type      string            `json:"type"`
	Result    map[string]string `json:"result,omitempty"`
	Code      string            `json:"code,omitempty"`
	Message   string            `json:"message,omitempty"`
}

// Err returns the response's error, or nil for a success reply.
func (r *Response) Err() error {
	if r.Type != TypeError {
		return nil
	}

	return &CallError{Code: r.Code, Message: r.Message}
}

// CallError is an error reply from the remote side of the channel.
type CallError struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *CallError) Error() string {
	return e.Code + ": " + e.Message
}
