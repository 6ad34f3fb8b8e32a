package channel

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosed is returned for calls on a closed connection.
var ErrClosed = errors.New("channel: connection closed")

// DefaultCallTimeout bounds how long Call waits for a reply before the
// caller falls back to the relay path.
const DefaultCallTimeout = 10 * time.Second

const heartbeatInterval = 5 * time.Second

// HandlerFunc handles an incoming method call. It returns a result
// map, or a non-nil CallError to produce an error reply. Each call is
// served on its own goroutine, so a handler may issue calls back over
// the same connection.
type HandlerFunc func(method string, args map[string]string) (map[string]string, *CallError)

// Conn is one side of the command channel. Both sides may issue
// method calls; replies are correlated by request ID.
type Conn struct {
	conn     net.Conn
	localID  string
	remoteID string
	handler  HandlerFunc

	heartbeat *time.Ticker
	lastReqID uint64

	mu      sync.Mutex
	pending map[uint64]chan *Response
	closed  bool
	done    chan struct{}
}

// Dial connects to the bridge daemon at addr and returns the runtime
// side of the channel.
func Dial(addr string, handler HandlerFunc) (*Conn, error) {
	nc, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}

	c := newConn(nc, RuntimeID, BridgeID, handler)
	if err := c.writeMsg(c.newMsg(NamespaceConnection, typePayload(TypeConnect))); err != nil {
		nc.Close()
		return nil, err
	}

	return c, nil
}

// NewServerConn wraps an accepted net.Conn as the bridge side of the
// channel.
func NewServerConn(nc net.Conn, handler HandlerFunc) *Conn {
	return newConn(nc, BridgeID, RuntimeID, handler)
}

func newConn(nc net.Conn, localID, remoteID string, handler HandlerFunc) *Conn {
	c := &Conn{
		conn:      nc,
		localID:   localID,
		remoteID:  remoteID,
		handler:   handler,
		heartbeat: time.NewTicker(heartbeatInterval),
		pending:   make(map[uint64]chan *Response),
		done:      make(chan struct{}),
	}

	go c.listen()
	go c.keepalive()

	return c
}

func typePayload(msgType string) string {
	return `{ "type": "` + msgType + `" }`
}

func (c *Conn) newMsg(namespace, payload string) *Msg {
	return &Msg{c.localID, c.remoteID, namespace, payload}
}

// readMsg reads a message from the channel and blocks until it returns.
func (c *Conn) readMsg() (*Msg, error) {
	// Each message is prefixed with its length as a big-endian uint32.
	var n uint32
	if err := binary.Read(c.conn, binary.BigEndian, &n); err != nil {
		return nil, err
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(c.conn, buf); err != nil {
		return nil, err
	}

	msg := new(Msg)
	err := msg.UnmarshalBinary(buf)

	return msg, err
}

// writeMsg sends the message over the wire.
func (c *Conn) writeMsg(msg *Msg) error {
	data, err := msg.MarshalBinary()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	if err := binary.Write(c.conn, binary.BigEndian, uint32(len(data))); err != nil {
		return err
	}

	if _, err := c.conn.Write(data); err != nil {
		return err
	}

	return nil
}

func (c *Conn) listen() {
	defer c.teardown()

	for {
		msg, err := c.readMsg()
		if err != nil {
			if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
				continue
			}

			if !c.IsClosed() && !errors.Is(err, io.EOF) {
				log.Println("channel:", err)
			}
			return
		}

		switch msg.Namespace {
		case NamespaceHeartbeat:
			var h Header
			if err := json.Unmarshal([]byte(msg.Payload), &h); err != nil {
				continue
			}
			if h.Type == TypePing {
				c.writeMsg(c.newMsg(NamespaceHeartbeat, typePayload(TypePong)))
			}
		case NamespaceConnection:
			var h Header
			if err := json.Unmarshal([]byte(msg.Payload), &h); err != nil {
				continue
			}
			if h.Type == TypeClose {
				return
			}
		case NamespaceControl:
			c.handleControl(msg)
		default:
			log.Println("channel: unhandled msg:", msg)
		}
	}
}

// handleControl dispatches one control payload: requests go to the
// handler, responses to their waiting caller.
func (c *Conn) handleControl(msg *Msg) {
	var probe struct {
		RequestID uint64 `json:"requestId"`
		Method    string `json:"method"`
		Type      string `json:"type"`
	}
	if err := json.Unmarshal([]byte(msg.Payload), &probe); err != nil {
		log.Printf("channel: unexpected payload: %s\n", msg.Payload)
		return
	}

	if probe.Method != "" {
		var req Request
		if err := json.Unmarshal([]byte(msg.Payload), &req); err != nil {
			return
		}

		// Off the read loop: a handler that blocks, or calls back over
		// this connection, must not stall reply delivery.
		go c.serveRequest(&req)
		return
	}

	var resp Response
	if err := json.Unmarshal([]byte(msg.Payload), &resp); err != nil {
		return
	}

	c.mu.Lock()
	ch, ok := c.pending[resp.RequestID]
	if ok {
		delete(c.pending, resp.RequestID)
	}
	c.mu.Unlock()

	if ok {
		ch <- &resp
	} else {
		log.Printf("channel: orphan reply %d\n", resp.RequestID)
	}
}

// serveRequest runs the handler for one incoming call and writes the
// correlated reply.
func (c *Conn) serveRequest(req *Request) {
	resp := &Response{RequestID: req.RequestID, Type: TypeSuccess}
	if c.handler == nil {
		resp.Type = TypeError
		resp.Code = CodeUnknownMethod
		resp.Message = "no handler registered"
	} else if result, cerr := c.handler(req.Method, req.Args); cerr != nil {
		resp.Type = TypeError
		resp.Code = cerr.Code
		resp.Message = cerr.Message
	} else {
		resp.Result = result
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := c.writeMsg(c.newMsg(NamespaceControl, string(payload))); err != nil {
		log.Println("channel: reply failed:", err)
	}
}

func (c *Conn) keepalive() {
	// Ticker.Stop does not close the ticker channel, so ranging over
	// it would park this goroutine forever after teardown.
	for {
		select {
		case <-c.heartbeat.C:
			if err := c.writeMsg(c.newMsg(NamespaceHeartbeat, typePayload(TypePing))); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// Call invokes a method on the remote side and waits for its reply.
func (c *Conn) Call(method string, args map[string]string) (map[string]string, error) {
	if c.IsClosed() {
		return nil, ErrClosed
	}

	reqID := atomic.AddUint64(&c.lastReqID, 1)
	payload, err := json.Marshal(&Request{RequestID: reqID, Method: method, Args: args})
	if err != nil {
		return nil, err
	}

	respCh := make(chan *Response, 1)
	c.mu.Lock()
	c.pending[reqID] = respCh
	c.mu.Unlock()

	if err := c.writeMsg(c.newMsg(NamespaceControl, string(payload))); err != nil {
		c.mu.Lock()
		delete(c.pending, reqID)
		c.mu.Unlock()
		return nil, err
	}

	select {
	case resp := <-respCh:
		if err := resp.Err(); err != nil {
			return nil, err
		}
		return resp.Result, nil
	case <-c.done:
		return nil, ErrClosed
	case <-time.After(DefaultCallTimeout):
		c.mu.Lock()
		delete(c.pending, reqID)
		c.mu.Unlock()
		return nil, errors.New("channel: call timed out")
	}
}

// Done returns a channel that is closed when the connection has been
// torn down.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// IsClosed reports whether the connection has been torn down.
func (c *Conn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// teardown marks the connection closed and fails all pending calls.
func (c *Conn) teardown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	pending := c.pending
	c.pending = make(map[uint64]chan *Response)
	c.mu.Unlock()

	c.heartbeat.Stop()
	close(c.done)
	c.conn.Close()

	for id, ch := range pending {
		ch <- &Response{RequestID: id, Type: TypeError, Code: CodeChannelUnavailable, Message: "connection closed"}
	}
}

// Close sends a close notice to the remote side and tears down the
// underlying connection.
func (c *Conn) Close() error {
	if c.IsClosed() {
		return nil
	}

	c.writeMsg(c.newMsg(NamespaceConnection, typePayload(TypeClose)))
	c.teardown()

	return nil
}
