package bridge

import (
	"log"
	"net"
	"strconv"
	"sync"

	"github.com/grandcat/zeroconf"
	"golang.org/x/sync/errgroup"

	"github.com/widdle/reader/channel"
)

// ZeroconfService is the mDNS service type the daemon announces.
const ZeroconfService = "_widdle-bridge._tcp"

// Server accepts application runtime connections on a TCP listener,
// announces the endpoint over mDNS, and keeps the bridge's runtime
// channel pointed at the most recent connection.
type Server struct {
	bridge *Bridge
	ln     net.Listener
	mdns   *zeroconf.Server

	mu     sync.Mutex
	closed bool
}

// NewServer binds a listener on addr and registers the mDNS service.
func NewServer(b *Bridge, addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		ln.Close()
		return nil, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		ln.Close()
		return nil, err
	}

	mdns, err := zeroconf.Register("Widdle Reader Bridge", ZeroconfService, "local.", port, nil, nil)
	if err != nil {
		ln.Close()
		return nil, err
	}

	return &Server{bridge: b, ln: ln, mdns: mdns}, nil
}

// Addr returns the listener's address.
func (srv *Server) Addr() net.Addr {
	return srv.ln.Addr()
}

// ListenAndServe accepts channel connections until the server is
// closed. A connection only becomes the bridge's runtime channel once
// it identifies itself with a session-owning call, so query-only
// clients cannot evict a live application runtime.
func (srv *Server) ListenAndServe() error {
	var g errgroup.Group

	g.Go(func() error {
		for {
			nc, err := srv.ln.Accept()
			if err != nil {
				srv.mu.Lock()
				closed := srv.closed
				srv.mu.Unlock()
				if closed {
					return nil
				}
				return err
			}

			rc := new(liveConn)
			conn := channel.NewServerConn(nc, srv.bridge.HandlerFor(rc))
			rc.set(conn)
			log.Println("bridge: connection from", nc.RemoteAddr())

			go func() {
				<-conn.Done()
				srv.bridge.DetachRuntime(rc)
				log.Println("bridge: connection closed", nc.RemoteAddr())
			}()
		}
	})

	return g.Wait()
}

// liveConn defers RuntimeCaller calls to a connection that is created
// after the handler needing it. The handler is installed at connection
// construction, so it cannot capture the connection directly.
type liveConn struct {
	mu   sync.Mutex
	conn *channel.Conn
}

func (lc *liveConn) set(c *channel.Conn) {
	lc.mu.Lock()
	lc.conn = c
	lc.mu.Unlock()
}

func (lc *liveConn) get() *channel.Conn {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.conn
}

// Call implements RuntimeCaller.
func (lc *liveConn) Call(method string, args map[string]string) (map[string]string, error) {
	c := lc.get()
	if c == nil {
		return nil, channel.ErrClosed
	}

	return c.Call(method, args)
}

// IsClosed implements RuntimeCaller.
func (lc *liveConn) IsClosed() bool {
	c := lc.get()
	return c == nil || c.IsClosed()
}

// Close stops accepting connections and withdraws the mDNS record.
func (srv *Server) Close() error {
	srv.mu.Lock()
	srv.closed = true
	srv.mu.Unlock()

	srv.mdns.Shutdown()

	return srv.ln.Close()
}
