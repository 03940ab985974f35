package transport

import (
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teamspace/presence/constants"
)

// WSConn is one persistent websocket connection. Reads happen from a
// single goroutine; writes from any goroutine are serialized so frames
// are never interleaved.
type WSConn struct {
	conn         *websocket.Conn
	writeMu      sync.Mutex
	writeTimeout time.Duration
}

// Dial opens a websocket connection to the given ws:// or wss:// URL.
func Dial(endpoint string, dialTimeout, writeTimeout time.Duration) (*WSConn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.Dial(endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	return &WSConn{
		conn:         conn,
		writeTimeout: writeTimeout,
	}, nil
}

// ResolveEndpoint turns an http(s) base URL plus the well-known presence
// path into the matching ws(s) URL, upgrading secure to secure.
func ResolveEndpoint(base, path string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse endpoint base: %w", err)
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	case "http", "ws":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("endpoint base %q: unsupported scheme %q", base, u.Scheme)
	}
	u.Path = path
	return u.String(), nil
}

// ReadMessage blocks until one message arrives or the connection fails.
func (c *WSConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", constants.ErrConnectionClosed, err)
	}
	return data, nil
}

// WriteMessage sends one text frame, honoring the write timeout.
func (c *WSConn) WriteMessage(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return fmt.Errorf("%w: %s", constants.ErrWriteTimeout, err)
		}
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("%w: %s", constants.ErrConnectionClosed, err)
	}
	return nil
}

// Close closes the underlying connection. Further reads and writes fail.
func (c *WSConn) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the remote network address.
func (c *WSConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
