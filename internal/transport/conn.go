// Package transport provides the gateway's binary framed connection over
// a websocket, grounded on the same http.Handler/net.Listener shape the
// pack's daemon examples use to serve their control surfaces.
package transport

import (
	"context"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

// ErrClosed is returned by Send/Recv once the connection has been closed.
var ErrClosed = errors.New("transport: connection closed")

// Conn is one binary-framed duplex connection: one envelope per frame, no
// interleaving of partial messages.
type Conn interface {
	Send(ctx context.Context, frame []byte) error
	Recv(ctx context.Context) ([]byte, error)
	Close() error
}

// wsConn adapts a *websocket.Conn to Conn. Reads and writes are each
// serialized with their own mutex because gorilla/websocket forbids
// concurrent writers (and, separately, concurrent readers) on one
// connection, while a reader and a writer may run concurrently.
type wsConn struct {
	ws     *websocket.Conn
	closed chan struct{}

	readMu  sync.Mutex
	writeMu sync.Mutex
}

func newWSConn(ws *websocket.Conn) *wsConn {
	return &wsConn{ws: ws, closed: make(chan struct{})}
}

// Send writes frame as a single binary websocket message.
func (c *wsConn) Send(ctx context.Context, frame []byte) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if dl, ok := ctx.Deadline(); ok {
		_ = c.ws.SetWriteDeadline(dl)
	}
	return c.ws.WriteMessage(websocket.BinaryMessage, frame)
}

// Recv blocks for the next binary websocket message and returns its
// payload. Non-binary messages (ping/pong/close are handled internally by
// gorilla/websocket) never reach the caller.
func (c *wsConn) Recv(ctx context.Context) ([]byte, error) {
	select {
	case <-c.closed:
		return nil, ErrClosed
	default:
	}
	c.readMu.Lock()
	defer c.readMu.Unlock()
	if dl, ok := ctx.Deadline(); ok {
		_ = c.ws.SetReadDeadline(dl)
	}
	for {
		typ, data, err := c.ws.ReadMessage()
		if err != nil {
			return nil, err
		}
		if typ != websocket.BinaryMessage {
			continue
		}
		return data, nil
	}
}

// Close closes the underlying websocket connection.
func (c *wsConn) Close() error {
	select {
	case <-c.closed:
		return nil
	default:
		close(c.closed)
	}
	return c.ws.Close()
}
