package transport

import (
	"context"

	"github.com/gorilla/websocket"
)

// Dial connects to a gateway's websocket endpoint (e.g.
// "ws://127.0.0.1:9876/ws") and returns the framed Conn.
func Dial(ctx context.Context, url string) (Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return newWSConn(ws), nil
}
