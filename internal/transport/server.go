package transport

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// upgrader configures the websocket handshake. CheckOrigin always accepts:
// the gateway only ever listens on localhost, and the caller is a script
// running in the user's own browser or CLI, not a remote party.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler is invoked with a freshly upgraded Conn for each accepted
// websocket connection. The handler owns the connection's lifetime and
// must Close it when done.
type Handler func(Conn)

// RegisterWebSocketRoute mounts path on router, upgrading every matching
// request to a websocket and handing the resulting Conn to handle in its
// own goroutine.
func RegisterWebSocketRoute(router *mux.Router, path string, log *logrus.Logger, handle Handler) {
	router.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.WithError(err).Warn("transport: websocket upgrade failed")
			return
		}
		conn := newWSConn(ws)
		go handle(conn)
	})
}
