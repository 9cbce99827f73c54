package api

import (
	"io"

	"golang.org/x/net/websocket"
)

// serveStream handles one live-stream peer. Each newly captured event
// that reaches this subscriber is sent as one JSON message; history is
// never replayed here, it is obtained via POST /api/logs. The
// subscription ends on client disconnect, on send failure, or when the
// hub evicts the peer as a slow consumer — all three simply close the
// connection, reconnecting is the client's business.
func (h *Handler) serveStream(conn *websocket.Conn) {
	defer conn.Close()

	sub := h.console.Subscribe()
	defer h.console.Unsubscribe(sub)

	// Inbound frames carry nothing; draining them is how we notice the
	// peer going away while we wait for events to deliver.
	done := make(chan struct{})
	go func() {
		defer close(done)
		io.Copy(io.Discard, conn)
	}()

	for {
		select {
		case ev, ok := <-sub.C():
			if !ok {
				// Evicted as a slow consumer.
				return
			}
			if err := websocket.JSON.Send(conn, ev); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
