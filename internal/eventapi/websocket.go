// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package eventapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/arancormonk/dsd-neo-sub008/internal/eventbus"
	"github.com/gorilla/websocket"
)

const wsBufferSize = 1024

type wsHandler struct {
	upgrader websocket.Upgrader
}

func newWSHandler() *wsHandler {
	return &wsHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:    wsBufferSize,
			WriteBufferSize:   wsBufferSize,
			EnableCompression: true,
			CheckOrigin:       func(_ *http.Request) bool { return true },
		},
	}
}

// handle upgrades the connection and streams events from bus's "events"
// topic until the client disconnects or the request context is done.
func (h *wsHandler) handle(ctx context.Context, bus eventbus.Bus, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade websocket", "error", err)
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Error("failed to close websocket", "error", err)
		}
	}()

	sub := bus.Subscribe(eventsTopic)
	defer func() {
		if err := sub.Close(); err != nil {
			slog.Error("failed to close event subscription", "error", err)
		}
	}()

	readFailed := make(chan struct{})
	go func() {
		for {
			t, msg, err := conn.ReadMessage()
			if err != nil {
				close(readFailed)
				return
			}
			if string(msg) == "PING" {
				if err := conn.WriteMessage(t, []byte("PONG")); err != nil {
					close(readFailed)
					return
				}
			}
		}
	}()

	writeFailed := make(chan struct{})
	go func() {
		for msg := range sub.Channel() {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Error("failed to write event to websocket", "error", err)
				close(writeFailed)
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
	case <-readFailed:
	case <-writeFailed:
	}
}
