package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/deepwiki-go/mcpbridge/internal/stream"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// handleQuerySocket serves one relayed query per connection: the client
// sends a single JSON argument object, receives relay envelopes until the
// terminal one, and the connection closes. An optional "tool" field in the
// message selects the tool; the default is the full query surface.
func (s *Server) handleQuerySocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	_, raw, err := conn.ReadMessage()
	if err != nil {
		return
	}

	var head struct {
		Tool string `json:"tool"`
	}
	json.Unmarshal(raw, &head)
	tool := head.Tool
	if tool == "" {
		tool = "query_repository"
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// A second reader watches for the client going away mid-relay and
	// cancels the upstream call, so an abandoned query stops consuming the
	// upstream.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	sink := stream.SinkFunc(func(e stream.Envelope) error {
		return conn.WriteJSON(e)
	})
	s.registry.Relay(ctx, tool, raw, sink)

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
