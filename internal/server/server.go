// Package server is the HTTP surface of the gateway: direct query routes,
// the tool invocation routes, the WebSocket relay, and health reporting.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/deepwiki-go/mcpbridge/internal/config"
	"github.com/deepwiki-go/mcpbridge/internal/tools"
	"github.com/deepwiki-go/mcpbridge/internal/wiki"
)

// Server is the main HTTP server.
type Server struct {
	cfg        *config.Config
	wiki       *wiki.Client
	registry   *tools.Registry
	httpServer *http.Server
}

// New creates a server with all routes registered. The upstream client and
// registry are constructed by the caller, which owns their lifecycle.
func New(cfg *config.Config, client *wiki.Client, registry *tools.Registry) *Server {
	s := &Server{cfg: cfg, wiki: client, registry: registry}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /query", s.handleQuery)
	mux.HandleFunc("GET /ws/query", s.handleQuerySocket)

	mux.HandleFunc("GET /tools", s.handleListTools)
	mux.HandleFunc("POST /tools/call", s.handleToolCall)

	// OPTIONS for CORS preflight
	mux.HandleFunc("OPTIONS /", s.handleOptions)

	handler := corsMiddleware(verboseMiddleware(cfg, mux))

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		// No write timeout: relayed answers stream for as long as the
		// upstream takes, bounded by the upstream client's own timeout.
		IdleTimeout: 120 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped route handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts the server.
func (s *Server) ListenAndServe() error {
	slog.Info("server listening", "addr", s.httpServer.Addr, "deepwiki_api", s.wiki.BaseURL())
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
