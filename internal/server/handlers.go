package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/deepwiki-go/mcpbridge/internal/stream"
	"github.com/deepwiki-go/mcpbridge/internal/wiki"
)

const healthProbeTimeout = 5 * time.Second

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "deepwiki-mcp-bridge",
		"endpoints": []string{
			"GET /health",
			"POST /query",
			"GET /ws/query",
			"GET /tools",
			"POST /tools/call",
		},
	})
}

// handleHealth reports the gateway's own readiness plus a live probe of the
// upstream. The endpoint answers 200 only when the upstream is serving, so
// it can back a load balancer check directly.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()

	status, err := s.wiki.Health(ctx)
	payload := map[string]any{
		"status":       string(status),
		"ready":        s.registry.Ready(),
		"deepwiki_api": s.wiki.BaseURL(),
	}
	if err != nil {
		payload["error"] = err.Error()
	}

	code := http.StatusOK
	if status != wiki.StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, payload)
}

// handleQuery runs one repository query. The request body is the full
// query_repository argument object; "stream": true switches the response
// from a single JSON answer to newline-delimited relay envelopes.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var opts struct {
		Stream bool `json:"stream"`
	}
	// Malformed bodies fall through to argument validation, which reports
	// the parse error properly.
	json.Unmarshal(body, &opts)

	if opts.Stream {
		s.relayResponse(w, r, "query_repository", body)
		return
	}

	answer, err := s.registry.Invoke(r.Context(), "query_repository", body)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	type descriptor struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		InputSchema map[string]any `json:"input_schema"`
	}
	var listed []descriptor
	for _, t := range s.registry.Tools() {
		listed = append(listed, descriptor{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Schema(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": listed})
}

// handleToolCall invokes one named tool. The body carries the tool name
// and its argument object; "stream": true selects relay mode.
func (s *Server) handleToolCall(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var call struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
		Stream    bool            `json:"stream"`
	}
	if err := json.Unmarshal(body, &call); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse tool call: "+err.Error())
		return
	}
	if call.Name == "" {
		writeError(w, http.StatusBadRequest, "tool name is required")
		return
	}

	if call.Stream {
		s.relayResponse(w, r, call.Name, call.Arguments)
		return
	}

	result, err := s.registry.Invoke(r.Context(), call.Name, call.Arguments)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": result})
}

// relayResponse streams relay envelopes as newline-delimited JSON, flushing
// after each one. Failures past the first envelope arrive in-band as the
// terminal envelope since the status line is already on the wire.
func (s *Server) relayResponse(w http.ResponseWriter, r *http.Request, tool string, args json.RawMessage) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming is not supported by this connection")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	sink := stream.SinkFunc(func(e stream.Envelope) error {
		if err := enc.Encode(e); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})

	// The relay always terminates the envelope stream itself; nothing more
	// can be written to the response after it returns.
	s.registry.Relay(r.Context(), tool, args, sink)
}
