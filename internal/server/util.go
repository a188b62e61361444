package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/deepwiki-go/mcpbridge/internal/tools"
	"github.com/deepwiki-go/mcpbridge/internal/wiki"
)

// maxBodyBytes limits the size of incoming request bodies.
const maxBodyBytes = 10 * 1024 * 1024 // 10 MB

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}
	return body, true
}

// errorStatus maps the error taxonomy onto HTTP statuses: caller mistakes
// are 4xx, upstream trouble is 502, an exhausted deadline 504.
func errorStatus(err error) int {
	var verr *wiki.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, tools.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, tools.ErrToolNotFound):
		return http.StatusNotFound
	case errors.Is(err, tools.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}

	var unreach *wiki.UnreachableError
	var httpErr *wiki.HTTPError
	var interrupted *wiki.InterruptedError
	if errors.As(err, &unreach) || errors.As(err, &httpErr) || errors.As(err, &interrupted) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
