package wiki

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ValidationError reports a missing or empty required invocation field.
// It is raised before any upstream request is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// UnreachableError reports a connection or DNS failure before any bytes
// were exchanged with the upstream.
type UnreachableError struct {
	Err error
}

func (e *UnreachableError) Error() string {
	return "deepwiki api unreachable: " + e.Err.Error()
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// HTTPError reports a non-2xx response from the upstream.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	status := fmt.Sprintf("%d", e.StatusCode)
	if text := http.StatusText(e.StatusCode); text != "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, text)
	}
	if msg := extractErrorMessage(e.Body); msg != "" {
		return fmt.Sprintf("deepwiki api returned HTTP %s: %s", status, msg)
	}
	if preview := compactBodyPreview(e.Body, 280); preview != "" {
		return fmt.Sprintf("deepwiki api returned HTTP %s with unparsed body: %s", status, preview)
	}
	return fmt.Sprintf("deepwiki api returned HTTP %s with empty error body", status)
}

// InterruptedError reports a failure mid-stream, after the upstream call
// succeeded and some fragments may already have been delivered.
type InterruptedError struct {
	Err error
}

func (e *InterruptedError) Error() string {
	return "deepwiki stream interrupted: " + e.Err.Error()
}

func (e *InterruptedError) Unwrap() error { return e.Err }

// extractErrorMessage digs a human-readable message out of an upstream
// error body. FastAPI deployments answer {"detail": ...}; other stacks use
// message/error variants, so a few common shapes are probed.
func extractErrorMessage(rawBody []byte) string {
	trimmed := strings.TrimSpace(string(rawBody))
	if trimmed == "" {
		return ""
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return ""
	}
	return errorMessageFromMap(payload)
}

func errorMessageFromMap(payload map[string]any) string {
	if v := trimmedString(payload["detail"]); v != "" {
		return v
	}
	if v := trimmedString(payload["message"]); v != "" {
		return v
	}
	if nested, ok := payload["error"].(map[string]any); ok {
		if msg := errorMessageFromMap(nested); msg != "" {
			return msg
		}
	}
	if v := trimmedString(payload["error"]); v != "" {
		return v
	}
	return ""
}

func trimmedString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func compactBodyPreview(rawBody []byte, maxLen int) string {
	trimmed := strings.TrimSpace(string(rawBody))
	if trimmed == "" {
		return ""
	}
	clean := strings.Join(strings.Fields(trimmed), " ")
	if len(clean) <= maxLen {
		return clean
	}
	return clean[:maxLen] + "..."
}
