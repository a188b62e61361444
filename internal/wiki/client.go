package wiki

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/deepwiki-go/mcpbridge/internal/stream"
)

// chatCompletionsPath is the single streaming endpoint the DeepWiki API
// exposes for answering repository questions.
const chatCompletionsPath = "/chat/completions/stream"

// maxErrorBodyBytes bounds how much of a non-2xx response body is read for
// the error message.
const maxErrorBodyBytes = 64 * 1024

// HealthStatus is the tri-state result of a health probe.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusError     HealthStatus = "error"
)

// Client talks to one DeepWiki API deployment. The HTTP client is shared
// across invocations for connection pooling and is safe for concurrent
// use; Client holds no other mutable state.
type Client struct {
	baseURL    string
	httpClient *http.Client
	verbose    bool
}

// NewClient creates a client for the given base URL. The HTTP client is
// injected by the process entry point, which owns its lifecycle; its
// timeout must cover the full streamed duration of an answer, not a single
// read, since fragments can arrive with long gaps.
func NewClient(baseURL string, httpClient *http.Client, verbose bool) *Client {
	return &Client{baseURL: baseURL, httpClient: httpClient, verbose: verbose}
}

// BaseURL returns the configured upstream base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// open POSTs the chat request and returns the streamed response body.
// Every failure is converted to a typed error here; no raw transport
// error escapes this boundary. The caller owns closing the body.
func (c *Client) open(ctx context.Context, req *ChatRequest) (io.ReadCloser, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	if c.verbose {
		slog.Info("deepwiki.request",
			"repo_url", req.RepoURL,
			"type", req.Type,
			"language", req.Language,
			"messages", len(req.Messages),
			"provider", req.Provider,
			"model", req.Model,
			"file_path", req.FilePath != "",
		)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &UnreachableError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		resp.Body.Close()
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: errBody}
	}
	if c.verbose {
		slog.Info("deepwiki.response", "status", resp.StatusCode)
	}
	return resp.Body, nil
}

// Ask runs one aggregate-mode query: it maps the invocation, consumes the
// whole upstream stream, and returns the concatenated answer. A stream
// that terminates abnormally yields an InterruptedError, never a partial
// answer presented as complete.
func (c *Client) Ask(ctx context.Context, inv *Invocation) (string, error) {
	if err := inv.Validate(); err != nil {
		return "", err
	}
	req := BuildChatRequest(inv)
	body, err := c.open(ctx, &req)
	if err != nil {
		return "", err
	}
	defer body.Close()

	answer, err := stream.Collect(stream.NewChunkReader(body))
	if err != nil {
		return "", &InterruptedError{Err: err}
	}
	if c.verbose {
		slog.Info("deepwiki.answer", "length", len(answer))
	}
	return answer, nil
}

// AskStream runs one relay-mode query: each raw chunk is forwarded to sink
// as it arrives, followed by exactly one terminal envelope. Failures
// before or during the stream are delivered to the sink as a single error
// envelope and returned. If the sink reports the caller gone, the upstream
// body is closed immediately so the in-flight read is abandoned.
func (c *Client) AskStream(ctx context.Context, inv *Invocation, sink stream.Sink) error {
	if err := inv.Validate(); err != nil {
		sink.Send(stream.Envelope{Error: err.Error(), Done: true})
		return err
	}
	req := BuildChatRequest(inv)
	body, err := c.open(ctx, &req)
	if err != nil {
		sink.Send(stream.Envelope{Error: err.Error(), Done: true})
		return err
	}
	defer body.Close()

	if err := stream.Relay(stream.NewChunkReader(body), sink); err != nil {
		// A failed sink means the caller went away; the upstream stream
		// itself was fine, so that is not an interruption.
		var sinkErr *stream.SinkError
		if errors.As(err, &sinkErr) {
			return err
		}
		return &InterruptedError{Err: err}
	}
	return nil
}

// Health probes the upstream root path with one GET. 200 means healthy,
// any other status unhealthy; a transport failure is reported as an error
// state along with the underlying cause.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return StatusError, err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return StatusError, &UnreachableError{Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyBytes))

	if resp.StatusCode == http.StatusOK {
		return StatusHealthy, nil
	}
	slog.Warn("deepwiki health check failed", "status", resp.StatusCode)
	return StatusUnhealthy, nil
}
