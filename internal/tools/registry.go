package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/deepwiki-go/mcpbridge/internal/stream"
)

// Registry holds the registered tools and dispatches invocations. It
// starts not ready: invocations arriving before SetReady are rejected
// with ErrNotReady rather than queued or dropped, so early callers get
// an explicit retryable signal.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
	ready atomic.Bool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool, replacing any tool with the same name. Safe for
// concurrent use with lookups and invocations.
func (r *Registry) Register(t *Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// SetReady opens the registry for invocations. Called once the serving
// surface is bound and startup checks have run.
func (r *Registry) SetReady() {
	r.ready.Store(true)
}

func (r *Registry) Ready() bool { return r.ready.Load() }

// Tools returns all registered tools sorted by name for deterministic
// listings.
func (r *Registry) Tools() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	slices.Sort(names)
	out := make([]*Tool, 0, len(names))
	for _, name := range names {
		out = append(out, r.tools[name])
	}
	return out
}

// Get returns the named tool, or (nil, false) if not registered.
func (r *Registry) Get(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Invoke runs one aggregate-mode invocation. Each invocation gets its own
// id for log correlation.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (string, error) {
	tool, err := r.lookup(name)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	start := time.Now()
	slog.Info("tool invocation started", "id", id, "tool", name)

	result, err := tool.Invoke(ctx, args)
	if err != nil {
		slog.Error("tool invocation failed", "id", id, "tool", name, "duration", time.Since(start), "error", err)
		return "", err
	}
	slog.Info("tool invocation completed", "id", id, "tool", name, "duration", time.Since(start), "bytes", len(result))
	return result, nil
}

// Relay runs one relay-mode invocation. A lookup failure is delivered to
// the sink as the single terminal envelope so relay callers always see a
// terminated stream.
func (r *Registry) Relay(ctx context.Context, name string, args json.RawMessage, sink stream.Sink) error {
	tool, err := r.lookup(name)
	if err != nil {
		sink.Send(stream.Envelope{Error: err.Error(), Done: true})
		return err
	}

	id := uuid.NewString()
	start := time.Now()
	slog.Info("tool relay started", "id", id, "tool", name)

	if err := tool.Relay(ctx, args, sink); err != nil {
		slog.Error("tool relay failed", "id", id, "tool", name, "duration", time.Since(start), "error", err)
		return err
	}
	slog.Info("tool relay completed", "id", id, "tool", name, "duration", time.Since(start))
	return nil
}

func (r *Registry) lookup(name string) (*Tool, error) {
	if !r.ready.Load() {
		return nil, ErrNotReady
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return t, nil
}
