package tools

import (
	"errors"
	"fmt"
)

// Sentinel errors for the tool layer. Use errors.Is to check.
var (
	ErrNotReady     = errors.New("tool registry is not ready yet")
	ErrToolNotFound = errors.New("tool not found")
	ErrValidation   = errors.New("validation failed")
)

// ArgumentError reports arguments rejected before the tool body ran:
// malformed JSON, a schema violation, or a bad enum value. The reason is
// safe to send back to the caller for self-correction.
type ArgumentError struct {
	Tool   string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, e.Reason)
}

// Unwrap supports errors.Is(err, ErrValidation).
func (e *ArgumentError) Unwrap() error { return ErrValidation }
