// Package tools is the invocation facade of the gateway: named tools with
// generated JSON Schemas, argument validation ahead of any upstream call,
// and a registry that gates invocations on process readiness.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	invopop "github.com/invopop/jsonschema"
	santhosh "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/deepwiki-go/mcpbridge/internal/stream"
)

// Handler executes one decoded invocation. sink is non-nil only in relay
// mode; in aggregate mode the handler returns the complete result string.
type Handler[T any] func(ctx context.Context, args T, sink stream.Sink) (string, error)

// Tool is one registered operation: a name, a human description, a JSON
// Schema for its arguments, and the handler. The schema is generated once
// at construction and validated against on every invocation.
type Tool struct {
	name        string
	description string
	schema      map[string]any
	run         func(ctx context.Context, raw json.RawMessage, sink stream.Sink) (string, error)
}

func (t *Tool) Name() string        { return t.name }
func (t *Tool) Description() string { return t.description }

// Schema returns the argument schema as a JSON-marshalable map. Callers
// must not mutate it.
func (t *Tool) Schema() map[string]any { return t.schema }

// Invoke runs the tool in aggregate mode and returns the full result.
func (t *Tool) Invoke(ctx context.Context, raw json.RawMessage) (string, error) {
	return t.run(ctx, raw, nil)
}

// Relay runs the tool in relay mode. Every outcome is delivered to sink as
// envelopes ending with exactly one terminal envelope: streaming handlers
// terminate the sink themselves, and a handler that only returns an
// aggregate result has it sent as a single text envelope before the
// terminal one.
func (t *Tool) Relay(ctx context.Context, raw json.RawMessage, sink stream.Sink) error {
	tracked := &trackingSink{sink: sink}
	result, err := t.run(ctx, raw, tracked)
	if err != nil {
		if !tracked.terminated {
			tracked.Send(stream.Envelope{Error: err.Error(), Done: true})
		}
		return err
	}
	if tracked.terminated {
		return nil
	}
	if result != "" {
		if err := tracked.Send(stream.Envelope{Text: result}); err != nil {
			return err
		}
	}
	return tracked.Send(stream.Envelope{Done: true})
}

// trackingSink records whether a terminal envelope has passed through, so
// Relay knows when the handler already terminated the stream.
type trackingSink struct {
	sink       stream.Sink
	terminated bool
}

func (s *trackingSink) Send(e stream.Envelope) error {
	if e.Done {
		s.terminated = true
	}
	return s.sink.Send(e)
}

// New builds a Tool whose argument schema is reflected from T. Struct
// fields without omitempty become required properties; jsonschema tags
// add constraints and descriptions.
func New[T any](name, description string, run Handler[T]) (*Tool, error) {
	schemaMap, compiled, err := generateSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("failed to build schema for tool %s: %w", name, err)
	}

	t := &Tool{name: name, description: description, schema: schemaMap}
	t.run = func(ctx context.Context, raw json.RawMessage, sink stream.Sink) (string, error) {
		fail := func(err error) (string, error) {
			if sink != nil {
				sink.Send(stream.Envelope{Error: err.Error(), Done: true})
			}
			return "", err
		}

		if len(bytes.TrimSpace(raw)) == 0 {
			raw = json.RawMessage("{}")
		}
		doc, err := santhosh.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return fail(&ArgumentError{Tool: name, Reason: "json parse error: " + err.Error()})
		}
		if err := compiled.Validate(doc); err != nil {
			return fail(&ArgumentError{Tool: name, Reason: err.Error()})
		}
		var args T
		if err := json.Unmarshal(raw, &args); err != nil {
			return fail(&ArgumentError{Tool: name, Reason: "json parse error: " + err.Error()})
		}
		return run(ctx, args, sink)
	}
	return t, nil
}

// generateSchema reflects a JSON Schema for T and compiles a validator
// for it. Called once per tool at construction.
func generateSchema[T any]() (map[string]any, *santhosh.Schema, error) {
	var zero T

	// The reflector cannot expand a field-less struct; argument-free tools
	// get a plain open object schema.
	if typ := reflect.TypeOf(zero); typ != nil && typ.Kind() == reflect.Struct && typ.NumField() == 0 {
		schemaMap := map[string]any{"type": "object"}
		compiled, err := compileSchema(schemaMap)
		if err != nil {
			return nil, nil, err
		}
		return schemaMap, compiled, nil
	}

	r := invopop.Reflector{
		Anonymous:                 true,
		DoNotReference:            true,
		ExpandedStruct:            true,
		AllowAdditionalProperties: true,
	}
	reflected := r.Reflect(&zero)

	data, err := json.Marshal(reflected)
	if err != nil {
		return nil, nil, err
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(data, &schemaMap); err != nil {
		return nil, nil, err
	}
	// Dialect and id markers add nothing for argument validation and
	// confuse schema-consuming clients, so the published schema drops them.
	delete(schemaMap, "$schema")
	delete(schemaMap, "$id")

	compiled, err := compileSchema(schemaMap)
	if err != nil {
		return nil, nil, err
	}
	return schemaMap, compiled, nil
}

func compileSchema(schemaMap map[string]any) (*santhosh.Schema, error) {
	data, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, err
	}
	doc, err := santhosh.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	c := santhosh.NewCompiler()
	if err := c.AddResource("arguments.json", doc); err != nil {
		return nil, err
	}
	return c.Compile("arguments.json")
}
