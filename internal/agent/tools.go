package agent

import (
	"context"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/soyeahso/arena/internal/llm"
	"github.com/soyeahso/arena/internal/logging"
)

// Tool is a capability the agent can invoke during a conversation.
type Tool interface {
	// Name returns the tool's identifier.
	Name() string

	// Description returns a human-readable description for the LLM.
	Description() string

	// InputSchema returns the JSON Schema for the tool's input.
	InputSchema() string

	// Execute runs the tool with the given JSON input and returns output
	// text for the model.
	Execute(ctx context.Context, input string) (string, error)
}

// ToolRegistry holds available tools and validates call arguments
// against each tool's schema before dispatch.
type ToolRegistry struct {
	tools   map[string]Tool
	order   []string
	schemas map[string]*gojsonschema.Schema
	log     *logging.Logger
}

// NewToolRegistry creates an empty tool registry.
func NewToolRegistry(log *logging.Logger) *ToolRegistry {
	return &ToolRegistry{
		tools:   make(map[string]Tool),
		schemas: make(map[string]*gojsonschema.Schema),
		log:     log.Sub("tools"),
	}
}

// Register adds a tool, compiling its input schema. Registering a tool
// with a schema that does not compile is a programming error.
func (r *ToolRegistry) Register(t Tool) error {
	name := t.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}

	if s := t.InputSchema(); s != "" {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
		if err != nil {
			return fmt.Errorf("invalid input schema for tool %s: %w", name, err)
		}
		r.schemas[name] = schema
	}

	r.tools[name] = t
	r.order = append(r.order, name)
	r.log.Debug().Str("tool", name).Msg("registered tool")
	return nil
}

// Get returns a tool by name.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns tool names in registration order.
func (r *ToolRegistry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Definitions returns LLM-ready tool definitions in registration order.
func (r *ToolRegistry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, llm.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		})
	}
	return defs
}

// Dispatch validates the call's arguments and runs the tool. Failures
// come back as typed errors: UnknownToolError, SchemaError, or
// ToolExecutionError.
func (r *ToolRegistry) Dispatch(ctx context.Context, call llm.ToolCall) (string, error) {
	tool, ok := r.tools[call.Name]
	if !ok {
		return "", &UnknownToolError{Tool: call.Name}
	}

	input := call.Input
	if input == "" {
		input = "{}"
	}

	if schema, ok := r.schemas[call.Name]; ok {
		result, err := schema.Validate(gojsonschema.NewStringLoader(input))
		if err != nil {
			return "", &SchemaError{Tool: call.Name, Detail: err.Error()}
		}
		if !result.Valid() {
			detail := ""
			for i, desc := range result.Errors() {
				if i > 0 {
					detail += "; "
				}
				detail += desc.String()
			}
			return "", &SchemaError{Tool: call.Name, Detail: detail}
		}
	}

	r.log.Debug().Str("tool", call.Name).Msg("executing tool")
	output, err := tool.Execute(ctx, input)
	if err != nil {
		return "", &ToolExecutionError{Tool: call.Name, Err: err}
	}
	return output, nil
}
