package agent

import (
	"encoding/json"
	"fmt"
)

// UnknownToolError is returned when the model calls a tool that is not
// registered.
type UnknownToolError struct {
	Tool string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Tool)
}

// SchemaError is returned when tool arguments fail JSON Schema
// validation before the tool runs.
type SchemaError struct {
	Tool   string
	Detail string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid arguments for tool %s: %s", e.Tool, e.Detail)
}

// ToolExecutionError wraps a failure from a tool that was dispatched
// successfully.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}

// MalformedResponseError is recorded when the provider reports it could
// not serialize the model's function call. The conversation aborts but
// any partial text is kept.
type MalformedResponseError struct {
	Partial string
}

func (e *MalformedResponseError) Error() string {
	return "model produced a malformed function call"
}

// IterationLimitError is recorded when the model still wants tools
// after the round-trip cap.
type IterationLimitError struct {
	Limit int
}

func (e *IterationLimitError) Error() string {
	return fmt.Sprintf("tool iteration limit reached (%d)", e.Limit)
}

// toolErrorPayload renders a tool failure as the structured JSON the
// model sees, so it can recover instead of the loop aborting.
func toolErrorPayload(tool string, err error) string {
	payload, _ := json.Marshal(map[string]string{
		"tool":          tool,
		"error_message": err.Error(),
	})
	return string(payload)
}
