// Package llm defines the LLM client interface and the Gemini provider.
//
// Providers speak native function calling: a model turn may carry tool
// calls, and the follow-up turn carries the matching tool results. The
// agent loop drives that exchange without knowing which provider is
// behind the Client interface.
package llm

import (
	"context"
	"time"
)

// Role constants for conversation turns.
const (
	RoleUser  = "user"
	RoleModel = "model"
	RoleTool  = "tool"
)

// Finish reasons surfaced by providers.
const (
	FinishStop      = "STOP"
	FinishMaxTokens = "MAX_TOKENS"
	// FinishMalformed is reported by Gemini when the model emitted a
	// function call it could not serialize. The response may still carry
	// partial text worth keeping.
	FinishMalformed = "MALFORMED_FUNCTION_CALL"
)

// Message is a single turn in a conversation.
// A model turn may carry ToolCalls; a tool turn carries the matching
// ToolResults in call order. User turns may attach files.
type Message struct {
	Role        string       `json:"role"`
	Content     string       `json:"content,omitempty"`
	ToolCalls   []ToolCall   `json:"toolCalls,omitempty"`
	ToolResults []ToolResult `json:"toolResults,omitempty"`
	Files       []FileRef    `json:"files,omitempty"`
}

// ToolDefinition describes a tool the LLM can invoke.
type ToolDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema string `json:"inputSchema"` // JSON Schema string
}

// ToolCall is an LLM request to invoke a tool.
type ToolCall struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Input string `json:"input"` // JSON string
}

// ToolResult is the outcome of one tool call, fed back to the model.
type ToolResult struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	IsError bool   `json:"isError,omitempty"`
}

// FileRef points at an uploaded file the model can read.
type FileRef struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
}

// CompletionRequest is the input to a Complete or Stream call.
type CompletionRequest struct {
	Model       string           `json:"model,omitempty"`
	System      string           `json:"system,omitempty"`
	Messages    []Message        `json:"messages"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	MaxTokens   int              `json:"maxTokens,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
	Stream      bool             `json:"stream,omitempty"`
}

// CompletionResponse is the result of a non-streaming completion.
type CompletionResponse struct {
	Content    string        `json:"content"`
	StopReason string        `json:"stopReason,omitempty"`
	ToolCalls  []ToolCall    `json:"toolCalls,omitempty"`
	Usage      Usage         `json:"usage"`
	Model      string        `json:"model,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
}

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// StreamEvent is a chunk from a streaming completion.
type StreamEvent struct {
	Type    string `json:"type"`              // "delta", "done", "error"
	Content string `json:"content,omitempty"` // text delta
	Error   string `json:"error,omitempty"`   // error message (type="error")

	// Final fields (type="done")
	Response *CompletionResponse `json:"response,omitempty"`
}

// Client is the interface all LLM providers must implement.
type Client interface {
	// Complete sends a request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Stream sends a request and returns a channel of streaming events.
	Stream(ctx context.Context, req CompletionRequest) (<-chan StreamEvent, error)

	// Name returns the provider name (e.g., "gemini", "mock").
	Name() string
}

// ImageGenerator is implemented by providers that can render images.
// Callers type-assert; a provider without it degrades to text output.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// FileUploader is implemented by providers with a file API. Uploaded
// files are referenced from user turns via FileRef.
type FileUploader interface {
	UploadFile(ctx context.Context, path, mimeType string) (FileRef, error)
}
