package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/soyeahso/arena/internal/config"
	"github.com/soyeahso/arena/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func silentLog() *logging.Logger {
	return logging.New(nil, "silent")
}

// --- Registry tests ---

func TestRegistryRegisterAndResolve(t *testing.T) {
	reg := NewRegistry(silentLog())

	mock := &MockClient{ProviderName: "test-provider"}
	reg.Register("test-provider", mock)

	client, err := reg.Resolve("test-provider")
	require.NoError(t, err)
	assert.Equal(t, "test-provider", client.Name())
}

func TestRegistryAlias(t *testing.T) {
	reg := NewRegistry(silentLog())

	mock := &MockClient{ProviderName: "gemini"}
	reg.Register("gemini", mock)
	reg.Alias("flash", "gemini")
	reg.Alias("gemini-pro", "gemini")

	client, err := reg.Resolve("flash")
	require.NoError(t, err)
	assert.Equal(t, "gemini", client.Name())

	client, err = reg.Resolve("gemini-pro")
	require.NoError(t, err)
	assert.Equal(t, "gemini", client.Name())
}

func TestRegistryFallback(t *testing.T) {
	reg := NewRegistry(silentLog())

	mock := &MockClient{ProviderName: "default-llm"}
	reg.Register("default-llm", mock)
	reg.SetFallback("default-llm")

	// Unknown model should resolve to fallback
	client, err := reg.Resolve("unknown-model-xyz")
	require.NoError(t, err)
	assert.Equal(t, "default-llm", client.Name())
}

func TestRegistryResolveNotFound(t *testing.T) {
	reg := NewRegistry(silentLog())

	_, err := reg.Resolve("nonexistent")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no LLM provider")
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry(silentLog())
	reg.Register("a", &MockClient{ProviderName: "a"})
	reg.Register("b", &MockClient{ProviderName: "b"})

	names := reg.List()
	assert.Len(t, names, 2)
	assert.Contains(t, names, "a")
	assert.Contains(t, names, "b")
}

func TestNewRegistryFromConfig_Gemini(t *testing.T) {
	cfg := config.ProviderConfig{Name: "gemini", APIKey: "key", Model: "gemini-2.0-flash-exp"}
	reg := NewRegistryFromConfig(cfg, silentLog())

	client, err := reg.Resolve("anything")
	require.NoError(t, err)
	assert.Equal(t, "gemini", client.Name())
}

func TestNewRegistryFromConfig_Mock(t *testing.T) {
	cfg := config.ProviderConfig{Name: "mock"}
	reg := NewRegistryFromConfig(cfg, silentLog())

	client, err := reg.Resolve("mock")
	require.NoError(t, err)
	assert.Equal(t, "mock", client.Name())
}

// --- MockClient tests ---

func TestMockClientComplete(t *testing.T) {
	mock := &MockClient{
		ProviderName: "test",
		CompleteFunc: func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
			return &CompletionResponse{
				Content: "The answer is 42",
				Usage:   Usage{InputTokens: 10, OutputTokens: 5},
			}, nil
		},
	}

	resp, err := mock.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "What is the answer?"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "The answer is 42", resp.Content)
	assert.Equal(t, 10, resp.Usage.InputTokens)
}

func TestMockClientStream(t *testing.T) {
	mock := &MockClient{ProviderName: "test"}

	ch, err := mock.Stream(context.Background(), CompletionRequest{})
	require.NoError(t, err)

	var events []StreamEvent
	for evt := range ch {
		events = append(events, evt)
	}

	assert.Len(t, events, 2)
	assert.Equal(t, "delta", events[0].Type)
	assert.Equal(t, "done", events[1].Type)
}

func TestMockClientCompleteError(t *testing.T) {
	mock := &MockClient{
		ProviderName: "test",
		CompleteFunc: func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
			return nil, &ProviderError{Provider: "test", Message: "rate limited", Code: 429}
		},
	}

	_, err := mock.Complete(context.Background(), CompletionRequest{})
	assert.Error(t, err)

	var provErr *ProviderError
	assert.ErrorAs(t, err, &provErr)
	assert.Equal(t, 429, provErr.Code)
}

func TestMockClientDefaultComplete(t *testing.T) {
	mock := &MockClient{ProviderName: "default"}
	resp, err := mock.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "mock response", resp.Content)
}

// --- Gemini API tests ---

func geminiTestServer(t *testing.T, handler func(body map[string]any) any) (*httptest.Server, *GeminiAPIClient) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(data, &body)

		resp := handler(body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	client := NewGeminiAPIClient("test-key", "test-model").WithBaseURL(srv.URL)
	return srv, client
}

func TestGeminiComplete_Text(t *testing.T) {
	_, client := geminiTestServer(t, func(body map[string]any) any {
		return map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"role":  "model",
						"parts": []any{map[string]any{"text": "hello there"}},
					},
					"finishReason": "STOP",
				},
			},
			"usageMetadata": map[string]any{
				"promptTokenCount":     7,
				"candidatesTokenCount": 3,
			},
		}
	})

	resp, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello there", resp.Content)
	assert.Equal(t, FinishStop, resp.StopReason)
	assert.Equal(t, 7, resp.Usage.InputTokens)
	assert.Equal(t, 3, resp.Usage.OutputTokens)
	assert.Empty(t, resp.ToolCalls)
}

func TestGeminiComplete_FunctionCall(t *testing.T) {
	_, client := geminiTestServer(t, func(body map[string]any) any {
		return map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"role": "model",
						"parts": []any{
							map[string]any{"text": "Searching now."},
							map[string]any{"functionCall": map[string]any{
								"name": "search_papers",
								"args": map[string]any{"query": "transformers"},
							}},
						},
					},
					"finishReason": "STOP",
				},
			},
		}
	})

	resp, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "find papers"}},
		Tools: []ToolDefinition{
			{Name: "search_papers", Description: "search", InputSchema: `{"type":"object"}`},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Searching now.", resp.Content)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "search_papers", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"query":"transformers"}`, resp.ToolCalls[0].Input)
}

func TestGeminiComplete_MalformedFinishReason(t *testing.T) {
	_, client := geminiTestServer(t, func(body map[string]any) any {
		return map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"role":  "model",
						"parts": []any{map[string]any{"text": "partial answer before failure"}},
					},
					"finishReason": "MALFORMED_FUNCTION_CALL",
				},
			},
		}
	})

	resp, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, FinishMalformed, resp.StopReason)
	assert.Equal(t, "partial answer before failure", resp.Content)
}

func TestGeminiComplete_SendsConversationShape(t *testing.T) {
	var captured map[string]any
	_, client := geminiTestServer(t, func(body map[string]any) any {
		captured = body
		return map[string]any{
			"candidates": []any{map[string]any{
				"content":      map[string]any{"role": "model", "parts": []any{map[string]any{"text": "done"}}},
				"finishReason": "STOP",
			}},
		}
	})

	_, err := client.Complete(context.Background(), CompletionRequest{
		System: "be brief",
		Messages: []Message{
			{Role: RoleUser, Content: "find papers"},
			{Role: RoleModel, ToolCalls: []ToolCall{{Name: "search_papers", Input: `{"query":"x"}`}}},
			{Role: RoleTool, ToolResults: []ToolResult{{Name: "search_papers", Content: "3 papers found"}}},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, captured["systemInstruction"])

	contents, ok := captured["contents"].([]any)
	require.True(t, ok)
	require.Len(t, contents, 3)

	modelTurn := contents[1].(map[string]any)
	assert.Equal(t, "model", modelTurn["role"])
	parts := modelTurn["parts"].([]any)
	require.Len(t, parts, 1)
	fc := parts[0].(map[string]any)["functionCall"].(map[string]any)
	assert.Equal(t, "search_papers", fc["name"])

	toolTurn := contents[2].(map[string]any)
	assert.Equal(t, "user", toolTurn["role"])
	toolParts := toolTurn["parts"].([]any)
	require.Len(t, toolParts, 1)
	fr := toolParts[0].(map[string]any)["functionResponse"].(map[string]any)
	assert.Equal(t, "search_papers", fr["name"])
}

func TestGeminiComplete_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"quota exceeded"}`))
	}))
	t.Cleanup(srv.Close)

	client := NewGeminiAPIClient("k", "m").WithBaseURL(srv.URL)
	_, err := client.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, 429, provErr.Code)
}

func TestGeminiGenerateImage(t *testing.T) {
	imgBytes := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	_, client := geminiTestServer(t, func(body map[string]any) any {
		return map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role": "model",
					"parts": []any{map[string]any{
						"inlineData": map[string]any{"mimeType": "image/jpeg", "data": imgBytes},
					}},
				},
			}},
		}
	})

	data, err := client.GenerateImage(context.Background(), "a diagram of attention")
	require.NoError(t, err)
	assert.Equal(t, imgBytes, data)
}

func TestGeminiGenerateImage_NoImage(t *testing.T) {
	_, client := geminiTestServer(t, func(body map[string]any) any {
		return map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": "cannot draw that"}},
				},
			}},
		}
	})

	_, err := client.GenerateImage(context.Background(), "x")
	require.Error(t, err)

	var provErr *ProviderError
	assert.ErrorAs(t, err, &provErr)
}

// --- Misc ---

func TestProviderError(t *testing.T) {
	err := &ProviderError{Provider: "gemini", Message: "rate limited", Code: 429}
	assert.Equal(t, "gemini: 429 rate limited", err.Error())

	err2 := &ProviderError{Provider: "gemini", Message: "unknown error"}
	assert.Equal(t, "gemini: unknown error", err2.Error())
}

func TestCompletionRequestJSON(t *testing.T) {
	temp := 0.7
	req := CompletionRequest{
		Model:       "gemini-2.0-flash-exp",
		System:      "You are helpful.",
		Messages:    []Message{{Role: RoleUser, Content: "hi"}},
		MaxTokens:   1024,
		Temperature: &temp,
	}
	data, err := json.Marshal(req)
	require.NoError(t, err)

	var decoded CompletionRequest
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, req.Model, decoded.Model)
	assert.Equal(t, req.Messages[0].Content, decoded.Messages[0].Content)
}
