package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiAPIClient is a direct HTTP client for the Google Gemini API.
// It supports multi-turn function calling, file uploads, and image
// generation via a separate image model.
type GeminiAPIClient struct {
	apiKey     string
	model      string
	imageModel string
	baseURL    string
	client     *http.Client
}

// NewGeminiAPIClient creates a new Gemini API client.
func NewGeminiAPIClient(apiKey, model string) *GeminiAPIClient {
	return &GeminiAPIClient{
		apiKey:     apiKey,
		model:      model,
		imageModel: model,
		baseURL:    defaultGeminiBaseURL,
		client:     &http.Client{Timeout: 120 * time.Second},
	}
}

// WithImageModel sets the model used for GenerateImage calls.
func (g *GeminiAPIClient) WithImageModel(model string) *GeminiAPIClient {
	if model != "" {
		g.imageModel = model
	}
	return g
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func (g *GeminiAPIClient) WithBaseURL(base string) *GeminiAPIClient {
	if base != "" {
		g.baseURL = strings.TrimRight(base, "/")
	}
	return g
}

// Name returns the provider name.
func (g *GeminiAPIClient) Name() string {
	return "gemini"
}

// Complete sends a non-streaming completion request to the Gemini API.
func (g *GeminiAPIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = g.model
	}

	payload, err := json.Marshal(g.buildRequestBody(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.baseURL, model, url.QueryEscape(g.apiKey))

	respBody, err := g.post(ctx, endpoint, payload)
	if err != nil {
		return nil, err
	}

	var result geminiAPIResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return g.responseToCompletion(&result, model, time.Since(start)), nil
}

// Stream sends a streaming completion request to the Gemini API.
func (g *GeminiAPIClient) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamEvent, error) {
	eventChan := make(chan StreamEvent)

	model := req.Model
	if model == "" {
		model = g.model
	}

	payload, err := json.Marshal(g.buildRequestBody(req))
	if err != nil {
		close(eventChan)
		return eventChan, fmt.Errorf("failed to marshal request: %w", err)
	}

	go g.streamRequest(ctx, eventChan, model, payload)
	return eventChan, nil
}

// GenerateImage asks the image model to render a single image from a
// text prompt. Returns the raw image bytes.
func (g *GeminiAPIClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	body := map[string]any{
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": []map[string]any{{"text": prompt}},
			},
		},
		"generationConfig": map[string]any{
			"responseModalities": []string{"TEXT", "IMAGE"},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.baseURL, g.imageModel, url.QueryEscape(g.apiKey))

	respBody, err := g.post(ctx, endpoint, payload)
	if err != nil {
		return nil, err
	}

	var result geminiAPIResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	for _, candidate := range result.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}
	return nil, &ProviderError{Provider: "gemini", Message: "no image in response"}
}

// UploadFile uploads a local file to the Gemini file API and returns a
// reference usable in user turns.
func (g *GeminiAPIClient) UploadFile(ctx context.Context, path, mimeType string) (FileRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileRef{}, fmt.Errorf("failed to read file: %w", err)
	}

	endpoint := fmt.Sprintf("%s/upload/v1beta/files?key=%s", g.baseURL, url.QueryEscape(g.apiKey))

	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(data))
	if err != nil {
		return FileRef{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mimeType)
	httpReq.Header.Set("X-Goog-Upload-Protocol", "raw")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return FileRef{}, fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return FileRef{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return FileRef{}, &ProviderError{Provider: "gemini", Code: resp.StatusCode, Message: string(respBody)}
	}

	var result struct {
		File struct {
			URI      string `json:"uri"`
			MimeType string `json:"mimeType"`
		} `json:"file"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return FileRef{}, fmt.Errorf("failed to parse upload response: %w", err)
	}

	return FileRef{URI: result.File.URI, MimeType: result.File.MimeType}, nil
}

// Helper methods

func (g *GeminiAPIClient) post(ctx context.Context, endpoint string, payload []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: "gemini", Code: resp.StatusCode, Message: string(respBody)}
	}
	return respBody, nil
}

func (g *GeminiAPIClient) buildRequestBody(req CompletionRequest) map[string]any {
	contents := make([]map[string]any, 0, len(req.Messages))
	for _, msg := range req.Messages {
		contents = append(contents, messageToContent(msg))
	}

	genConfig := map[string]any{}
	if req.MaxTokens > 0 {
		genConfig["maxOutputTokens"] = req.MaxTokens
	}
	if req.Temperature != nil {
		genConfig["temperature"] = *req.Temperature
	}

	body := map[string]any{
		"contents": contents,
	}
	if len(genConfig) > 0 {
		body["generationConfig"] = genConfig
	}

	if req.System != "" {
		body["systemInstruction"] = map[string]any{
			"parts": []map[string]any{{"text": req.System}},
		}
	}

	if len(req.Tools) > 0 {
		decls := make([]map[string]any, len(req.Tools))
		for i, t := range req.Tools {
			decls[i] = map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  parseJSONSchema(t.InputSchema),
			}
		}
		body["tools"] = []map[string]any{{"functionDeclarations": decls}}
	}

	return body
}

// messageToContent maps a Message onto Gemini's content/part shape.
// Tool turns become functionResponse parts, one per result, in order.
func messageToContent(msg Message) map[string]any {
	var parts []map[string]any

	switch msg.Role {
	case RoleModel:
		if msg.Content != "" {
			parts = append(parts, map[string]any{"text": msg.Content})
		}
		for _, call := range msg.ToolCalls {
			var args map[string]any
			if err := json.Unmarshal([]byte(call.Input), &args); err != nil {
				args = map[string]any{}
			}
			parts = append(parts, map[string]any{
				"functionCall": map[string]any{
					"name": call.Name,
					"args": args,
				},
			})
		}
		return map[string]any{"role": "model", "parts": parts}

	case RoleTool:
		for _, result := range msg.ToolResults {
			response := map[string]any{"result": result.Content}
			if result.IsError {
				response = map[string]any{"error": result.Content}
			}
			parts = append(parts, map[string]any{
				"functionResponse": map[string]any{
					"name":     result.Name,
					"response": response,
				},
			})
		}
		return map[string]any{"role": "user", "parts": parts}

	default:
		if msg.Content != "" {
			parts = append(parts, map[string]any{"text": msg.Content})
		}
		for _, f := range msg.Files {
			parts = append(parts, map[string]any{
				"fileData": map[string]any{
					"fileUri":  f.URI,
					"mimeType": f.MimeType,
				},
			})
		}
		if len(parts) == 0 {
			parts = append(parts, map[string]any{"text": ""})
		}
		return map[string]any{"role": "user", "parts": parts}
	}
}

func (g *GeminiAPIClient) streamRequest(ctx context.Context, eventChan chan StreamEvent, model string, payload []byte) {
	defer close(eventChan)

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse&key=%s",
		g.baseURL, model, url.QueryEscape(g.apiKey))

	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(payload))
	if err != nil {
		eventChan <- StreamEvent{Type: "error", Error: fmt.Sprintf("request creation failed: %v", err)}
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		eventChan <- StreamEvent{Type: "error", Error: fmt.Sprintf("request failed: %v", err)}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		eventChan <- StreamEvent{Type: "error", Error: fmt.Sprintf("API error (%d): %s", resp.StatusCode, string(body))}
		return
	}

	scanner := newServerSentEventScanner(resp.Body)
	var fullContent strings.Builder
	var toolCalls []ToolCall
	stopReason := ""

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimPrefix(line, "data: ")
		if line == "" {
			continue
		}

		var event geminiStreamEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue
		}

		for _, candidate := range event.Candidates {
			if candidate.FinishReason != "" {
				stopReason = candidate.FinishReason
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					fullContent.WriteString(part.Text)
					eventChan <- StreamEvent{Type: "delta", Content: part.Text}
				}
				if part.FunctionCall != nil {
					input, _ := json.Marshal(part.FunctionCall.Args)
					toolCalls = append(toolCalls, ToolCall{
						Name:  part.FunctionCall.Name,
						Input: string(input),
					})
				}
			}
		}
	}

	eventChan <- StreamEvent{
		Type: "done",
		Response: &CompletionResponse{
			Content:    fullContent.String(),
			StopReason: stopReason,
			ToolCalls:  toolCalls,
			Model:      model,
		},
	}
}

func (g *GeminiAPIClient) responseToCompletion(resp *geminiAPIResponse, model string, duration time.Duration) *CompletionResponse {
	var content strings.Builder
	var toolCalls []ToolCall

	if len(resp.Candidates) > 0 {
		candidate := resp.Candidates[0]
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				content.WriteString(part.Text)
			}
			if part.FunctionCall != nil {
				input, _ := json.Marshal(part.FunctionCall.Args)
				toolCalls = append(toolCalls, ToolCall{
					Name:  part.FunctionCall.Name,
					Input: string(input),
				})
			}
		}
	}

	stopReason := ""
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
		stopReason = resp.Candidates[0].FinishReason
	}

	return &CompletionResponse{
		Content:    content.String(),
		StopReason: stopReason,
		ToolCalls:  toolCalls,
		Usage: Usage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
		},
		Model:    model,
		Duration: duration,
	}
}

// API Response structures

type geminiAPIResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

type geminiCandidate struct {
	Content struct {
		Parts []geminiPart `json:"parts"`
		Role  string       `json:"role"`
	} `json:"content"`
	FinishReason string `json:"finishReason"`
}

type geminiPart struct {
	Text         string `json:"text,omitempty"`
	FunctionCall *struct {
		Name string         `json:"name"`
		Args map[string]any `json:"args"`
	} `json:"functionCall,omitempty"`
	InlineData *struct {
		MimeType string `json:"mimeType"`
		Data     []byte `json:"data"`
	} `json:"inlineData,omitempty"`
}

type geminiStreamEvent struct {
	Candidates []geminiCandidate `json:"candidates"`
}
