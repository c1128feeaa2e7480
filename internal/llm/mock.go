package llm

import "context"

// MockClient is a test double for Client. It also satisfies
// ImageGenerator and FileUploader when the corresponding funcs are set.
type MockClient struct {
	ProviderName      string
	CompleteFunc      func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	StreamFunc        func(ctx context.Context, req CompletionRequest) (<-chan StreamEvent, error)
	GenerateImageFunc func(ctx context.Context, prompt string) ([]byte, error)
	UploadFileFunc    func(ctx context.Context, path, mimeType string) (FileRef, error)
}

func (m *MockClient) Name() string { return m.ProviderName }

func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return &CompletionResponse{Content: "mock response"}, nil
}

func (m *MockClient) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamEvent, error) {
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, req)
	}
	ch := make(chan StreamEvent, 2)
	ch <- StreamEvent{Type: "delta", Content: "mock "}
	ch <- StreamEvent{
		Type: "done",
		Response: &CompletionResponse{Content: "mock stream response"},
	}
	close(ch)
	return ch, nil
}

func (m *MockClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if m.GenerateImageFunc != nil {
		return m.GenerateImageFunc(ctx, prompt)
	}
	return nil, &ProviderError{Provider: m.ProviderName, Message: "image generation not configured"}
}

func (m *MockClient) UploadFile(ctx context.Context, path, mimeType string) (FileRef, error) {
	if m.UploadFileFunc != nil {
		return m.UploadFileFunc(ctx, path, mimeType)
	}
	return FileRef{URI: "mock://" + path, MimeType: mimeType}, nil
}
