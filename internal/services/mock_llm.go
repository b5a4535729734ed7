package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/plaidlibs/pkg/chat"
)

// MockLLMAPI is a mock implementation of LLMService and ImageGenerator for testing
type MockLLMAPI struct {
	InitModelFunc     func(ctx context.Context, modelName string) error
	GenerateFunc      func(ctx context.Context, prompt string, params chat.GenerationParams) (string, error)
	ChatFunc          func(ctx context.Context, messages []chat.ChatMessage, params chat.GenerationParams) (*chat.ChatResponse, error)
	GenerateImageFunc func(ctx context.Context, prompt string) (*chat.Image, error)
	IsModelReadyFunc  func(ctx context.Context, modelName string) (bool, error)

	// Track calls for testing
	InitModelCalls     []string
	GenerateCalls      []string
	ChatCalls          [][]chat.ChatMessage
	GenerateImageCalls []string
	IsModelReadyCalls  []string

	mu sync.Mutex // protects all fields above
}

var (
	_ LLMService     = (*MockLLMAPI)(nil)
	_ ImageGenerator = (*MockLLMAPI)(nil)
)

// mockPNG is the PNG signature, enough for content sniffing.
var mockPNG = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{}
}

func (m *MockLLMAPI) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = append(m.InitModelCalls, modelName)
	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx, modelName)
	}
	return nil
}

func (m *MockLLMAPI) Generate(ctx context.Context, prompt string, params chat.GenerationParams) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateCalls = append(m.GenerateCalls, prompt)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, params)
	}
	return "Mock story", nil
}

func (m *MockLLMAPI) Chat(ctx context.Context, messages []chat.ChatMessage, params chat.GenerationParams) (*chat.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatCalls = append(m.ChatCalls, append([]chat.ChatMessage(nil), messages...))
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, messages, params)
	}
	return &chat.ChatResponse{Message: "Mock response"}, nil
}

func (m *MockLLMAPI) GenerateImage(ctx context.Context, prompt string) (*chat.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateImageCalls = append(m.GenerateImageCalls, prompt)
	if m.GenerateImageFunc != nil {
		return m.GenerateImageFunc(ctx, prompt)
	}
	return &chat.Image{Data: append([]byte(nil), mockPNG...), MIMEType: "image/png"}, nil
}

func (m *MockLLMAPI) IsModelReady(ctx context.Context, modelName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IsModelReadyCalls = append(m.IsModelReadyCalls, modelName)
	if m.IsModelReadyFunc != nil {
		return m.IsModelReadyFunc(ctx, modelName)
	}
	return true, nil
}

// SetGenerateError makes Generate, Chat and GenerateImage fail with err.
func (m *MockLLMAPI) SetGenerateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateFunc = func(context.Context, string, chat.GenerationParams) (string, error) {
		return "", err
	}
	m.ChatFunc = func(context.Context, []chat.ChatMessage, chat.GenerationParams) (*chat.ChatResponse, error) {
		return nil, err
	}
	m.GenerateImageFunc = func(context.Context, string) (*chat.Image, error) {
		return nil, err
	}
}

// SetModelNotReady sets up the mock to return false for IsModelReady
func (m *MockLLMAPI) SetModelNotReady() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IsModelReadyFunc = func(context.Context, string) (bool, error) {
		return false, nil
	}
}

// Reset clears call tracking and overrides.
func (m *MockLLMAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelFunc = nil
	m.GenerateFunc = nil
	m.ChatFunc = nil
	m.GenerateImageFunc = nil
	m.IsModelReadyFunc = nil
	m.InitModelCalls = nil
	m.GenerateCalls = nil
	m.ChatCalls = nil
	m.GenerateImageCalls = nil
	m.IsModelReadyCalls = nil
}

// Calls returns copies of the generation calls recorded so far.
func (m *MockLLMAPI) Calls() (generate []string, chats [][]chat.ChatMessage, images []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.GenerateCalls...),
		append([][]chat.ChatMessage(nil), m.ChatCalls...),
		append([]string(nil), m.GenerateImageCalls...)
}
