package testutil

import (
	"context"
	"sync"

	"rpoptimizer/model"
)

// MockProvider implements model.Provider for testing
type MockProvider struct {
	// Configurable responses
	ChatFunc       func(ctx context.Context, messages []model.Message, params model.GenerationParams, callback model.StreamCallback) error
	ListModelsFunc func(ctx context.Context) ([]model.ModelInfo, error)
	PingFunc       func(ctx context.Context) error

	// State
	mu           sync.Mutex
	currentModel string
	calls        [][]model.Message
}

// NewMockProvider creates a mock provider with default implementations
func NewMockProvider(modelName string) *MockProvider {
	mock := &MockProvider{
		currentModel: modelName,
	}
	mock.ChatFunc = mock.defaultChat
	mock.ListModelsFunc = mock.defaultListModels
	mock.PingFunc = mock.defaultPing
	return mock
}

// Replying returns a mock that streams the given chunks for every request.
func Replying(chunks ...string) *MockProvider {
	mock := NewMockProvider("mock-model")
	mock.ChatFunc = func(ctx context.Context, messages []model.Message, params model.GenerationParams, callback model.StreamCallback) error {
		for _, c := range chunks {
			if err := callback(c); err != nil {
				return err
			}
		}
		return nil
	}
	return mock
}

func (m *MockProvider) defaultChat(ctx context.Context, messages []model.Message, params model.GenerationParams, callback model.StreamCallback) error {
	// Default: echo back a mock response
	if len(messages) > 0 {
		return callback("Mock response")
	}
	return nil
}

func (m *MockProvider) defaultListModels(ctx context.Context) ([]model.ModelInfo, error) {
	return []model.ModelInfo{
		{Name: "mock-model-1", Size: 1000, Provider: "mock"},
		{Name: "mock-model-2", Size: 2000, Provider: "mock"},
	}, nil
}

func (m *MockProvider) defaultPing(ctx context.Context) error {
	return nil
}

func (m *MockProvider) Chat(ctx context.Context, messages []model.Message, params model.GenerationParams, callback model.StreamCallback) error {
	m.mu.Lock()
	m.calls = append(m.calls, messages)
	m.mu.Unlock()
	return m.ChatFunc(ctx, messages, params, callback)
}

// Calls returns the message lists passed to Chat, in order.
func (m *MockProvider) Calls() [][]model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]model.Message(nil), m.calls...)
}

func (m *MockProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	return m.ListModelsFunc(ctx)
}

func (m *MockProvider) GetModel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentModel
}

func (m *MockProvider) SetModel(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentModel = model
}

func (m *MockProvider) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}
