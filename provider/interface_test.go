package provider_test

import (
	"context"
	"testing"
	"time"

	"rpoptimizer/model"
	"rpoptimizer/provider"
	"rpoptimizer/provider/testutil"
)

// TestProviderContract defines the contract every provider must satisfy.
// Only the mock runs here; the real backends need live servers.
func TestProviderContract(t *testing.T) {
	tests := []struct {
		name     string
		provider model.Provider
	}{
		{"Mock", testutil.NewMockProvider("test-model")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Run("BasicChat", func(t *testing.T) {
				testProviderBasicChat(t, tt.provider)
			})
			t.Run("ModelManagement", func(t *testing.T) {
				testProviderModelManagement(t, tt.provider)
			})
			t.Run("HealthCheck", func(t *testing.T) {
				testProviderHealthCheck(t, tt.provider)
			})
		})
	}
}

func testProviderBasicChat(t *testing.T, p model.Provider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages := testutil.SingleUserMessage("Hello")
	var receivedChunk string

	err := p.Chat(ctx, messages, testutil.DefaultParams(), func(chunk string) error {
		receivedChunk = chunk
		return nil
	})

	if err != nil {
		t.Errorf("Chat() error = %v", err)
	}

	if receivedChunk == "" {
		t.Error("Chat() did not receive any chunks")
	}
}

func testProviderModelManagement(t *testing.T, p model.Provider) {
	initialModel := p.GetModel()
	if initialModel == "" {
		t.Error("GetModel() returned empty string")
	}

	newModel := "new-test-model"
	p.SetModel(newModel)

	if got := p.GetModel(); got != newModel {
		t.Errorf("After SetModel(%s), GetModel() = %s, want %s", newModel, got, newModel)
	}
}

func testProviderHealthCheck(t *testing.T, p model.Provider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

// TestImplementsInterface is a compile-time check for every provider
func TestImplementsInterface(t *testing.T) {
	var _ model.Provider = (*testutil.MockProvider)(nil)
	var _ model.Provider = (*provider.OllamaProvider)(nil)
	var _ model.Provider = (*provider.OpenAIProvider)(nil)
	var _ model.Provider = (*provider.AnthropicProvider)(nil)
	var _ model.Generator = (*provider.Generator)(nil)
}
