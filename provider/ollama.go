package provider

import (
	"context"
	"fmt"

	"rpoptimizer/model"
	"rpoptimizer/ollama"
)

// OllamaProvider wraps ollama.Client to implement the Provider interface.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// An empty baseURL defaults to "http://localhost:11434" and an empty model
// to "llama3.1:latest".
func NewOllamaProvider(baseURL, model string) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, model)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{
		client: client,
	}, nil
}

// Chat implements Provider.Chat by converting messages and mapping the
// sampling parameters to Ollama options.
func (p *OllamaProvider) Chat(ctx context.Context, messages []model.Message, params model.GenerationParams, callback model.StreamCallback) error {
	return p.client.Chat(ctx, ConvertToOllamaMessages(messages), params, func(chunk string) error {
		if callback == nil {
			return nil
		}
		return callback(chunk)
	})
}

func (p *OllamaProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	return p.client.ListModels(ctx)
}

func (p *OllamaProvider) GetModel() string {
	return p.client.GetModel()
}

func (p *OllamaProvider) SetModel(model string) {
	p.client.SetModel(model)
}

// Ping checks if the Ollama server is reachable.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}
