package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"rpoptimizer/model"
)

// OpenAIProvider implements the Provider interface using OpenAI's official Go SDK.
// It also serves OpenRouter, which is OpenAI-compatible.
type OpenAIProvider struct {
	client     openai.Client
	model      string
	baseURL    string
	providerID string
}

// NewOpenAIProvider creates a new OpenAI provider instance.
//
// Parameters:
//   - baseURL: OpenAI API base URL (default: "https://api.openai.com/v1")
//   - apiKey: OpenAI API key (required)
//   - model: Initial model to use (default: "gpt-4o-mini")
func NewOpenAIProvider(baseURL, apiKey, model string) (*OpenAIProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	return newOpenAICompatible("openai", baseURL, model,
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	), nil
}

func newOpenAICompatible(providerID, baseURL, model string, opts ...option.RequestOption) *OpenAIProvider {
	return &OpenAIProvider{
		client:     openai.NewClient(opts...),
		model:      model,
		baseURL:    baseURL,
		providerID: providerID,
	}
}

// chatParams builds the completion request. Unset sampling values are
// omitted so the backend applies its defaults.
func (p *OpenAIProvider) chatParams(messages []model.Message, params model.GenerationParams) openai.ChatCompletionNewParams {
	req := openai.ChatCompletionNewParams{
		Messages: ConvertToOpenAIMessages(messages),
		Model:    openai.ChatModel(p.model),
	}
	if params.Temperature != nil {
		req.Temperature = openai.Float(*params.Temperature)
	}
	if params.TopP > 0 {
		req.TopP = openai.Float(params.TopP)
	}
	if params.MaxTokens > 0 {
		req.MaxTokens = openai.Int(int64(params.MaxTokens))
	}
	return req
}

// Chat implements Provider.Chat with streaming support.
func (p *OpenAIProvider) Chat(ctx context.Context, messages []model.Message, params model.GenerationParams, callback model.StreamCallback) error {
	stream := p.client.Chat.Completions.NewStreaming(ctx, p.chatParams(messages, params))
	defer stream.Close()

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		if callback != nil {
			if err := callback(chunk.Choices[0].Delta.Content); err != nil {
				return err
			}
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("%s streaming error: %w", p.providerID, err)
	}
	return nil
}

// ListModels implements Provider.ListModels.
func (p *OpenAIProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	modelsPage, err := p.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s models: %w", p.providerID, err)
	}

	result := make([]model.ModelInfo, 0, len(modelsPage.Data))
	for _, m := range modelsPage.Data {
		result = append(result, model.ModelInfo{
			Name:     m.ID,
			Provider: p.providerID,
		})
	}

	return result, nil
}

func (p *OpenAIProvider) GetModel() string {
	return p.model
}

func (p *OpenAIProvider) SetModel(model string) {
	p.model = model
}

// Ping implements Provider.Ping by attempting to list models.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	_, err := p.client.Models.List(ctx)
	if err != nil {
		return fmt.Errorf("%s ping failed: %w", p.providerID, err)
	}
	return nil
}
