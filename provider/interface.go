// Package provider adapts LLM backends to the model.Provider interface.
//
// The optimizer only needs a single non-interactive generation per rewrite,
// but every backend is driven through its streaming chat API and the chunks
// are accumulated by Generator. This keeps one code path per SDK.
//
// # Architecture
//
//   - model.Provider defines the contract (interface)
//   - provider.OllamaProvider wraps ollama.Client
//   - provider.OpenAIProvider uses openai-go (also serves OpenRouter)
//   - provider.AnthropicProvider uses anthropic-sdk-go
//   - provider.NewProvider() creates providers from config
//   - provider.Generator turns a Provider into a model.Generator
//
// # Usage
//
//	p, err := provider.NewProvider(provider.Config{
//	    Type:  provider.ProviderTypeOllama,
//	    Model: "llama3.1:latest",
//	})
//	if err != nil {
//	    // handle error
//	}
//	text, err := provider.NewGenerator(p, "ollama").Generate(ctx, req)
package provider

// Note: The Provider interface and StreamCallback are defined in the model package
// (model/provider.go) to avoid import cycles. This package implements model.Provider.

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOllama     ProviderType = "ollama"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeAnthropic  ProviderType = "anthropic"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // For OpenAI/OpenRouter/Anthropic (unused for Ollama)
}
