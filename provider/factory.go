package provider

import (
	"fmt"

	"rpoptimizer/model"
)

// NewProvider creates a provider based on configuration.
//
// Returns an error if the provider type is unknown or the provider-specific
// constructor fails (invalid URL, missing API key).
func NewProvider(cfg Config) (model.Provider, error) {
	var (
		p   model.Provider
		err error
	)

	// Assign through typed locals so a failed constructor yields a nil
	// interface rather than a typed nil pointer.
	switch cfg.Type {
	case ProviderTypeOllama:
		var op *OllamaProvider
		op, err = NewOllamaProvider(cfg.BaseURL, cfg.Model)
		p = op
	case ProviderTypeOpenRouter:
		var op *OpenAIProvider
		op, err = NewOpenRouterProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
		p = op
	case ProviderTypeOpenAI:
		var op *OpenAIProvider
		op, err = NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
		p = op
	case ProviderTypeAnthropic:
		var ap *AnthropicProvider
		ap, err = NewAnthropicProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
		p = ap
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}

	if err != nil {
		return nil, err
	}
	return p, nil
}

// MapProviderIDToType converts config provider ID to factory ProviderType.
// For unknown IDs, returns the ID cast as ProviderType (factory will error).
func MapProviderIDToType(id string) ProviderType {
	switch id {
	case "ollama":
		return ProviderTypeOllama
	case "openrouter":
		return ProviderTypeOpenRouter
	case "openai":
		return ProviderTypeOpenAI
	case "anthropic":
		return ProviderTypeAnthropic
	default:
		return ProviderType(id)
	}
}
