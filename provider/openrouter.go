package provider

import (
	"fmt"

	"github.com/openai/openai-go/v3/option"
)

// NewOpenRouterProvider creates an OpenAI-compatible provider pointed at
// OpenRouter.
//
// Parameters:
//   - baseURL: OpenRouter API base URL (default: "https://openrouter.ai/api/v1")
//   - apiKey: OpenRouter API key (required)
//   - model: Initial model to use, with vendor prefix
func NewOpenRouterProvider(baseURL, apiKey, model string) (*OpenAIProvider, error) {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenRouter API key is required")
	}
	if model == "" {
		model = "meta-llama/llama-3.2-90b-instruct"
	}

	return newOpenAICompatible("openrouter", baseURL, model,
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		// OpenRouter attributes requests to the calling app with these headers
		option.WithHeader("HTTP-Referer", "https://github.com/rpoptimizer/rpoptimizer"),
		option.WithHeader("X-Title", "rpoptimizer"),
	), nil
}
