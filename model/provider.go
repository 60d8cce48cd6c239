package model

import (
	"context"
)

// Provider abstracts LLM provider implementations (Ollama, OpenAI, OpenRouter,
// Anthropic) using provider-agnostic types from the model layer.
//
// This interface is defined in the model package (not provider package) to avoid
// import cycles: provider implementations import model, and the optimizer only
// depends on model.
type Provider interface {
	// Chat sends messages and streams responses back via callback.
	Chat(ctx context.Context, messages []Message, params GenerationParams, callback StreamCallback) error

	// ListModels returns available models for this provider.
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// GetModel returns the currently selected model name.
	GetModel() string

	// SetModel changes the active model.
	SetModel(model string)

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}

// StreamCallback is called for each chunk of streamed response.
type StreamCallback func(chunk string) error

// ModelInfo describes a model offered by a provider.
type ModelInfo struct {
	Name     string
	Size     int64
	Provider string // Provider ID: "ollama", "openai", "openrouter", "anthropic"
}

// GenerationParams carries sampling settings for a single call.
// Zero values mean "provider default" except where noted.
type GenerationParams struct {
	Temperature *float64 // nil = unset; 0 is a real value
	MaxTokens   int
	TopP        float64
	TopK        int // 0 = unset
}

// Injection is a context element placed into the conversation before the
// user input. Depth 0 means "at the start of the conversation".
type Injection struct {
	Role     string
	Content  string
	Position string
	Depth    int
}

// GenerateRequest is a single non-interactive generation.
type GenerateRequest struct {
	UserInput  string
	Injections []Injection
	Params     GenerationParams
	// MaxChatHistory limits how many prior chat turns are included.
	// The optimizer never sends chat history, so this is informational.
	MaxChatHistory int
}

// Generator produces one complete response for a request.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Temperature returns t as a GenerationParams temperature.
func Temperature(t float64) *float64 {
	return &t
}
