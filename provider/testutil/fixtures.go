package testutil

import (
	"time"

	"rpoptimizer/model"
)

// SingleUserMessage returns a single user message for simple tests
func SingleUserMessage(content string) []model.Message {
	return []model.Message{
		{
			Role:      "user",
			Content:   content,
			Timestamp: time.Now(),
		},
	}
}

// EmptyMessages returns an empty message slice for edge case testing
func EmptyMessages() []model.Message {
	return []model.Message{}
}

// SystemMessage returns a system message for testing
func SystemMessage(content string) model.Message {
	return model.Message{
		Role:      "system",
		Content:   content,
		Timestamp: time.Now(),
	}
}

// RewriteRequest returns a request shaped like the optimizer's rewrite call
func RewriteRequest(numbered, prompt string) model.GenerateRequest {
	return model.GenerateRequest{
		UserInput: "待优化句子：\n" + numbered,
		Injections: []model.Injection{
			{Role: "system", Content: prompt, Position: "in_chat", Depth: 0},
		},
		Params: DefaultParams(),
	}
}

// DefaultParams mirrors the optimizer's default sampling settings
func DefaultParams() model.GenerationParams {
	return model.GenerationParams{Temperature: model.Temperature(0.7), MaxTokens: 2000, TopP: 1}
}
