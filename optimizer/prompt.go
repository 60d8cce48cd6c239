package optimizer

import (
	"fmt"
	"strings"

	"rpoptimizer/config"
	"rpoptimizer/model"
)

// rewriteInputPrefix precedes the numbered block in the user turn.
const rewriteInputPrefix = "待优化句子：\n"

// BuildSystemPrompt joins the prompt fragments of s with the disabled-word
// constraint. Blank fragments are left out.
func BuildSystemPrompt(s config.Settings) string {
	words := ParseWordList(s.DisabledWords)
	parts := []string{
		s.Prompts.Main,
		s.Prompts.System,
		fmt.Sprintf("必须避免使用这些词：[%s]", strings.Join(words, ", ")),
		s.Prompts.FinalSystem,
	}

	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}

// RewriteRequest builds the generation request for a numbered block.
func RewriteRequest(numbered, systemPrompt string, s config.Settings) model.GenerateRequest {
	return model.GenerateRequest{
		UserInput: rewriteInputPrefix + numbered,
		Injections: []model.Injection{{
			Role:     "system",
			Content:  systemPrompt,
			Position: "in_chat",
			Depth:    0,
		}},
		Params: GenerationParams(s),
	}
}

// GenerationParams extracts the sampling settings.
func GenerationParams(s config.Settings) model.GenerationParams {
	return model.GenerationParams{
		Temperature: model.Temperature(s.Temperature),
		MaxTokens:   s.MaxTokens,
		TopP:        s.TopP,
		TopK:        s.TopK,
	}
}
