package provider

import (
	"sort"

	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"

	"rpoptimizer/model"
)

// BuildMessages turns a generation request into a conversation.
//
// Injections are placed by depth: depth 0 goes first, before the user input,
// and a higher depth moves the element further from the start. Equal depths
// keep their request order. The user input is always the final message.
func BuildMessages(req model.GenerateRequest) []model.Message {
	injections := make([]model.Injection, len(req.Injections))
	copy(injections, req.Injections)
	sort.SliceStable(injections, func(i, j int) bool {
		return injections[i].Depth < injections[j].Depth
	})

	messages := make([]model.Message, 0, len(injections)+1)
	for _, inj := range injections {
		if inj.Content == "" {
			continue
		}
		role := inj.Role
		if role == "" {
			role = "system"
		}
		messages = append(messages, model.Message{Role: role, Content: inj.Content})
	}

	return append(messages, model.Message{Role: "user", Content: req.UserInput})
}

// ConvertToOllamaMessages converts model.Message to Ollama api.Message.
// Timestamps are not preserved.
func ConvertToOllamaMessages(messages []model.Message) []api.Message {
	result := make([]api.Message, len(messages))
	for i, msg := range messages {
		result[i] = api.Message{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}
	return result
}

// ConvertFromOllamaMessages converts Ollama api.Message to model.Message.
// The Timestamp field is left zero.
func ConvertFromOllamaMessages(messages []api.Message) []model.Message {
	result := make([]model.Message, len(messages))
	for i, msg := range messages {
		result[i] = model.Message{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}
	return result
}

// ConvertToOpenAIMessages converts model.Message to OpenAI message params.
// Unknown roles are sent as user messages.
func ConvertToOpenAIMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(messages))

	for i, msg := range messages {
		switch msg.Role {
		case "system":
			result[i] = openai.SystemMessage(msg.Content)
		case "assistant":
			result[i] = openai.AssistantMessage(msg.Content)
		default:
			result[i] = openai.UserMessage(msg.Content)
		}
	}

	return result
}
