package provider

import (
	"testing"
	"time"

	"github.com/ollama/ollama/api"

	"rpoptimizer/model"
)

func TestConvertToOllamaMessages(t *testing.T) {
	tests := []struct {
		name     string
		input    []model.Message
		expected []api.Message
	}{
		{
			name:     "empty slice",
			input:    []model.Message{},
			expected: []api.Message{},
		},
		{
			name: "multiple messages",
			input: []model.Message{
				{Role: "system", Content: "Rewrite", Timestamp: time.Now()},
				{Role: "user", Content: "1. 句子", Timestamp: time.Now()},
			},
			expected: []api.Message{
				{Role: "system", Content: "Rewrite"},
				{Role: "user", Content: "1. 句子"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertToOllamaMessages(tt.input)

			if len(result) != len(tt.expected) {
				t.Fatalf("length mismatch: got %d, want %d", len(result), len(tt.expected))
			}

			for i, msg := range result {
				if msg.Role != tt.expected[i].Role {
					t.Errorf("message %d role: got %q, want %q", i, msg.Role, tt.expected[i].Role)
				}
				if msg.Content != tt.expected[i].Content {
					t.Errorf("message %d content: got %q, want %q", i, msg.Content, tt.expected[i].Content)
				}
			}

			back := ConvertFromOllamaMessages(result)
			for i, msg := range back {
				if msg.Role != tt.input[i].Role || msg.Content != tt.input[i].Content {
					t.Errorf("round trip message %d = %+v", i, msg)
				}
			}
		})
	}
}

func TestConvertToOpenAIMessages(t *testing.T) {
	msgs := []model.Message{
		{Role: "system", Content: "s"},
		{Role: "assistant", Content: "a"},
		{Role: "user", Content: "u"},
		{Role: "tool", Content: "t"},
	}

	got := ConvertToOpenAIMessages(msgs)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got[0].OfSystem == nil || got[1].OfAssistant == nil || got[2].OfUser == nil || got[3].OfUser == nil {
		t.Errorf("unexpected variants: %+v", got)
	}
}

func TestConvertToAnthropicMessages(t *testing.T) {
	msgs := []model.Message{
		{Role: "system", Content: "first"},
		{Role: "system", Content: "second"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	}

	out, system := convertToAnthropicMessages(msgs)
	if len(system) != 2 || system[0].Text != "first" {
		t.Errorf("system blocks = %+v", system)
	}
	if len(out) != 2 {
		t.Fatalf("messages = %d, want 2", len(out))
	}
	if out[0].Role != "user" || out[1].Role != "assistant" {
		t.Errorf("roles = %q, %q", out[0].Role, out[1].Role)
	}
}

func TestBuildMessages(t *testing.T) {
	tests := []struct {
		name  string
		req   model.GenerateRequest
		roles []string
		first string
	}{
		{
			name: "system injection at depth 0 comes first",
			req: model.GenerateRequest{
				UserInput:  "待优化句子：\n1. a",
				Injections: []model.Injection{{Role: "system", Content: "prompt", Position: "in_chat", Depth: 0}},
			},
			roles: []string{"system", "user"},
			first: "prompt",
		},
		{
			name: "ordered by depth, blank dropped, role defaults to system",
			req: model.GenerateRequest{
				UserInput: "x",
				Injections: []model.Injection{
					{Content: "deeper", Depth: 2},
					{Role: "system", Content: "", Depth: 0},
					{Role: "assistant", Content: "top", Depth: 0},
				},
			},
			roles: []string{"assistant", "system", "user"},
			first: "top",
		},
		{
			name:  "no injections",
			req:   model.GenerateRequest{UserInput: "test"},
			roles: []string{"user"},
			first: "test",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildMessages(tt.req)
			if len(got) != len(tt.roles) {
				t.Fatalf("len = %d, want %d: %+v", len(got), len(tt.roles), got)
			}
			for i, role := range tt.roles {
				if got[i].Role != role {
					t.Errorf("message %d role = %q, want %q", i, got[i].Role, role)
				}
			}
			if got[0].Content != tt.first {
				t.Errorf("first content = %q, want %q", got[0].Content, tt.first)
			}
			if last := got[len(got)-1]; last.Content != tt.req.UserInput {
				t.Errorf("last message = %q, want user input", last.Content)
			}
		})
	}
}
