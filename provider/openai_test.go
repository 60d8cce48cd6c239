package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"rpoptimizer/model"
)

func TestOpenAIProviderStreams(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chat/completions":
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode request: %v", err)
			}
			w.Header().Set("Content-Type", "text/event-stream")
			for _, part := range []string{"1. ", "改写"} {
				fmt.Fprintf(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"gpt-4o-mini\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", part)
			}
			fmt.Fprint(w, "data: [DONE]\n\n")
		case "/models":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"object":"list","data":[{"id":"gpt-4o-mini","object":"model","created":1,"owned_by":"openai"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider(srv.URL, "test-key", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}

	var out string
	err = p.Chat(context.Background(),
		[]model.Message{{Role: "system", Content: "s"}, {Role: "user", Content: "u"}},
		model.GenerationParams{Temperature: model.Temperature(0.7), MaxTokens: 2000},
		func(chunk string) error {
			out += chunk
			return nil
		})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if out != "1. 改写" {
		t.Errorf("streamed = %q", out)
	}
	if body["temperature"] != 0.7 || body["max_tokens"] != float64(2000) {
		t.Errorf("request body = %v", body)
	}
	if _, ok := body["top_p"]; ok {
		t.Error("top_p sent although unset")
	}

	models, err := p.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 1 || models[0].Provider != "openai" {
		t.Errorf("ListModels() = %+v", models)
	}
}

func TestChatParamsTemperature(t *testing.T) {
	oa, err := NewOpenAIProvider("http://localhost:1", "test-key", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}
	an, err := NewAnthropicProvider("", "test-key", "")
	if err != nil {
		t.Fatalf("NewAnthropicProvider() error = %v", err)
	}
	msgs := []model.Message{{Role: "user", Content: "1. a"}}

	tests := []struct {
		name  string
		temp  *float64
		valid bool
	}{
		{name: "unset", temp: nil, valid: false},
		{name: "zero is sent", temp: model.Temperature(0), valid: true},
		{name: "positive", temp: model.Temperature(0.5), valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := model.GenerationParams{Temperature: tt.temp}

			req := oa.chatParams(msgs, params)
			if req.Temperature.Valid() != tt.valid {
				t.Errorf("openai Temperature.Valid() = %v, want %v", req.Temperature.Valid(), tt.valid)
			}
			areq := an.messageParams(msgs, params)
			if areq.Temperature.Valid() != tt.valid {
				t.Errorf("anthropic Temperature.Valid() = %v, want %v", areq.Temperature.Valid(), tt.valid)
			}
			if tt.valid && (req.Temperature.Value != *tt.temp || areq.Temperature.Value != *tt.temp) {
				t.Errorf("Temperature = %v / %v, want %v", req.Temperature.Value, areq.Temperature.Value, *tt.temp)
			}
		})
	}
}

func TestAnthropicMessageParams(t *testing.T) {
	p, err := NewAnthropicProvider("", "test-key", "")
	if err != nil {
		t.Fatalf("NewAnthropicProvider() error = %v", err)
	}

	req := p.messageParams(
		[]model.Message{{Role: "system", Content: "rules"}, {Role: "user", Content: "1. a"}},
		model.GenerationParams{Temperature: model.Temperature(1.5), TopP: 1, TopK: 40},
	)

	if req.MaxTokens != defaultAnthropicMaxTokens {
		t.Errorf("MaxTokens = %d, want default", req.MaxTokens)
	}
	if len(req.System) != 1 || len(req.Messages) != 1 {
		t.Errorf("System = %d blocks, Messages = %d", len(req.System), len(req.Messages))
	}
	if req.Temperature.Value != 1 {
		t.Errorf("Temperature = %v, want capped at 1", req.Temperature.Value)
	}
	if req.TopP.Valid() {
		t.Error("TopP set although it is 1")
	}
	if req.TopK.Value != 40 {
		t.Errorf("TopK = %v", req.TopK.Value)
	}
}
