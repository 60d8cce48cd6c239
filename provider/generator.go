package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rpoptimizer/config"
	"rpoptimizer/metrics"
	"rpoptimizer/model"
)

// Generator performs single-shot generations over a streaming Provider.
type Generator struct {
	provider model.Provider
	id       string
}

func NewGenerator(p model.Provider, id string) *Generator {
	return &Generator{provider: p, id: id}
}

// Provider returns the wrapped provider.
func (g *Generator) Provider() model.Provider {
	return g.provider
}

// ID returns the provider id ("ollama", "openai", ...).
func (g *Generator) ID() string {
	return g.id
}

// Generate sends req and returns the accumulated response text.
func (g *Generator) Generate(ctx context.Context, req model.GenerateRequest) (string, error) {
	log := config.Logger("generator")
	messages := BuildMessages(req)

	start := time.Now()
	var out strings.Builder
	err := g.provider.Chat(ctx, messages, req.Params, func(chunk string) error {
		out.WriteString(chunk)
		return nil
	})
	metrics.GenerationLatency.WithLabelValues(g.id).Observe(time.Since(start).Seconds())

	if err != nil {
		log.Error().Err(err).Str("provider", g.id).Str("model", g.provider.GetModel()).Msg("generation failed")
		return "", fmt.Errorf("failed to generate with %s: %w", g.id, err)
	}

	log.Debug().
		Str("provider", g.id).
		Int("messages", len(messages)).
		Int("chars", out.Len()).
		Dur("took", time.Since(start)).
		Msg("generation finished")
	return out.String(), nil
}

// ListModels returns the provider's models.
func (g *Generator) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	return g.provider.ListModels(ctx)
}

// Ping checks that the provider is reachable.
func (g *Generator) Ping(ctx context.Context) error {
	return g.provider.Ping(ctx)
}
