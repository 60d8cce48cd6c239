package provider

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"rpoptimizer/config"
	"rpoptimizer/model"
)

// PingProviderMsg is sent when provider ping completes
type PingProviderMsg struct {
	ProviderID string
	Valid      bool
	Err        error
}

// ModelsMsg is sent when the model list has been fetched
type ModelsMsg struct {
	ProviderID string
	Models     []model.ModelInfo
	Err        error
}

// PingCmd checks that the generator's backend is reachable.
func PingCmd(g *Generator) tea.Cmd {
	return func() tea.Msg {
		if err := g.Ping(context.Background()); err != nil {
			return PingProviderMsg{
				ProviderID: g.ID(),
				Valid:      false,
				Err:        fmt.Errorf("connection failed: %w", err),
			}
		}

		log := config.Logger("provider")
		log.Debug().Str("provider", g.ID()).Msg("ping successful")

		return PingProviderMsg{
			ProviderID: g.ID(),
			Valid:      true,
		}
	}
}

// FetchModelsCmd lists the models of the generator's backend.
func FetchModelsCmd(g *Generator) tea.Cmd {
	return func() tea.Msg {
		models, err := g.ListModels(context.Background())
		if err != nil {
			return ModelsMsg{ProviderID: g.ID(), Err: err}
		}

		log := config.Logger("provider")
		log.Debug().Str("provider", g.ID()).Int("count", len(models)).Msg("fetched models")

		return ModelsMsg{
			ProviderID: g.ID(),
			Models:     models,
		}
	}
}
