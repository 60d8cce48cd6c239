package provider

import (
	"fmt"

	"rpoptimizer/config"
)

// InitializeGenerator creates the configured provider and wraps it as a
// Generator. The API key comes from RPO_API_KEY or the credential store.
func InitializeGenerator(cfg *config.Config) (*Generator, error) {
	id := cfg.Provider.ID
	p, err := NewProvider(Config{
		Type:    MapProviderIDToType(id),
		BaseURL: cfg.Provider.BaseURL,
		Model:   cfg.Provider.Model,
		APIKey:  cfg.APIKey(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider %s: %w", id, err)
	}

	log := config.Logger("provider")
	log.Debug().Str("provider", id).Str("model", p.GetModel()).Msg("provider initialized")
	return NewGenerator(p, id), nil
}
