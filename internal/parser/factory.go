package parser

import (
	"context"
	"fmt"

	"tnstc-api/internal/config"
	"tnstc-api/internal/parser/gemini"
	"tnstc-api/internal/parser/ollama"
	"tnstc-api/internal/parser/scrape"
)

// Factory creates extraction strategy instances
type Factory struct {
	config *config.Config
}

// NewFactory creates a new strategy factory instance
func NewFactory(cfg *config.Config) *Factory {
	return &Factory{config: cfg}
}

// CreateStrategy creates an extraction strategy by its configuration name
func (f *Factory) CreateStrategy(ctx context.Context, name string) (Strategy, error) {
	switch name {
	case config.StrategyScraping:
		return scrape.New(), nil
	case config.StrategyGemini:
		return gemini.New(ctx, f.config)
	case config.StrategyOllama:
		return ollama.New(f.config), nil
	default:
		return nil, fmt.Errorf("unsupported parser strategy: %s", name)
	}
}

// SupportedStrategies returns the strategy names the factory can build
func (f *Factory) SupportedStrategies() []string {
	return []string{config.StrategyScraping, config.StrategyGemini, config.StrategyOllama}
}
