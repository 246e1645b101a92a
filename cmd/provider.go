package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/ai"
	"github.com/spigell/skillgap/internal/ai/anthropic"
	"github.com/spigell/skillgap/internal/ai/gemini"
	"github.com/spigell/skillgap/internal/secrets"
	"github.com/spigell/skillgap/internal/skillgap"
	"github.com/spigell/skillgap/internal/taxonomy"
)

func newOracle(ctx context.Context, cfg *AIConfig) (ai.Oracle, error) {
	switch cfg.Provider {
	case providerGemini:
		pc := providerConfig(cfg.Gemini)
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: pc.APIKey,
			File:  pc.APIKeyFile,
			Env:   []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"},
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
		}
		generator, err := gemini.NewGenerator(ctx, apiKey, pc.Model)
		if err != nil {
			return nil, err
		}
		return generator, nil

	case providerAnthropic:
		pc := providerConfig(cfg.Anthropic)
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "anthropic api key",
			Value: pc.APIKey,
			File:  pc.APIKeyFile,
			Env:   []string{"ANTHROPIC_API_KEY"},
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.anthropic.api-key-file or ANTHROPIC_API_KEY)", err)
		}
		generator, err := anthropic.NewGenerator(apiKey, pc.Model)
		if err != nil {
			return nil, err
		}
		return generator, nil

	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

func providerConfig(pc *ProviderConfig) *ProviderConfig {
	if pc == nil {
		return &ProviderConfig{}
	}
	return pc
}

func loadTaxonomy(cfg *TaxonomyConfig) (*taxonomy.Taxonomy, error) {
	if cfg == nil || strings.TrimSpace(cfg.File) == "" {
		return taxonomy.Shared()
	}
	return taxonomy.Load(cfg.File)
}

// newAnalyzer wires the configured oracle, gateway and taxonomy.
func newAnalyzer(ctx context.Context, config *Config, logger *zap.Logger) (*skillgap.Analyzer, error) {
	oracle, err := newOracle(ctx, config.AI)
	if err != nil {
		return nil, err
	}

	gateway, err := ai.NewGateway(oracle,
		ai.WithLogger(logger),
		ai.WithProvider(config.AI.Provider),
		ai.WithStageTimeout(config.AI.StageTimeout),
		ai.WithMaxLogLength(config.AI.MaxLogLength),
	)
	if err != nil {
		return nil, fmt.Errorf("building ai gateway: %w", err)
	}

	tax, err := loadTaxonomy(config.Taxonomy)
	if err != nil {
		return nil, fmt.Errorf("loading taxonomy: %w", err)
	}

	return skillgap.NewAnalyzer(gateway, tax,
		skillgap.WithLogger(logger),
		skillgap.WithRetries(config.AI.Retries),
		skillgap.WithTemperature(config.AI.Temperature),
		skillgap.WithMatchThreshold(config.Analysis.MatchThreshold),
		skillgap.WithExpansion(config.Analysis.Expand),
	)
}
