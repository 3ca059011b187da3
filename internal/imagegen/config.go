package imagegen

import (
	"context"
	"fmt"

	"imagestudio/internal/infra"
	"imagestudio/internal/prompt"
	"imagestudio/internal/providers/gemini"
	"imagestudio/internal/storage"
)

// NewFromConfig wires the catalog, output store and Gemini client described
// by cfg into a Service. The API key must be present.
func NewFromConfig(ctx context.Context, cfg *infra.Config, logger *infra.Logger) (*Service, error) {
	if err := cfg.RequireGeminiKey(); err != nil {
		return nil, err
	}
	catalog, err := prompt.NewCatalog(prompt.CatalogOptions{Dir: cfg.PromptsDir, Logger: logger})
	if err != nil {
		return nil, err
	}
	store, err := storage.NewFileStore(cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	client, err := gemini.NewClient(ctx, gemini.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("imagegen: %w", err)
	}
	return NewService(Options{
		Provider:    client,
		Store:       store,
		Catalog:     catalog,
		Logger:      logger,
		AspectRatio: cfg.AspectRatio,
	})
}
