package oracle

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/loadplanner/internal/cache"
	"github.com/Additional-Code/loadplanner/internal/config"
)

// Module provides the oracle adapter, or a nil *Adapter when the oracle is disabled.
var Module = fx.Provide(New)

// New builds the Gemini-backed adapter from configuration.
func New(cfg config.Config, store cache.Store, logger *zap.Logger) (*Adapter, error) {
	if !cfg.Oracle.Enabled {
		logger.Info("planning oracle disabled; deterministic planner only")
		return nil, nil
	}

	client, err := NewGeminiClient(GeminiOptions{
		BaseURL:     cfg.Oracle.BaseURL,
		APIKey:      cfg.Oracle.APIKey,
		Model:       cfg.Oracle.Model,
		Temperature: cfg.Oracle.Temperature,
		MaxAttempts: cfg.Oracle.MaxAttempts,
		Backoff:     cfg.Oracle.Backoff,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("planning oracle enabled",
		zap.String("model", cfg.Oracle.Model),
		zap.Duration("timeout", cfg.Oracle.Timeout),
		zap.Int("max_orders", cfg.Oracle.MaxOrders),
	)

	return NewAdapter(client, store, cfg.Oracle.CacheTTL, cfg.Oracle.Timeout, logger,
		WithCacheScope(CacheScope(cfg.Oracle.Model, cfg.Oracle.Temperature))), nil
}

// CacheScope names the model configuration a cached reply belongs to.
func CacheScope(model string, temperature float64) string {
	return fmt.Sprintf("%s@%g", model, temperature)
}
