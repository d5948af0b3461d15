package generation

import (
	"context"

	"github.com/zfogg/dailybrief/internal/config"
	"github.com/zfogg/dailybrief/internal/logger"
	"go.uber.org/zap"
)

// NewClientFromConfig returns the Gemini client, or the simulated one when no
// API key is configured or simulation is forced
func NewClientFromConfig(ctx context.Context, cfg *config.Config) (Client, error) {
	if cfg.UseSimulatedGeneration() {
		logger.Log.Warn("Using simulated generation client; set GEMINI_API_KEY to call the model")
		return NewSimulatedClient(), nil
	}

	client, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Using Gemini generation client", zap.String("model", cfg.GeminiModel))
	return client, nil
}
