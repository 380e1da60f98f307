// Package encoder assembles the query encoder decorator chain.
package encoder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/schemesearch/internal/db"
	"github.com/kailas-cloud/schemesearch/internal/domain"
	"github.com/kailas-cloud/schemesearch/internal/metrics"
	"github.com/kailas-cloud/schemesearch/internal/repository/embcache"
	ollamaEmb "github.com/kailas-cloud/schemesearch/internal/transport/ollama"
	openaiEmb "github.com/kailas-cloud/schemesearch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/schemesearch/internal/usecase/embedding"
)

// Provider names.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config selects and parameterizes the provider and its decorators.
// Dimensions is the expected vector length; it is checked, not sent to the provider.
type Config struct {
	Provider         string
	BaseURL          string
	APIKey           string
	Model            string
	Dimensions       int
	QueryInstruction string
	Timeout          time.Duration

	// Cache enables the embedding cache when non-nil.
	Cache          db.KVStore
	CacheKeyPrefix string

	Logger *zap.Logger
}

// Encoder is the assembled chain. It also reports provider health.
type Encoder interface {
	domain.Embedder
	domain.HealthChecker
}

// Build assembles the chain: Provider -> Cached -> Instrumented -> Instruction.
func Build(cfg Config) (Encoder, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	provider := cfg.Provider
	if provider == "" {
		provider = ProviderOpenAI
	}

	var base Encoder
	switch provider {
	case ProviderOpenAI:
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.BaseURL,
			Model:    cfg.Model,
			Provider: ProviderOpenAI,
			Timeout:  cfg.Timeout,
			Logger:   logger,
		})
	case ProviderOllama:
		e, err := ollamaEmb.NewEmbedder(&ollamaEmb.Config{
			ServerURL: cfg.BaseURL,
			Model:     cfg.Model,
			Timeout:   cfg.Timeout,
			Logger:    logger,
		})
		if err != nil {
			return nil, fmt.Errorf("ollama embedder: %w", err)
		}
		base = e
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	return Wrap(base, provider, cfg, logger), nil
}

// Wrap decorates an existing provider with the cache, instrumentation and instruction layers.
func Wrap(base domain.Embedder, provider string, cfg Config, logger *zap.Logger) Encoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	var embedder domain.Embedder = base
	if cfg.Cache != nil {
		embedder = embcache.New(base, cfg.Cache, metrics.EmbeddingCacheTotal, logger,
			embcache.WithKeyPrefix(cfg.CacheKeyPrefix),
			embcache.WithNamespace(cfg.Model),
			embcache.WithDimensions(cfg.Dimensions),
		)
	}

	var out Encoder = embeddinguc.NewInstrumentedEmbedder(embedder, provider, cfg.Model, cfg.Dimensions, logger)

	// Instruction prefix (outermost: cache key includes instruction)
	if cfg.QueryInstruction != "" {
		out = domain.NewInstructionEmbedder(out, cfg.QueryInstruction)
	}
	return out
}

// Warmup encodes a probe query once and checks its dimension against want (skipped when want <= 0).
func Warmup(ctx context.Context, enc domain.Embedder, want int) (int, error) {
	res, err := enc.Embed(ctx, "warmup")
	if err != nil {
		return 0, fmt.Errorf("warm-up embed: %w", err)
	}
	got := len(res.Embedding)
	metrics.EmbeddingDimensions.Set(float64(got))
	if want > 0 && got != want {
		return got, fmt.Errorf("%w: encoder produces %d, index expects %d", domain.ErrDimensionMismatch, got, want)
	}
	return got, nil
}
