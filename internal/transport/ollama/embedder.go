package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"

	"github.com/kailas-cloud/schemesearch/internal/domain"
	"github.com/kailas-cloud/schemesearch/internal/metrics"
)

// DefaultModel is the Ollama build of sentence-transformers/all-MiniLM-L6-v2.
const DefaultModel = "all-minilm"

// Embedder encodes text with a model served by Ollama, through langchaingo.
type Embedder struct {
	embedder  embeddings.Embedder
	serverURL string
	http      *http.Client
	model     string
	provider  string
	logger    *zap.Logger
}

// Config holds the Ollama embedder settings.
type Config struct {
	ServerURL string
	Model     string
	Provider  string
	Timeout   time.Duration
	Logger    *zap.Logger
}

// NewEmbedder creates an Ollama embedder. It does not contact the server.
func NewEmbedder(cfg *Config) (*Embedder, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	provider := cfg.Provider
	if provider == "" {
		provider = "ollama"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	opts := []ollama.Option{ollama.WithModel(model), ollama.WithHTTPClient(httpClient)}
	if cfg.ServerURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.ServerURL))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}

	emb, err := embeddings.NewEmbedder(llm, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("create ollama embedder: %w", err)
	}

	serverURL := cfg.ServerURL
	if serverURL == "" {
		serverURL = "http://localhost:11434"
	}

	return &Embedder{
		embedder:  emb,
		serverURL: strings.TrimRight(serverURL, "/"),
		http:      httpClient,
		model:     model,
		provider:  provider,
		logger:    logger,
	}, nil
}

// Embed implements domain.Embedder. Ollama does not report token usage.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()

	vec, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, e.model, "api_error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("ollama embed: %w: %w", err, domain.ErrEmbeddingProviderError)
	}
	if len(vec) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, e.model, "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.provider, e.model).Observe(time.Since(start).Seconds())

	return domain.EmbeddingResult{Embedding: vec}, nil
}

// HealthCheck lists local models, which is cheap and needs no model load.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.serverURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := e.http.Do(req)
	if err != nil {
		return fmt.Errorf("ollama health: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama health: status %d", resp.StatusCode)
	}
	return nil
}
