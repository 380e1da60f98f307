package schemesearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	indexPath   string
	catalogPath string

	embedder    Embedder
	provider    string
	baseURL     string
	model       string
	apiKey      string
	instruction string
	warmup      bool

	cacheSize int
	topK      int
	timeout   time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithIndexFile sets the FAISS flat index file. Required.
func WithIndexFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexPath = path
	})
}

// WithCatalogFile sets the metadata table (.csv or .parquet), row-aligned with the index. Required.
func WithCatalogFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogPath = path
	})
}

// WithEmbedder sets a caller-provided query encoder.
// It takes precedence over WithOpenAI and WithOllama.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithOpenAI encodes queries through an OpenAI-compatible embeddings endpoint.
func WithOpenAI(baseURL, model, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.provider = "openai"
		c.baseURL = baseURL
		c.model = model
		c.apiKey = apiKey
	})
}

// WithOllama encodes queries with a model served by Ollama. Empty values use the Ollama defaults.
func WithOllama(serverURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.provider = "ollama"
		c.baseURL = serverURL
		c.model = model
	})
}

// WithQueryInstruction prepends text to every query before encoding (e.g. "query: " for e5 models).
func WithQueryInstruction(s string) Option {
	return optionFunc(func(c *clientConfig) {
		c.instruction = s
	})
}

// WithWarmup makes Open encode a probe query and fail if the vector length differs from the index.
func WithWarmup() Option {
	return optionFunc(func(c *clientConfig) {
		c.warmup = true
	})
}

// WithMemoryCache caches up to size query embeddings in process.
func WithMemoryCache(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheSize = size
	})
}

// WithTopK sets how many neighbours are requested per query. Default: 5.
func WithTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topK = k
	})
}

// WithTimeout bounds each Search call. Default: no bound beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
