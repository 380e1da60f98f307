package schemesearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/schemesearch/internal/catalog"
	"github.com/kailas-cloud/schemesearch/internal/dataset"
	"github.com/kailas-cloud/schemesearch/internal/db/memory"
	"github.com/kailas-cloud/schemesearch/internal/domain"
	"github.com/kailas-cloud/schemesearch/internal/encoder"
	healthuc "github.com/kailas-cloud/schemesearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/schemesearch/internal/usecase/search"
)

// Internal interfaces for substitution in tests.
type searchUseCase interface {
	Search(ctx context.Context, query string) searchuc.Outcome
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the schemesearch SDK entry point. Safe for concurrent use.
type Client struct {
	stats     dataset.Stats
	cache     *memory.Store
	searchSvc searchUseCase
	healthSvc healthUseCase
	obs       *observer
}

// Open loads the index and catalog and wires the query encoder.
func Open(ctx context.Context, opts ...Option) (c *Client, err error) {
	cfg := &clientConfig{topK: domain.DefaultTopK}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.indexPath == "" || cfg.catalogPath == "" {
		return nil, errors.New("schemesearch: index and catalog files required (use WithIndexFile and WithCatalogFile)")
	}
	if cfg.embedder == nil && cfg.provider == "" {
		return nil, errors.New("schemesearch: encoder required (use WithEmbedder, WithOpenAI or WithOllama)")
	}
	if cfg.topK <= 0 || cfg.topK > domain.MaxTopK {
		return nil, fmt.Errorf("schemesearch: top-k must be in 1..%d, got %d", domain.MaxTopK, cfg.topK)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { obs.observe("open", start, err) }()

	ds, err := dataset.Load(ctx, cfg.indexPath, cfg.catalogPath, catalog.FormatAuto)
	if err != nil {
		return nil, fmt.Errorf("schemesearch: %w", err)
	}
	if !ds.Aligned() && cfg.logger != nil {
		cfg.logger.Warn("index and catalog sizes differ",
			"vectors", ds.Index.Len(),
			"rows", ds.Table.Len(),
		)
	}

	return wireClient(ctx, ds, cfg, obs)
}

func wireClient(ctx context.Context, ds *dataset.Dataset, cfg *clientConfig, obs *observer) (*Client, error) {
	encCfg := encoder.Config{
		Provider:         cfg.provider,
		BaseURL:          cfg.baseURL,
		APIKey:           cfg.apiKey,
		Model:            cfg.model,
		Dimensions:       ds.Index.Dimension(),
		QueryInstruction: cfg.instruction,
		Timeout:          cfg.timeout,
	}

	var cache *memory.Store
	if cfg.cacheSize > 0 {
		s, err := memory.NewStore(cfg.cacheSize, 0)
		if err != nil {
			return nil, fmt.Errorf("schemesearch: %w", err)
		}
		cache = s
		encCfg.Cache = s
	}

	var enc encoder.Encoder
	if cfg.embedder != nil {
		enc = encoder.Wrap(&embedderAdapter{inner: cfg.embedder}, "custom", encCfg, nil)
	} else {
		var err error
		enc, err = encoder.Build(encCfg)
		if err != nil {
			return nil, fmt.Errorf("schemesearch: %w", err)
		}
	}

	if cfg.warmup {
		if _, err := encoder.Warmup(ctx, enc, ds.Index.Dimension()); err != nil {
			return nil, fmt.Errorf("schemesearch: %w", err)
		}
	}

	searchSvc := searchuc.New(enc, ds.Index, ds.Table,
		searchuc.WithTopK(cfg.topK),
		searchuc.WithTimeout(cfg.timeout),
	)

	return &Client{
		stats:     ds.Stats(),
		cache:     cache,
		searchSvc: searchSvc,
		healthSvc: healthuc.New(ds.Index, ds.Table, enc, nil),
		obs:       obs,
	}, nil
}

// Search returns at most top-k schemes closest to query, in similarity order.
// Failures never panic; they are reported in Result.Err with an empty Schemes.
func (c *Client) Search(ctx context.Context, query string) Result {
	start := time.Now()

	out := c.searchSvc.Search(ctx, query)
	if !out.OK() {
		c.obs.observe("search", start, out.Err(), "kind", domain.FailureKind(out.Err()))
		return Result{Schemes: []Scheme{}, Err: out.Err()}
	}

	schemes := make([]Scheme, len(out.Schemes()))
	for i, s := range out.Schemes() {
		schemes[i] = schemeFromDomain(s)
	}
	c.obs.observe("search", start, nil, "results", len(schemes))
	c.obs.results(len(schemes))
	return Result{Schemes: schemes}
}

// Stats describes the loaded index and catalog.
func (c *Client) Stats() Stats {
	return Stats{
		Dimension: c.stats.Dimension,
		Vectors:   c.stats.Vectors,
		Metric:    c.stats.Metric,
		Rows:      c.stats.Rows,
		Columns:   c.stats.Columns,
		Aligned:   c.stats.Aligned,
	}
}

// Health checks the loaded data and the encoder.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
}
