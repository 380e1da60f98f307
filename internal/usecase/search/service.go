// Package search runs the query pipeline: encode, nearest-neighbour search,
// bounds validation and row projection.
package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/schemesearch/internal/domain"
	"github.com/kailas-cloud/schemesearch/internal/logger"
	"github.com/kailas-cloud/schemesearch/internal/metrics"
)

// Service executes scheme searches. Safe for concurrent use.
type Service struct {
	enc     Encoder
	idx     Index
	cat     Catalog
	topK    int
	timeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithTopK sets the number of neighbours requested from the index.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithTimeout bounds each pipeline run. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// New creates a search service.
func New(enc Encoder, idx Index, cat Catalog, opts ...Option) *Service {
	s := &Service{enc: enc, idx: idx, cat: cat, topK: domain.DefaultTopK}
	for _, o := range opts {
		o(s)
	}
	return s
}

// TopK returns the configured neighbour count.
func (s *Service) TopK() int { return s.topK }

// Search maps a free-text query to at most TopK schemes in similarity order.
// It never panics and never returns a bare error; failures are carried in the Outcome.
func (s *Service) Search(ctx context.Context, query string) (out Outcome) {
	start := time.Now()
	ctx = logger.With(ctx, zap.Int("query_len", len(query)), zap.Int("top_k", s.topK))
	log := logger.FromContext(ctx)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	defer func() {
		observe(out, time.Since(start))
		if !out.OK() {
			log.Warn("Search failed",
				zap.String("kind", domain.FailureKind(out.Err())),
				zap.Error(out.Err()),
			)
		}
	}()

	vec, err := s.encode(ctx, query)
	if err != nil {
		return Failure(err)
	}

	neighbors, err := s.neighbors(ctx, vec)
	if err != nil {
		return Failure(err)
	}

	schemes, err := s.project(log, neighbors)
	if err != nil {
		return Failure(err)
	}
	return Success(schemes)
}

func (s *Service) encode(ctx context.Context, query string) (vec []float32, err error) {
	defer func() {
		if r := recover(); r != nil {
			vec, err = nil, fmt.Errorf("%w: encoder panic: %v", domain.ErrEncodingFailure, r)
		}
	}()

	res, err := s.enc.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEncodingFailure, err)
	}
	if len(res.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", domain.ErrEncodingFailure)
	}
	return res.Embedding, nil
}

func (s *Service) neighbors(ctx context.Context, vec []float32) (ns []domain.Neighbor, err error) {
	defer func() {
		if r := recover(); r != nil {
			ns, err = nil, fmt.Errorf("%w: index panic: %v", domain.ErrSearchFailure, r)
		}
	}()

	ns, err = s.idx.Search(ctx, vec, s.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchFailure, err)
	}
	if len(ns) > s.topK {
		return nil, fmt.Errorf("%w: index returned %d slots for k=%d", domain.ErrSearchFailure, len(ns), s.topK)
	}
	return ns, nil
}

// project drops sentinel and out-of-range positions and resolves the rest in rank order.
func (s *Service) project(log *zap.Logger, neighbors []domain.Neighbor) (out []domain.Scheme, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: catalog panic: %v", domain.ErrLookupFailure, r)
		}
	}()

	n := int64(s.cat.Len())
	out = make([]domain.Scheme, 0, len(neighbors))
	for rank, nb := range neighbors {
		switch {
		case nb.IsEmpty():
			metrics.SearchDroppedTotal.WithLabelValues("sentinel").Inc()
			log.Debug("Dropped sentinel position", zap.Int("rank", rank), zap.Int64("position", nb.Position))
			continue
		case nb.Position >= n:
			metrics.SearchDroppedTotal.WithLabelValues("out_of_range").Inc()
			log.Debug("Dropped out-of-range position",
				zap.Int("rank", rank),
				zap.Int64("position", nb.Position),
				zap.Int64("rows", n),
			)
			continue
		}

		row, err := s.cat.At(int(nb.Position))
		if err != nil {
			return nil, fmt.Errorf("%w: position %d: %w", domain.ErrLookupFailure, nb.Position, err)
		}
		out = append(out, row)
	}
	return out, nil
}

func observe(out Outcome, elapsed time.Duration) {
	if out.OK() {
		metrics.SearchDuration.WithLabelValues("ok").Observe(elapsed.Seconds())
		metrics.SearchResults.Observe(float64(len(out.Schemes())))
		return
	}
	metrics.SearchDuration.WithLabelValues("failed").Observe(elapsed.Seconds())
	metrics.SearchFailuresTotal.WithLabelValues(domain.FailureKind(out.Err())).Inc()
}
