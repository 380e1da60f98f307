package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/schemesearch/internal/domain"
	logpkg "github.com/kailas-cloud/schemesearch/internal/logger"
	healthuc "github.com/kailas-cloud/schemesearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/schemesearch/internal/usecase/search"
)

// Searcher runs the query pipeline.
type Searcher interface {
	Search(ctx context.Context, query string) searchuc.Outcome
}

// HealthChecker produces the aggregated health report.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers.
type Server struct {
	search Searcher
	health HealthChecker
	logger *zap.Logger
}

// NewServer creates an HTTP API server. health may be nil, which disables /health.
func NewServer(search Searcher, health HealthChecker, logger *zap.Logger) *Server {
	return &Server{search: search, health: health, logger: logger}
}

// SearchRequest is the POST /search body.
type SearchRequest struct {
	Query string `json:"query"`
}

// SearchResponse is the POST /search body. Schemes is always present; Error only on failure.
type SearchResponse struct {
	Schemes []domain.Scheme `json:"schemes"`
	Error   string          `json:"error,omitempty"`
}

// MessageResponse is the GET / body.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: domain.RootMessage})
}

// Search handles POST /search. Pipeline failures are reported with status 200.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rvr := recover(); rvr != nil {
			logpkg.FromContext(r.Context()).Error("panic in search handler",
				zap.Any("panic", rvr),
				zap.Stack("stacktrace"),
			)
			writeJSON(w, http.StatusOK, SearchResponse{Schemes: []domain.Scheme{}, Error: "internal error"})
		}
	}()

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, SearchResponse{
			Schemes: []domain.Scheme{},
			Error:   "Invalid request body: " + bodyError(err),
		})
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	out := s.search.Search(ctx, req.Query)

	setEmbeddingHeaders(w, usage)
	if !out.OK() {
		writeJSON(w, http.StatusOK, SearchResponse{Schemes: []domain.Scheme{}, Error: out.Err().Error()})
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Schemes: out.Schemes()})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, HealthResponse{Status: string(healthuc.Healthy), Checks: map[string]string{}})
		return
	}
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func bodyError(err error) string {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Sprintf("body exceeds %d bytes", maxErr.Limit)
	}
	return err.Error()
}
