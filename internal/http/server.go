// Package http exposes the dashboard as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"ledgerdash/internal/charts"
	"ledgerdash/internal/core"
	"ledgerdash/internal/ledger"
	"ledgerdash/internal/log"
	"ledgerdash/internal/middleware/ratelimit"
	"ledgerdash/internal/middleware/security"
	"ledgerdash/internal/middleware/trace"
	"ledgerdash/internal/service"
)

// DashboardService is the slice of the dashboard the HTTP layer needs.
type DashboardService interface {
	Report(ctx context.Context, token string, month, year int) (service.PeriodReport, error)
	TopCategories(ctx context.Context, token string, month, year, n int) ([]core.RankedEntry, error)
	ExpenseSlices(ctx context.Context, token string, month, year, n int) ([]core.RankedEntry, error)
	DeleteTransaction(ctx context.Context, token, id string, month, year int) error
	UpdateTransaction(ctx context.Context, token, id string, update ledger.UpdateRequest, month, year int) error
}

type Server struct {
	http.Server

	dashboard DashboardService
	charts    *charts.Generator
	logger    *log.Logger
	limiter   *ratelimit.Limiter
	topN      int

	shutdownOnce sync.Once
}

// Options tune the server beyond its required collaborators.
type Options struct {
	// RequestsPerMinute bounds per-client request rates. Zero uses
	// the rate limiter's default.
	RequestsPerMinute int

	// TopN is the default size of ranked category responses.
	TopN int

	// ReadTimeout and WriteTimeout guard slow clients.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func NewServer(addr string, dashboard DashboardService, generator *charts.Generator, logger *log.Logger, opts Options) *Server {
	if opts.TopN <= 0 {
		opts.TopN = 5
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 15 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 30 * time.Second
	}

	s := &Server{
		dashboard: dashboard,
		charts:    generator,
		logger:    logger.WithComponent(log.ComponentHTTP),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		topN:      opts.TopN,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/dashboard/summary", s.handleSummary)
	mux.HandleFunc("GET /api/dashboard/categories", s.handleCategories)
	mux.HandleFunc("GET /api/dashboard/daily", s.handleDaily)
	mux.HandleFunc("GET /api/dashboard/top-categories", s.handleTopCategories)
	mux.HandleFunc("GET /api/dashboard/chart.png", s.handleChart)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("PATCH /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	resolver := security.NewIPResolver()
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(resolver.Extract)
	limit := s.limiter.Middleware(resolver.Extract, nil)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      tracer.Middleware(headers.Middleware(limit(mux))),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}

	return s
}

// Shutdown stops the rate limiter cleanup goroutine along with the
// listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
