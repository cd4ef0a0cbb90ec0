// Package http exposes the account use cases as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"kalanmoney/internal/log"
	"kalanmoney/internal/middleware/ratelimit"
	"kalanmoney/internal/middleware/security"
	"kalanmoney/internal/middleware/trace"
	"kalanmoney/internal/services"
)

type Options struct {
	Addr string
	Deps services.Deps
	// Ready reports whether storage can serve requests; nil means always.
	Ready              func(ctx context.Context) error
	RateLimitPerMinute int
	Logger             *log.Logger
}

type Server struct {
	http.Server

	accounts *services.AccountService
	outcomes *services.AddOutcomeTransaction
	incomes  *services.AddIncomeTransaction
	ready    func(ctx context.Context) error

	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware
	startedAt   time.Time

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware. API routes are rate limited per
// client; health checks are not.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	ready := opts.Ready
	if ready == nil {
		ready = func(context.Context) error { return nil }
	}

	s := &Server{
		accounts: services.NewAccountService(opts.Deps),
		outcomes: services.NewAddOutcomeTransaction(opts.Deps),
		incomes:  services.NewAddIncomeTransaction(opts.Deps),
		ready:    ready,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		tracer:    trace.NewMiddleware(logger.WithComponent(log.ComponentHTTP), extractClientIP),
		startedAt: time.Now(),
	}

	api := http.NewServeMux()
	api.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	api.HandleFunc("GET /api/accounts/{id}", s.handleGetAccount)
	api.HandleFunc("POST /api/accounts/{id}/categories", s.handleCreateCategory)
	api.HandleFunc("GET /api/accounts/{id}/categories", s.handleListCategories)
	api.HandleFunc("POST /api/accounts/{id}/outcomes", s.handleAddOutcome)
	api.HandleFunc("POST /api/accounts/{id}/incomes", s.handleAddIncome)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", s.handleHealth)
	root.HandleFunc("GET /readyz", s.handleReady)
	root.Handle("/api/", s.rateLimiter.Middleware(extractClientIP, s.onRateLimit)(api))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           headers.Middleware(s.tracer.Middleware(root)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, extractClientIP(r),
		log.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
}

// Shutdown stops background routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
