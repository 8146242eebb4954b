// Package http exposes the expense tracker as a small JSON API: the thin
// adapter that dispatches user intents into the form controller and the
// repository.
package http

import (
	"net/http"
	"sync/atomic"

	"spendwise/internal/assist"
	"spendwise/internal/middleware/trace"
	"spendwise/internal/repository"
)

// Server wires handlers, middleware and the underlying http.Server.
// Callers may adjust timeouts on the embedded server before Start.
type Server struct {
	*http.Server

	repo    *repository.Repository
	assist  *assist.Client
	limiter *rateLimiter
	metrics appMetrics
}

type appMetrics struct {
	expensesCreated int64
	expensesUpdated int64
	expensesDeleted int64
	assistCalls     int64
	rateLimited     int64
}

// NewServer builds the server. assistClient may be nil or key-less; the
// assist endpoints then answer 503.
func NewServer(addr string, repo *repository.Repository, assistClient *assist.Client) *Server {
	s := &Server{
		repo:    repo,
		assist:  assistClient,
		limiter: newRateLimiter(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/expenses", s.handleExpenses)
	mux.HandleFunc("/api/expenses/", s.handleExpenseByID)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/categories", s.handleCategories)
	mux.HandleFunc("/api/assist/receipt", s.handleAssistReceipt)
	mux.HandleFunc("/api/assist/category", s.handleAssistCategory)
	mux.HandleFunc("/healthz", s.handleHealth)

	var handler http.Handler = mux
	handler = s.rateLimitMiddleware(handler)
	handler = trace.Middleware(handler)

	s.Server = &http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s
}

// Handler returns the fully wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.Server.Handler
}

// Stop releases server-owned background resources.
func (s *Server) Stop() {
	s.limiter.stop()
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(trace.ClientIP(r)) {
			atomic.AddInt64(&s.metrics.rateLimited, 1)
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"expenses": s.repo.Len(),
	})
}
