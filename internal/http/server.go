// Package http serves the JSON API over the dashboard service and the
// ledger writer ports.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"spendwise/internal/cache"
	"spendwise/internal/cycle"
	"spendwise/internal/ledger"
	applog "spendwise/internal/log"
	"spendwise/internal/middleware/trace"
	"spendwise/internal/service"
)

const (
	overviewCacheKey = "dashboard"
	overviewCacheTTL = 1 * time.Minute
)

type Server struct {
	http.Server

	dashboard  *service.DashboardService
	reader     ledger.Reader
	txWriter   ledger.TransactionWriter
	billWriter ledger.BillWriter
	calc       cycle.Calculator

	overviewCache *cache.LRUCache[*service.Overview]
	logger        *applog.Logger
	startedAt     time.Time

	// now is swapped in handler tests for deterministic cycles.
	now func() time.Time

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server. reader backs the dashboard; txWriter and billWriter back the
// mutating endpoints.
func NewServer(addr string, dashboard *service.DashboardService, reader ledger.Reader, txWriter ledger.TransactionWriter, billWriter ledger.BillWriter, calc cycle.Calculator) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		dashboard:        dashboard,
		reader:           reader,
		txWriter:         txWriter,
		billWriter:       billWriter,
		calc:             calc,
		overviewCache:    cache.NewLRUCache[*service.Overview](16, overviewCacheTTL),
		logger:           applog.New(applog.Config{Component: applog.ComponentHTTP}),
		startedAt:        time.Now(),
		now:              time.Now,
		stopCacheCleanup: make(chan struct{}),
	}

	s.Server.Handler = trace.NewMiddleware().Middleware(mux)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/cycle/current", s.handleCurrentCycle)
	mux.HandleFunc("GET /api/cycle/next", s.handleNextCycle)
	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /api/bills/upcoming", s.handleUpcomingBills)
	mux.HandleFunc("POST /api/bills/{id}/paid", s.handleBillPaid)

	go s.startCacheCleanup()

	return s
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.overviewCache.CleanExpired(); n > 0 {
				s.logger.Debug("Cache cleanup completed", "entries_removed", n)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the cleanup goroutine and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		err = s.Server.Shutdown(ctx)
	})
	return err
}
