// Package sandbox serves an in-memory imitation of the Payok API for
// local development and end-to-end tests of the client.
package sandbox

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// Options configures a sandbox server
type Options struct {
	APIID  string
	APIKey string

	// LegacyPayouts makes payout listings carry only payout_status_code,
	// the shape older accounts still receive.
	LegacyPayouts bool

	Logger *slog.Logger
}

// Server answers the Payok API methods from a Store
type Server struct {
	store  *Store
	opts   Options
	logger *slog.Logger

	mu       sync.Mutex
	requests map[string]int
}

// New creates a sandbox server backed by store
func New(store *Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:    store,
		opts:     opts,
		logger:   logger.With("component", "sandbox"),
		requests: make(map[string]int),
	}
}

// Router builds the HTTP routes. API methods live under /api.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(NotFoundHandler)
	r.MethodNotAllowedHandler = http.HandlerFunc(MethodNotAllowedHandler)

	r.Use(s.RecoveryMiddleware)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/health", s.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.CountingMiddleware)
	api.Use(s.CredentialsMiddleware)

	api.HandleFunc("/balance", s.Balance).Methods("POST")
	api.HandleFunc("/transaction", s.Transaction).Methods("POST")
	api.HandleFunc("/payout", s.Payout).Methods("POST")
	api.HandleFunc("/payout_create", s.CreatePayout).Methods("POST")

	return r
}

// Requests reports how many requests reached an API method
func (s *Server) Requests(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[method]
}

func (s *Server) countRequest(method string) {
	s.mu.Lock()
	s.requests[method]++
	s.mu.Unlock()
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("sandbox listening", "addr", addr, "shop", s.store.Shop())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("sandbox shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
