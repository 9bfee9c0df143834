// Package server assembles the HTTP surface: Connect services on a chi router,
// health and metrics endpoints, served over h2c.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/circleledger/internal/config"
	"github.com/mmynk/circleledger/internal/ledger"
	"github.com/mmynk/circleledger/internal/middleware"
	"github.com/mmynk/circleledger/internal/service"
	"github.com/mmynk/circleledger/internal/storage"
	"github.com/mmynk/circleledger/pkg/api/apiconnect"
)

const shutdownTimeout = 10 * time.Second

// Server serves the circleledger API.
type Server struct {
	httpServer *http.Server
}

// New builds a server for cfg on top of store. The caller owns store.
func New(cfg config.Config, store storage.Store) (*Server, error) {
	handler, err := NewHandler(cfg, store)
	if err != nil {
		return nil, err
	}
	return &Server{
		httpServer: &http.Server{
			Addr: cfg.Addr(),
			// Wrap with h2c for HTTP/2 without TLS (Connect clients may use either)
			Handler:           h2c.NewHandler(handler, &http2.Server{}),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// NewHandler builds the router with every service mounted.
func NewHandler(cfg config.Config, store storage.Store) (http.Handler, error) {
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return nil, err
	}
	defaultMode, err := cfg.DefaultMode()
	if err != nil {
		return nil, err
	}

	engine := ledger.New(store, ledger.WithDustThreshold(cfg.DustThreshold()))

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(timeout))
	r.Use(cors)

	r.Get("/healthz", healthHandler(store))
	if cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	interceptors := connect.WithInterceptors(middleware.LoggingInterceptor())
	r.Mount(apiconnect.NewUserServiceHandler(service.NewUserService(store), interceptors))
	r.Mount(apiconnect.NewGroupServiceHandler(service.NewGroupService(store, engine, defaultMode), interceptors))
	r.Mount(apiconnect.NewLedgerServiceHandler(service.NewLedgerService(store, engine), interceptors))

	return r, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func healthHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := store.Ping(r.Context()); err != nil {
			slog.Error("Health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"status":"unavailable"}`)
			return
		}
		fmt.Fprint(w, `{"status":"ok"}`)
	}
}

// requestLogger logs all incoming requests
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"remote_addr", r.RemoteAddr,
			"request_id", chimw.GetReqID(r.Context()),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// cors adds CORS headers for browser access
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
