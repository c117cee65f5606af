package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/mchmarny/waydo/pkg/logger"
	"github.com/mchmarny/waydo/pkg/metric"
)

const (
	// DefaultHost keeps the status server on the loopback interface.
	DefaultHost = "127.0.0.1"

	// DefaultPort is the default HTTP server port.
	DefaultPort = 9876

	// DefaultReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	DefaultReadTimeout = 10 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	DefaultIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout is the maximum duration to wait for active connections
	// to close during shutdown.
	DefaultShutdownTimeout = 5 * time.Second

	// DefaultMaxHeaderBytes limits request header size.
	DefaultMaxHeaderBytes = 1 << 20 // 1 MB

	healthCheckTimeout = 2 * time.Second
)

// HealthChecker reports whether a component is able to do its work.
// Healthy returns nil when healthy, or an error describing the problem.
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

// HealthFunc adapts a function to HealthChecker.
type HealthFunc func(ctx context.Context) error

// Healthy calls f.
func (f HealthFunc) Healthy(ctx context.Context) error { return f(ctx) }

// Server is the daemon's HTTP status server.
type Server struct {
	mux             *http.ServeMux
	host            string
	port            int
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
	maxHeaderBytes  int
	logger          *slog.Logger

	mu      sync.RWMutex // protects running and addr
	running bool
	addr    net.Addr
}

// Option is a functional option for configuring the Server.
type Option func(*Server)

// WithHost sets the interface to listen on.
// If not specified, DefaultHost (127.0.0.1) is used.
func WithHost(host string) Option {
	return func(s *Server) { s.host = host }
}

// WithPort sets the port number for the HTTP server. Port 0 picks a free
// port; Addr reports it once the server is running.
// If not specified, DefaultPort (9876) is used.
func WithPort(port int) Option {
	return func(s *Server) { s.port = port }
}

// WithReadTimeout sets the maximum duration for reading the entire request.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Server) { s.readTimeout = d }
}

// WithWriteTimeout sets the maximum duration before timing out writes of the response.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) { s.writeTimeout = d }
}

// WithShutdownTimeout sets the maximum duration to wait for graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

// WithLogger sets the logger used for lifecycle and http.Server errors.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithHandler registers a custom HTTP handler for the specified pattern.
// Multiple handlers can be registered by calling this option multiple times.
//
// Example:
//
//	srv := server.New(server.WithHandler("/menu", tree.Handler()))
func WithHandler(pattern string, handler http.Handler) Option {
	return func(s *Server) {
		s.mux.Handle(pattern, handler)
	}
}

// WithHealthCheck adds /healthz backed by hc. The endpoint returns 200 with
// body "ok" when hc is healthy and 503 with the error text otherwise.
func WithHealthCheck(hc HealthChecker) Option {
	return func(s *Server) {
		s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()

			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			if err := hc.Healthy(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(err.Error()))
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
	}
}

// WithPrometheusMetrics serves reg at /metrics.
func WithPrometheusMetrics(reg prometheus.Gatherer) Option {
	return func(s *Server) {
		s.mux.Handle("/metrics", metric.GetHandlerForRegistry(reg))
	}
}

// New creates a new HTTP server with the provided options.
//
// Default configuration:
//   - Host: 127.0.0.1
//   - Port: 9876
//   - ReadTimeout: 10s
//   - WriteTimeout: 10s
//   - IdleTimeout: 60s
//   - ShutdownTimeout: 5s
//   - MaxHeaderBytes: 1 MB
//
// Example:
//
//	srv := server.New(
//	    server.WithPort(9876),
//	    server.WithPrometheusMetrics(reg),
//	    server.WithHealthCheck(d),
//	)
func New(opts ...Option) *Server {
	s := &Server{
		host:            DefaultHost,
		port:            DefaultPort,
		readTimeout:     DefaultReadTimeout,
		writeTimeout:    DefaultWriteTimeout,
		idleTimeout:     DefaultIdleTimeout,
		shutdownTimeout: DefaultShutdownTimeout,
		maxHeaderBytes:  DefaultMaxHeaderBytes,
		mux:             http.NewServeMux(),
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger.Debug("server initialized",
		"host", s.host,
		"port", s.port,
		"read_timeout", s.readTimeout,
		"write_timeout", s.writeTimeout)

	return s
}

// Handler returns the server's request multiplexer.
func (s *Server) Handler() http.Handler { return s.mux }

// IsRunning returns true once the socket is bound and until Serve returns.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.running
}

// Addr returns the bound address while the server is running, nil otherwise.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.addr
}

// Serve starts the HTTP server and blocks until the context is canceled or an error occurs.
//
// Two goroutines run in an errgroup: one serves on the pre-bound listener,
// the other waits for cancellation and shuts the server down within the
// shutdown timeout. Returns nil on graceful shutdown.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:           net.JoinHostPort(s.host, strconv.Itoa(s.port)),
		Handler:        s.mux,
		ReadTimeout:    s.readTimeout,
		WriteTimeout:   s.writeTimeout,
		IdleTimeout:    s.idleTimeout,
		MaxHeaderBytes: s.maxHeaderBytes,
		ErrorLog:       logger.NewLogLogger(s.logger, slog.LevelError),
	}

	// Create listener first so we can set running=true only after socket is bound
	listener, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.mu.Lock()
	s.running = true
	s.addr = listener.Addr()
	s.mu.Unlock()

	s.logger.Info("starting status server", "addr", listener.Addr().String())

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer func() {
			s.mu.Lock()
			s.running = false
			s.addr = nil
			s.mu.Unlock()
		}()

		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		s.logger.Info("shutting down status server", "grace_period", s.shutdownTimeout)

		shutdownStart := time.Now()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown error", "error", err)
		}

		s.logger.Info("status server shutdown complete", "duration", time.Since(shutdownStart))

		return nil
	})

	return g.Wait()
}
