package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/custodia-labs/askdocs/internal/logger"
)

// Defaults for Config.
const (
	DefaultRequestTimeout    = 120 * time.Second
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultShutdownTimeout   = 15 * time.Second
	DefaultAllowedOrigin     = "*"

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes = 1 << 20
)

// Config holds HTTP server configuration.
type Config struct {
	// Addr is the listen address, host:port.
	Addr string

	// APIKey guards every route except /health and /wakeup.
	// An empty key denies those routes.
	APIKey string

	// WebhookKey guards /wakeup. An empty key denies the route.
	WebhookKey string

	// AllowedOrigin is sent in Access-Control-Allow-Origin.
	AllowedOrigin string

	// RequestTimeout bounds a single request end to end.
	RequestTimeout time.Duration
}

// Server is the HTTP front end for askdocs.
type Server struct {
	ports   *Ports
	cfg     Config
	handler http.Handler
}

// NewServer creates a new HTTP server with the given ports.
func NewServer(ports *Ports, cfg Config) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = DefaultAllowedOrigin
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	s := &Server{
		ports: ports,
		cfg:   cfg,
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFiles)))
	mux.HandleFunc("POST /process_input", s.handleProcessInput)
	mux.HandleFunc("POST /wakeup", s.handleWakeup)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Outermost first.
	return chain(mux,
		withRequestID,
		withAccessLog,
		s.withCORS,
		s.withAuth,
		s.withTimeout,
	)
}

// Run listens on cfg.Addr and serves until the context is cancelled.
// In-flight requests are given DefaultShutdownTimeout to finish.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until the context is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultShutdownTimeout)
		defer cancel()
		shutdownErr <- httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("listening on %s", ln.Addr())
	err := httpServer.Serve(ln)
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-shutdownErr
}
