package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"receiver/config"
	"receiver/handler"
	"receiver/logging"
	"receiver/metrics"
)

var log *logrus.Logger

func init() {
	log = logging.GetLogger()
}

// Server owns the router and the single long-lived http.Server.
type Server struct {
	Router  chi.Router
	Config  *config.Config
	Metrics *metrics.Collector
	Sink    *logrus.Logger
}

// New creates a Server with all routes and middleware configured. sink receives
// the accepted payloads; nil means a text sink on stdout.
func New(cfg *config.Config, sink *logrus.Logger) *Server {
	if sink == nil {
		sink, _ = logging.NewSink("text", nil)
	}
	m := metrics.New(cfg.Metrics.LogInterval)
	cors := NewCORS(cfg.CORS.AllowedOrigins)

	r := chi.NewRouter()
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger)
	r.Use(cors.Handler)
	r.Use(chimw.Recoverer)

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Method(http.MethodPost, "/add", handler.NewIngressHandler(sink, m, cfg.MaxBodyBytes))
	r.Get("/healthz", handler.Health)
	if cfg.Metrics.Enabled {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	return &Server{Router: r, Config: cfg, Metrics: m, Sink: sink}
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Config.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.Config.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully within
// the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	if s.Config.Metrics.Enabled {
		go s.Metrics.Run(monitorCtx)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
		log.Infoln("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Infoln("Server stopped")
	return nil
}
