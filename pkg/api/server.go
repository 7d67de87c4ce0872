// Package api serves the nodelyzer HTTP API: stateless analysis endpoints,
// the saved analysis store, GraphQL, health and metrics.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dd0wney/nodelyzer/pkg/analysis"
	"github.com/dd0wney/nodelyzer/pkg/api/middleware"
	"github.com/dd0wney/nodelyzer/pkg/config"
	"github.com/dd0wney/nodelyzer/pkg/graphql"
	"github.com/dd0wney/nodelyzer/pkg/health"
	"github.com/dd0wney/nodelyzer/pkg/logging"
	"github.com/dd0wney/nodelyzer/pkg/metrics"
	"github.com/dd0wney/nodelyzer/pkg/store"
)

// systemMetricsInterval is how often runtime gauges are refreshed
const systemMetricsInterval = 10 * time.Second

// Options wires a Server. Analysis and Store are required.
type Options struct {
	Config   config.ServerConfig
	Analysis *analysis.Service
	Store    store.Store
	Metrics  *metrics.Registry
	// Health defaults to a process probe plus a store ping
	Health  *health.Checker
	GraphQL graphql.LimitConfig
	Logger  logging.Logger
}

// Server is the HTTP API server
type Server struct {
	cfg      config.ServerConfig
	analysis *analysis.Service
	store    store.Store
	metrics  *metrics.Registry
	health   *health.Checker
	graphql  http.Handler
	logger   logging.Logger
	handler  http.Handler

	httpServer *http.Server
	startTime  time.Time
}

// NewServer creates a new API server
func NewServer(opts Options) (*Server, error) {
	if opts.Analysis == nil {
		return nil, errors.New("api: analysis service is required")
	}
	if opts.Store == nil {
		return nil, errors.New("api: store is required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Health == nil {
		opts.Health = defaultHealth(opts.Store)
	}
	if opts.GraphQL == (graphql.LimitConfig{}) {
		opts.GraphQL = graphql.DefaultLimits()
	}
	if err := opts.GraphQL.Validate(); err != nil {
		return nil, fmt.Errorf("api: %w", err)
	}

	schema, err := graphql.NewSchema(&graphql.Resolver{
		Store:    opts.Store,
		Analysis: opts.Analysis,
		Limits:   opts.GraphQL,
	})
	if err != nil {
		return nil, fmt.Errorf("api: build graphql schema: %w", err)
	}

	s := &Server{
		cfg:       opts.Config,
		analysis:  opts.Analysis,
		store:     opts.Store,
		metrics:   opts.Metrics,
		health:    opts.Health,
		graphql:   graphql.NewHandler(schema, opts.GraphQL.MaxDepth),
		logger:    opts.Logger.With(logging.Component("api")),
		startTime: time.Now(),
	}
	s.handler = s.buildHandler()
	return s, nil
}

func defaultHealth(st store.Store) *health.Checker {
	driver := "unknown"
	if d, ok := st.(interface{ Driver() string }); ok {
		driver = d.Driver()
	}
	c := health.NewChecker()
	c.Register("process", health.Static("running"), health.KindHealth, health.KindLiveness)
	c.Register("store", health.StoreCheck(driver, st.Ping), health.KindHealth, health.KindReadiness)
	return c
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// buildHandler applies the middleware chain. Metrics sits directly on the
// mux so it can read the matched route pattern.
func (s *Server) buildHandler() http.Handler {
	var h http.Handler = s.routes()
	if s.metrics != nil {
		h = middleware.Metrics(s.metrics)(h)
	}
	h = middleware.BodySizeLimit(s.cfg.MaxBodyBytes)(h)
	h = middleware.SecurityHeaders()(h)
	h = middleware.CORS(middleware.NewCORSConfig(s.cfg.CORSOrigins))(h)
	h = middleware.PanicRecovery(s.logger)(h)
	h = middleware.Logging(s.logger)(h)
	h = middleware.RequestID()(h)
	return h
}

// ListenAndServe serves on cfg.Addr until ctx is cancelled, then drains
// in-flight requests for at most cfg.ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("api: listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe over an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	if s.metrics != nil {
		go s.updateMetricsPeriodically(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", logging.String("addr", ln.Addr().String()))
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api: serve: %w", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("api shutting down", logging.Duration("timeout", timeout))
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api: shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api: serve: %w", err)
	}
	return nil
}

// Uptime reports how long the server has existed
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}

func (s *Server) updateMetricsPeriodically(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	s.metrics.UpdateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.metrics.UpdateSystemMetrics()
		}
	}
}
