// Package web serves the browser UI: a single page that submits a request,
// runs the workflow, and shows the transcript, plus a small JSON API over
// the run history.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"codeforge/internal/history"
	"codeforge/internal/workflow"
)

// Engine runs one workflow per request. The workflow engine satisfies this.
type Engine interface {
	Run(ctx context.Context, userRequest string, maxIterations int) (*workflow.State, error)
}

// HistoryStore persists and lists runs. *history.Store satisfies this.
type HistoryStore interface {
	SaveRun(state *workflow.State) error
	ListRuns(limit int) ([]history.RunSummary, error)
	GetRun(runID string) (*history.Run, error)
}

// Config holds the server configuration.
type Config struct {
	Host            string
	Port            int
	MaxIterations   int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the default server configuration. The write
// timeout is generous because a run blocks on oracle calls.
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            8080,
		MaxIterations:   5,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server is the HTTP server for the codeforge web interface.
type Server struct {
	config     Config
	engine     Engine
	store      HistoryStore
	logger     *zap.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a Server. The store may be nil, in which case runs are not
// persisted and history endpoints report an empty list.
func New(cfg Config, engine Engine, store HistoryStore, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxIterations < 1 {
		cfg.MaxIterations = DefaultConfig().MaxIterations
	}

	s := &Server{
		config: cfg,
		engine: engine,
		store:  store,
		logger: logger,
	}
	s.router = s.setupRouter()
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}).Handler)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/runs", s.handleCreateRun)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{runID}", s.handleGetRun)
	})
	r.Get("/", s.handleIndex)

	return r
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("web server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}
