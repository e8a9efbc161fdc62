package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/nDmitry/spacetravelling/internal/app"
	"github.com/nDmitry/spacetravelling/internal/cache"
	"github.com/nDmitry/spacetravelling/internal/render"
)

// Server serves the blog over HTTP
type Server struct {
	mux       *http.ServeMux
	server    *http.Server
	logger    *slog.Logger
	cache     cache.Cache
	content   Content
	renderer  Renderer
	generator Generator
	pageSize  int
	port      string
}

// NewServer creates a new blog server
func NewServer(c cache.Cache, content Content, r Renderer, g Generator, pageSize int, port string) *Server {
	mux := http.NewServeMux()
	logger := app.Logger()

	server := &Server{
		mux:       mux,
		logger:    logger,
		cache:     c,
		content:   content,
		renderer:  r,
		generator: g,
		pageSize:  pageSize,
		port:      port,
		server: &http.Server{
			Addr:              ":" + port,
			Handler:           nil,               // Will be set in Run
			ReadHeaderTimeout: 10 * time.Second,  // Mitigate Slowloris
			ReadTimeout:       30 * time.Second,  // Time to read entire request (including body)
			WriteTimeout:      30 * time.Second,  // Time to write response
			IdleTimeout:       120 * time.Second, // Keep-alive timeout
		},
	}

	server.registerHandlers()

	return server
}

// registerHandlers sets up all routes
func (s *Server) registerHandlers() {
	NewBlogHandler(s.mux, s.cache, s.content, s.renderer, s.generator, s.pageSize)

	s.mux.Handle("GET /images/", http.FileServerFS(render.Static()))
	s.mux.HandleFunc("GET /healthz", healthz)
}

// Handler returns the routes wrapped with the middleware
func (s *Server) Handler() http.Handler {
	return Logger(s.mux)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Run starts the server and blocks until the context is canceled
func (s *Server) Run(ctx context.Context) error {
	s.server.Handler = s.Handler()

	// Set BaseContext to pass the parent context
	s.server.BaseContext = func(_ net.Listener) context.Context { return ctx }

	// Register shutdown handler
	s.server.RegisterOnShutdown(func() {
		s.logger.Info("Server is shutting down...")
	})

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("Starting HTTP server", "port", s.port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	// Wait for context cancellation or server error
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	// Create a timeout for shutdown
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.logger.Info("Server exited gracefully")

	return nil
}
