// Package server exposes a small admin HTTP API for health checks and manual
// job runs while wadigest serve is running.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edgard/wadigest/internal/logger"
	"github.com/edgard/wadigest/internal/tasks"
)

const shutdownTimeout = 10 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the admin HTTP API.
type Server struct {
	engine  *gin.Engine
	srv     *http.Server
	store   Pinger
	taskMap map[string]tasks.ScheduledTaskFunc
	log     *slog.Logger

	mu      sync.Mutex
	running map[string]bool
}

// New builds the admin API listening on addr.
func New(addr string, store Pinger, taskMap map[string]tasks.ScheduledTaskFunc, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "admin_api")

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), logger.Middleware(log))

	s := &Server{
		engine:  engine,
		store:   store,
		taskMap: taskMap,
		log:     log,
		running: make(map[string]bool),
	}

	engine.GET("/healthz", s.health)
	engine.GET("/jobs", s.listJobs)
	engine.POST("/jobs/:name/run", s.runJob)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Admin API listening", "addr", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("admin API failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down admin API: %w", err)
	}
	s.log.Info("Admin API stopped")
	return nil
}

func (s *Server) health(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.log.WarnContext(c.Request.Context(), "Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listJobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": tasks.Names(s.taskMap)})
}

func (s *Server) runJob(c *gin.Context) {
	name := c.Param("name")
	fn, ok := s.taskMap[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown job %q", name)})
		return
	}

	if !s.acquire(name) {
		c.JSON(http.StatusConflict, gin.H{"job": name, "error": "job is already running"})
		return
	}
	defer s.release(name)

	if err := fn(c.Request.Context()); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"job": name, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": name, "status": "ok"})
}

func (s *Server) acquire(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[name] {
		return false
	}
	s.running[name] = true
	return true
}

func (s *Server) release(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, name)
}
