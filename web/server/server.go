package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/df07/go-stratified-raytracer/pkg/config"
	"github.com/df07/go-stratified-raytracer/pkg/output"
	"github.com/df07/go-stratified-raytracer/pkg/scene"
)

// Request limits shared by the synchronous and job endpoints
const (
	maxDimension = 2000
	maxSamples   = 64 // Per axis
	maxDepth     = 64
)

// Server handles web requests for the raytracer
type Server struct {
	cfg    config.Config
	echo   *echo.Echo
	jobs   *JobManager
	logOut io.Writer
}

// Options tune a server beyond its configuration
type Options struct {
	Uploader *output.S3Uploader // Publishes finished jobs; nil disables uploads
	LogOut   io.Writer          // Echo of job consoles; nil discards
}

// NewServer creates a new web server
func NewServer(cfg config.Config, opts Options) *Server {
	workers := cfg.MaxConcurrentJobs
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	s := &Server{
		cfg:    cfg,
		echo:   echo.New(),
		jobs:   NewJobManager(workers, workers*4, opts.Uploader, cfg.Resize(), opts.LogOut),
		logOut: opts.LogOut,
	}
	s.echo.HideBanner = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(corsMiddleware)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/api/health", s.handleHealth)
	s.echo.GET("/api/scenes", s.handleScenes)
	s.echo.GET("/api/system", s.handleSystem)
	s.echo.GET("/api/render", s.handleRender)
	s.echo.GET("/api/inspect", s.handleInspect)
	s.echo.POST("/api/renders", s.handleCreateJob)
	s.echo.GET("/api/renders/:id", s.handleGetJob)
	s.echo.GET("/api/renders/:id/image", s.handleJobImage)
	s.echo.GET("/api/renders/:id/thumbnail", s.handleJobThumbnail)
}

// Handler returns the HTTP handler serving all routes
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on the configured port until Shutdown
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	log.Printf("Starting web server on http://localhost%s", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for queued renders to finish
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)
	s.jobs.Stop()
	return err
}

func corsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Access-Control-Allow-Origin", "*")
		c.Response().Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Response().Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if c.Request().Method == http.MethodOptions {
			return c.NoContent(http.StatusOK)
		}

		return next(c)
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in and JSON scenes
func (s *Server) handleScenes(c echo.Context) error {
	scenes, err := scene.ListScenes()
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"scenes": scenes})
}

func jsonError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}

// parseIntParam parses an integer parameter from URL query with validation.
// A missing parameter yields defaultValue without range checks.
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}
