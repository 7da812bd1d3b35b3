package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"

	"github.com/df07/go-whitted-raytracer/pkg/log"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
	"github.com/labstack/echo/v4"
)

const (
	maxImageSize   = 2000
	consoleEntries = 500
)

// Server handles web requests for the raytracer
type Server struct {
	port      int
	scenesDir string

	echo    *echo.Echo
	console *Console
	logger  log.Logger
	renders atomic.Uint64
}

// NewServer creates a new web server. Scene files are listed from scenesDir.
func NewServer(port int, scenesDir string) *Server {
	s := &Server{
		port:      port,
		scenesDir: scenesDir,
		console:   NewConsole(consoleEntries),
		logger:    log.New("web"),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(corsMiddleware)

	e.GET("/api/health", s.handleHealth)
	e.GET("/api/scenes", s.handleScenes)
	e.GET("/api/render", s.handleRender)
	e.GET("/api/inspect", s.handleInspect)
	e.GET("/api/console", s.handleConsole)

	s.echo = e
	return s
}

// Handler exposes the routes, e.g. for httptest
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until the server is shut down
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Noticef("Starting web server on http://localhost%s", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting for in-flight renders
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func corsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Access-Control-Allow-Origin", "*")
		c.Response().Header().Set("Access-Control-Allow-Methods", "GET")
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

// handleScenes lists presets and scene files
func (s *Server) handleScenes(c echo.Context) error {
	response, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, response)
}

// handleConsole returns the recent render log
func (s *Server) handleConsole(c echo.Context) error {
	return c.JSON(http.StatusOK, s.console.Messages())
}

// newRenderLogger creates a logger tagged with a fresh render id
func (s *Server) newRenderLogger() *WebLogger {
	id := fmt.Sprintf("render-%d", s.renders.Add(1))
	return NewWebLogger(id, s.console, s.logger)
}

// loadScene resolves a scene id and applies size overrides
func (s *Server) loadScene(id string, width, height int, logger *WebLogger) (*scene.Scene, int, error) {
	sc, err := scene.LoadByID(s.scenesDir, id, logger)
	if errors.Is(err, scene.ErrUnknownScene) {
		return nil, http.StatusNotFound, err
	}
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	resize(sc, width, height)
	return sc, http.StatusOK, nil
}

// resize overrides the image size. A single given dimension keeps the
// scene's aspect ratio.
func resize(sc *scene.Scene, width, height int) {
	switch {
	case width > 0 && height > 0:
		sc.Width, sc.Height = width, height
	case width > 0:
		sc.Height = max(1, int(float64(width)/sc.AspectRatio()+0.5))
		sc.Width = width
	case height > 0:
		sc.Width = max(1, int(float64(height)*sc.AspectRatio()+0.5))
		sc.Height = height
	}
}

func jsonError(c echo.Context, status int, err error) error {
	return c.JSON(status, map[string]string{"error": err.Error()})
}

// parseIntParam parses an integer parameter from URL query with validation
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

// parseBoolParam parses a boolean parameter from URL query
func parseBoolParam(values url.Values, key string) (bool, error) {
	value := values.Get(key)
	if value == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %s", key, value)
	}
	return parsed, nil
}
