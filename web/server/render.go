package server

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/labstack/echo/v4"
)

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene       string // Preset id or "file:<name>"
	Width       int    // 0 keeps the scene's size
	Height      int
	Workers     int // 0 uses the scene hint or the CPU count
	MaxDepth    int
	HardShadows bool
	Format      string // "png" or "ppm"
}

var contentTypes = map[string]string{
	loaders.FormatPNG: "image/png",
	loaders.FormatPPM: "image/x-portable-pixmap",
}

// parseRenderRequest parses request parameters
func parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{Scene: values.Get("scene"), Format: values.Get("format")}
	if req.Scene == "" {
		req.Scene = "default"
	}
	if req.Format == "" {
		req.Format = loaders.FormatPNG
	}
	if _, ok := contentTypes[req.Format]; !ok {
		return nil, fmt.Errorf("unsupported format: %s", req.Format)
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 0, 1, maxImageSize); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 0, 1, maxImageSize); err != nil {
		return nil, err
	}
	if req.Workers, err = parseIntParam(values, "workers", 0, 1, 256); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "maxDepth", 0, 1, 64); err != nil {
		return nil, err
	}
	if req.HardShadows, err = parseBoolParam(values, "hardShadows"); err != nil {
		return nil, err
	}
	return req, nil
}

// handleRender renders a scene and returns the encoded image. Ray counts
// and timing are reported in response headers.
func (s *Server) handleRender(c echo.Context) error {
	req, err := parseRenderRequest(c.QueryParams())
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err)
	}

	logger := s.newRenderLogger()
	sc, status, err := s.loadScene(req.Scene, req.Width, req.Height, logger)
	if err != nil {
		return jsonError(c, status, err)
	}

	config := renderer.Config{Workers: req.Workers, MaxDepth: req.MaxDepth}
	config.Shadow.Hard = req.HardShadows

	frame, stats, err := renderer.Render(sc, config, logger)
	if err != nil {
		return jsonError(c, http.StatusUnprocessableEntity, err)
	}
	logger.Infof("Rendered %s at %dx%d", req.Scene, sc.Width, sc.Height)

	var buf bytes.Buffer
	if err := loaders.EncodeImage(&buf, frame.ToImage(), req.Format); err != nil {
		return jsonError(c, http.StatusInternalServerError, err)
	}

	h := c.Response().Header()
	h.Set("X-Render-Time-Ms", strconv.FormatInt(stats.Duration.Milliseconds(), 10))
	h.Set("X-Render-Workers", strconv.Itoa(stats.Workers))
	h.Set("X-Primary-Rays", strconv.FormatInt(stats.Total.Primary, 10))
	h.Set("X-Secondary-Rays", strconv.FormatInt(stats.Total.Secondary, 10))
	h.Set("X-Shadow-Rays", strconv.FormatInt(stats.Total.Shadow, 10))
	h.Set("Cache-Control", "no-cache")
	h.Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))

	return c.Blob(http.StatusOK, contentTypes[req.Format], buf.Bytes())
}
