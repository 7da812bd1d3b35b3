package renderer

import (
	"fmt"
	"time"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// Renderer renders a whole scene by splitting the image into row bands
// traced in parallel
type Renderer struct {
	scene  *scene.Scene
	config Config
	logger core.Logger
}

// NewRenderer creates a renderer. Zero fields of config take their defaults.
func NewRenderer(s *scene.Scene, config Config, logger core.Logger) *Renderer {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Renderer{
		scene:  s,
		config: MergeConfig(DefaultConfig(), config),
		logger: logger,
	}
}

// Config returns the effective configuration
func (r *Renderer) Config() Config {
	return r.config
}

// Workers returns the number of bands the image will be split into before
// empty bands are dropped: the configured count, else the scene hint, else
// the CPU count
func (r *Renderer) Workers() int {
	if r.config.Workers > 0 {
		return r.config.Workers
	}
	return ResolveWorkers(r.scene.Threads)
}

// Render traces every pixel and returns the finished frame
func (r *Renderer) Render() (*FrameBuffer, RenderStats, error) {
	if err := r.scene.Validate(); err != nil {
		return nil, RenderStats{}, fmt.Errorf("cannot render: %w", err)
	}

	s := r.scene
	start := time.Now()

	camera := NewCamera(s.Eye, s.View, s.Up, s.HFov, s.Width, s.Height, s.Parallel)
	frame := NewFrameBuffer(s.Width, s.Height)
	bands := SplitBands(s.Height, r.Workers())

	r.logger.Infof("Rendering %dx%d (%d primitives, %d lights) in %d bands",
		s.Width, s.Height, s.GetPrimitiveCount(), len(s.Lights), len(bands))

	pool := NewWorkerPool(s, camera, r.config, len(bands))
	pool.Start()

	for i, band := range bands {
		r.logger.Debugf("Band %d: rows %d-%d", i, band.Start, band.End-1)
		pool.SubmitTask(BandTask{TaskID: i, Band: band, Frame: frame})
	}

	stats := RenderStats{
		Width:   s.Width,
		Height:  s.Height,
		Workers: len(bands),
		Bands:   make([]BandStats, len(bands)),
	}
	for range bands {
		result, ok := pool.GetResult()
		if !ok {
			return nil, RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		stats.Bands[result.TaskID] = result.Stats
		stats.Total.Add(result.Stats.Rays)
	}
	pool.Stop()

	stats.Duration = time.Since(start)
	r.logger.Infof("Rendered in %v: %d primary, %d secondary, %d shadow rays",
		stats.Duration.Round(time.Millisecond), stats.Total.Primary, stats.Total.Secondary, stats.Total.Shadow)

	return frame, stats, nil
}

// Render is a convenience wrapper around NewRenderer(...).Render()
func Render(s *scene.Scene, config Config, logger core.Logger) (*FrameBuffer, RenderStats, error) {
	return NewRenderer(s, config, logger).Render()
}
