package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
)

var (
	ErrMissingKeyword  = errors.New("missing required keyword")
	ErrNoMaterial      = errors.New("object defined before any mtlcolor")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrBadIndex        = errors.New("index out of range")
	ErrUnclosedMesh    = errors.New("mesh start without mesh stop")
	ErrInvalidScene    = errors.New("invalid scene")
)

// DepthCue blends shaded colors towards Color with distance.
// Alpha is AMax up to DMin, AMin from DMax on and linear in between.
type DepthCue struct {
	Color      core.Vec3
	AMax, AMin float64
	DMax, DMin float64
}

// Factor returns the blend weight of the shaded color at distance t
func (d DepthCue) Factor(t float64) float64 {
	switch {
	case t <= d.DMin:
		return d.AMax
	case t >= d.DMax:
		return d.AMin
	}
	return d.AMin + (d.AMax-d.AMin)*(d.DMax-t)/(d.DMax-d.DMin)
}

// Apply blends color towards the cue color
func (d DepthCue) Apply(color core.Vec3, t float64) core.Vec3 {
	a := d.Factor(t)
	return color.Multiply(a).Add(d.Color.Multiply(1 - a))
}

// Scene contains all the elements needed for rendering
type Scene struct {
	Eye    core.Vec3
	View   core.Vec3
	Up     core.Vec3
	HFov   float64 // Horizontal field of view in degrees
	Width  int
	Height int

	Parallel bool // Orthographic projection along View

	BackgroundColor core.Vec3
	BackgroundEta   float64 // Index of refraction of the surrounding medium
	DepthCue        *DepthCue

	Objects []geometry.Object // Intersected in order
	Lights  []lights.Light

	Threads int // Worker hint; <= 0 lets the renderer decide
}

// New returns an empty scene surrounded by vacuum
func New() *Scene {
	return &Scene{
		Up:            core.NewVec3(0, 1, 0),
		BackgroundEta: 1,
		Objects:       make([]geometry.Object, 0),
		Lights:        make([]lights.Light, 0),
	}
}

// Add appends objects to the scene
func (s *Scene) Add(objects ...geometry.Object) {
	s.Objects = append(s.Objects, objects...)
}

// AddLight appends lights to the scene
func (s *Scene) AddLight(ls ...lights.Light) {
	s.Lights = append(s.Lights, ls...)
}

// Background is the color of rays that escape the scene. With depth
// cueing enabled it is the cue color.
func (s *Scene) Background() core.Vec3 {
	if s.DepthCue != nil {
		return s.DepthCue.Color
	}
	return s.BackgroundColor
}

// AspectRatio returns width/height
func (s *Scene) AspectRatio() float64 {
	return float64(s.Width) / float64(s.Height)
}

// Validate checks that the scene can be rendered
func (s *Scene) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidScene, s.Width, s.Height)
	}
	if s.HFov <= 0 || s.HFov >= 180 || math.IsNaN(s.HFov) {
		return fmt.Errorf("%w: hfov %f must lie in (0, 180)", ErrInvalidScene, s.HFov)
	}
	if s.View.IsZero(1e-12) {
		return fmt.Errorf("%w: view direction is zero", ErrInvalidScene)
	}
	if s.Up.IsZero(1e-12) {
		return fmt.Errorf("%w: up direction is zero", ErrInvalidScene)
	}
	if s.BackgroundEta <= 0 {
		return fmt.Errorf("%w: background eta %f must be positive", ErrInvalidScene, s.BackgroundEta)
	}
	if s.DepthCue != nil && s.DepthCue.DMax <= s.DepthCue.DMin {
		return fmt.Errorf("%w: depth cue dmax %f must exceed dmin %f", ErrInvalidScene, s.DepthCue.DMax, s.DepthCue.DMin)
	}
	for i, obj := range s.Objects {
		if obj.Material() == nil {
			return fmt.Errorf("object %d: %w", i, ErrNoMaterial)
		}
		if err := obj.Material().Validate(); err != nil {
			return fmt.Errorf("object %d: %w", i, err)
		}
	}
	return nil
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	count := 0
	for _, obj := range s.Objects {
		switch o := obj.(type) {
		case *geometry.TriangleMesh:
			count += o.GetTriangleCount()
		default:
			count++
		}
	}
	return count
}
