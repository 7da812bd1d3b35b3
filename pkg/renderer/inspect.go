package renderer

import (
	"fmt"
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// Inspection describes what the primary ray through a pixel sees
type Inspection struct {
	Hit      bool
	Object   geometry.Object // Top-level object, a mesh for mesh triangles
	Face     geometry.Object // Shaded primitive
	Point    core.Vec3
	Normal   core.Vec3 // Unit shading normal facing the viewer
	Distance float64
	Region   geometry.Region
	Color    core.Vec3 // Fully traced pixel color
}

// Inspect traces the primary ray through pixel (i, j) and reports the
// nearest hit along with the traced color
func (rt *Raytracer) Inspect(i, j int) Inspection {
	ray := rt.camera.GetRay(i, j)
	color, _ := rt.Trace(ray, 0, MediaStack{})

	result := Inspection{Color: color, Distance: math.Inf(1)}
	hit := geometry.NewHitRecord(0, math.Inf(1))
	if !rt.hitWorld(ray, &hit) {
		return result
	}

	point := ray.At(hit.T)
	n := hit.Face.Normal(point, &hit)
	if n.Dot(ray.Direction) > 0 {
		n = n.Negate()
	}

	result.Hit = true
	result.Object = hit.Object
	result.Face = hit.Face
	result.Point = point
	result.Normal = n
	result.Distance = hit.T
	result.Region = hit.Region
	return result
}

// InspectPixel validates the scene and inspects a single pixel
func InspectPixel(s *scene.Scene, config Config, i, j int) (Inspection, error) {
	if err := s.Validate(); err != nil {
		return Inspection{}, fmt.Errorf("cannot inspect: %w", err)
	}
	if i < 0 || i >= s.Width || j < 0 || j >= s.Height {
		return Inspection{}, fmt.Errorf("pixel (%d, %d) outside %dx%d image", i, j, s.Width, s.Height)
	}

	camera := NewCamera(s.Eye, s.View, s.Up, s.HFov, s.Width, s.Height, s.Parallel)
	return NewRaytracer(s, camera, config).Inspect(i, j), nil
}
