package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// ErrUnknownScene is returned when a scene id names neither a preset nor a scene file
var ErrUnknownScene = errors.New("unknown scene")

// Preset is a scene built in code
type Preset struct {
	ID          string
	Name        string
	Description string
	Build       func() *Scene
}

var presets = []Preset{
	{
		ID:          "default",
		Name:        "Default Scene",
		Description: "Mirror, gold and glass spheres over a mesh floor",
		Build:       NewDefaultScene,
	},
	{
		ID:          "cylinder",
		Name:        "Cylinders",
		Description: "Capped cylinders in several orientations with a glass sphere",
		Build:       NewCylinderScene,
	},
}

// Presets returns the built-in scenes in display order
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// NewPreset builds the preset with the given id
func NewPreset(id string) (*Scene, error) {
	for _, p := range presets {
		if p.ID == id {
			return p.Build(), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
}

// NewDefaultScene creates a scene with spheres of different materials
// standing on a square mesh floor
func NewDefaultScene() *Scene {
	s := New()
	s.Eye = core.NewVec3(0, 0.75, 2)
	s.View = core.NewVec3(0, 0.5, -1).Subtract(s.Eye)
	s.HFov = 60
	s.Width = 400
	s.Height = 225
	s.BackgroundColor = core.NewVec3(0.5, 0.7, 1.0)

	white := core.NewVec3(1, 1, 1)
	floor := material.NewPhong(core.NewVec3(0.48, 0.48, 0), white, 0.2, 0.8, 0, 1)
	red := material.NewPhong(core.NewVec3(0.65, 0.25, 0.2), white, 0.1, 0.7, 0.2, 40)
	mirror := material.NewPhong(core.NewVec3(0.8, 0.8, 0.8), white, 0.05, 0.2, 0.8, 100)
	gold := material.NewPhong(core.NewVec3(0.8, 0.6, 0.2), core.NewVec3(1, 0.85, 0.5), 0.1, 0.5, 0.5, 60)
	glass := material.NewTransparent(white, white, 0, 0.05, 0.3, 100, 0.05, 1.5)
	tinted := material.NewAbsorbing(white, white, 0, 0.05, 0.3, 100, core.NewVec3(0.1, 0.6, 0.9), 1.5)

	s.Add(
		groundMesh(core.NewVec3(0, 0, -1), 6, floor),
		geometry.NewSphere(core.NewVec3(0, 0.5, -1), 0.5, red),
		geometry.NewSphere(core.NewVec3(-1, 0.5, -1), 0.5, mirror),
		geometry.NewSphere(core.NewVec3(1, 0.5, -1), 0.5, gold),
		geometry.NewSphere(core.NewVec3(0.5, 0.25, -0.5), 0.25, glass),
		geometry.NewSphere(core.NewVec3(-0.5, 0.25, -0.5), 0.25, tinted),
	)

	s.AddLight(
		lights.NewPoint(core.NewVec3(3, 5, 2), core.NewVec3(0.8, 0.8, 0.75)),
		lights.NewDirectional(core.NewVec3(-0.3, -1, -0.5), core.NewVec3(0.3, 0.3, 0.35)),
	)
	return s
}

// NewCylinderScene creates a scene with capped cylinders in different
// orientations and a glass sphere in front of them
func NewCylinderScene() *Scene {
	s := New()
	s.Eye = core.NewVec3(0, 1.5, 4)
	s.View = core.NewVec3(0, 1, 0).Subtract(s.Eye)
	s.HFov = 70
	s.Width = 400
	s.Height = 225
	s.BackgroundColor = core.NewVec3(0.5, 0.7, 1.0)

	white := core.NewVec3(1, 1, 1)
	gray := material.NewPhong(core.NewVec3(0.5, 0.5, 0.5), white, 0.2, 0.8, 0, 1)
	red := material.NewPhong(core.NewVec3(0.8, 0.2, 0.2), white, 0.1, 0.7, 0.2, 30)
	blue := material.NewPhong(core.NewVec3(0.2, 0.2, 0.8), white, 0.1, 0.7, 0.2, 30)
	gold := material.NewPhong(core.NewVec3(0.8, 0.6, 0.2), core.NewVec3(1, 0.85, 0.5), 0.1, 0.4, 0.6, 80)
	glass := material.NewTransparent(white, white, 0, 0.05, 0.3, 100, 0.05, 1.5)

	// Centers are axis midpoints
	s.Add(
		groundMesh(core.NewVec3(0, 0, 0), 8, gray),
		geometry.NewCylinder(core.NewVec3(-0.15, 1.1, 0.25), core.NewVec3(0.3, 0.2, 3.5), 0.35, 1.2, gold),
		geometry.NewCylinder(core.NewVec3(1.8, 1, 0), core.NewVec3(0, 1, 0), 0.5, 2, red),
		geometry.NewCylinder(core.NewVec3(-2, 0.3, 0), core.NewVec3(1, 0, 0), 0.3, 1, blue),
		geometry.NewSphere(core.NewVec3(0.5, 0.3, 1), 0.3, glass),
	)

	s.AddLight(
		lights.NewAttenuatedPoint(core.NewVec3(3, 5, 3), core.NewVec3(1, 1, 1), 1, 0.02, 0.002),
		lights.NewDirectional(core.NewVec3(0.2, -1, -0.3), core.NewVec3(0.25, 0.25, 0.3)),
	)
	return s
}

// groundMesh builds a horizontal square floor from two triangles
func groundMesh(center core.Vec3, size float64, mat *material.Material) geometry.Object {
	h := size / 2
	vertices := []core.Vec3{
		center.Add(core.NewVec3(-h, 0, -h)),
		center.Add(core.NewVec3(-h, 0, h)),
		center.Add(core.NewVec3(h, 0, h)),
		center.Add(core.NewVec3(h, 0, -h)),
	}
	mesh, err := geometry.NewTriangleMeshFromFaces(vertices, []int{0, 1, 2, 2, 3, 0}, 1, mat)
	if err != nil {
		panic(err)
	}
	return mesh
}
