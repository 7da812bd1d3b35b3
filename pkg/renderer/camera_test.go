package renderer

import (
	"math"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

func vecApproxEqual(a, b core.Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}

func TestCamera_PerspectiveRays(t *testing.T) {
	eye := core.NewVec3(0, 0, 0)
	camera := NewCamera(eye, core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0), 90, 3, 3, false)

	tests := []struct {
		name string
		i, j int
		want core.Vec3
	}{
		{"center", 1, 1, core.NewVec3(0, 0, -1)},
		{"left edge", 0, 1, core.NewVec3(-1, 0, -1).Normalize()},
		{"right edge", 2, 1, core.NewVec3(1, 0, -1).Normalize()},
		{"top edge", 1, 0, core.NewVec3(0, 1, -1).Normalize()},
		{"bottom right", 2, 2, core.NewVec3(1, -1, -1).Normalize()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := camera.GetRay(tt.i, tt.j)
			if !ray.Origin.Equals(eye) {
				t.Errorf("Expected origin at eye, got %v", ray.Origin)
			}
			if !vecApproxEqual(ray.Direction, tt.want, 1e-9) {
				t.Errorf("Expected direction %v, got %v", tt.want, ray.Direction)
			}
		})
	}
}

func TestCamera_AspectRatio(t *testing.T) {
	// 5:3 image with a 90 degree hfov: the window is 10 wide and 6 tall
	camera := NewCamera(core.Vec3{}, core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0), 90, 5, 3, false)

	top := camera.WindowPoint(2, 0)
	if math.Abs(top.Y-3) > 1e-9 {
		t.Errorf("Expected top row at y=3, got %f", top.Y)
	}
	right := camera.WindowPoint(4, 1)
	if math.Abs(right.X-5) > 1e-9 || math.Abs(right.Z+5) > 1e-9 {
		t.Errorf("Expected right edge at (5, 0, -5), got %v", right)
	}
}

func TestCamera_ParallelProjection(t *testing.T) {
	eye := core.NewVec3(1, 2, 3)
	view := core.NewVec3(0, 0, -1)
	camera := NewCamera(eye, view, core.NewVec3(0, 1, 0), 60, 5, 5, true)

	for _, p := range [][2]int{{0, 0}, {2, 2}, {4, 1}} {
		ray := camera.GetRay(p[0], p[1])
		if !vecApproxEqual(ray.Direction, view, 1e-12) {
			t.Errorf("Pixel %v: expected direction %v, got %v", p, view, ray.Direction)
		}
	}

	center := camera.GetRay(2, 2)
	if !vecApproxEqual(center.Origin, eye, 1e-9) {
		t.Errorf("Expected center ray to start at the eye, got %v", center.Origin)
	}
	corner := camera.GetRay(0, 0)
	if math.Abs(corner.Origin.Z-center.Origin.Z) > 1e-9 || corner.Origin.X >= center.Origin.X || corner.Origin.Y <= center.Origin.Y {
		t.Errorf("Expected corner origin up and to the left of %v, got %v", center.Origin, corner.Origin)
	}
}

func TestCamera_DegenerateInputs(t *testing.T) {
	t.Run("view parallel to up", func(t *testing.T) {
		camera := NewCamera(core.Vec3{}, core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 0), 45, 4, 4, false)
		ray := camera.GetRay(0, 0)
		for _, c := range []float64{ray.Direction.X, ray.Direction.Y, ray.Direction.Z} {
			if math.IsNaN(c) {
				t.Fatalf("Expected finite direction, got %v", ray.Direction)
			}
		}
	})

	t.Run("single pixel", func(t *testing.T) {
		camera := NewCamera(core.Vec3{}, core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0), 45, 1, 1, false)
		ray := camera.GetRay(0, 0)
		if !vecApproxEqual(ray.Direction, core.NewVec3(0, 0, -1), 1e-12) {
			t.Errorf("Expected the only pixel to look along view, got %v", ray.Direction)
		}
	})
}
