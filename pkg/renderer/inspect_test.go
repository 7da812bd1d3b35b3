package renderer

import (
	"math"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

func TestInspectPixel(t *testing.T) {
	s := newTestScene()
	s.BackgroundColor = core.NewVec3(0.2, 0.2, 0.2)
	sphere := geometry.NewSphere(core.NewVec3(0, 0, -5), 1, material.NewPhong(core.NewVec3(1, 0, 0), core.NewVec3(1, 1, 1), 0.1, 0.5, 0, 20))
	s.Add(sphere)
	s.AddLight(lights.NewPoint(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1)))

	center, err := InspectPixel(s, Config{}, 1, 1)
	if err != nil {
		t.Fatalf("InspectPixel failed: %v", err)
	}
	if !center.Hit || center.Object != sphere || center.Face != sphere {
		t.Fatalf("Expected the sphere at the center, got %+v", center)
	}
	if math.Abs(center.Distance-4) > 1e-9 {
		t.Errorf("Expected distance 4, got %f", center.Distance)
	}
	if !vecApproxEqual(center.Normal, core.NewVec3(0, 0, 1), 1e-9) {
		t.Errorf("Expected normal facing the eye, got %v", center.Normal)
	}
	if !vecApproxEqual(center.Color, core.NewVec3(0.6, 0, 0), 1e-9) {
		t.Errorf("Expected traced color (0.6,0,0), got %v", center.Color)
	}

	corner, err := InspectPixel(s, Config{}, 0, 0)
	if err != nil {
		t.Fatalf("InspectPixel failed: %v", err)
	}
	if corner.Hit || !math.IsInf(corner.Distance, 1) {
		t.Errorf("Expected a miss in the corner, got %+v", corner)
	}
	if !vecApproxEqual(corner.Color, s.BackgroundColor, 1e-12) {
		t.Errorf("Expected background color, got %v", corner.Color)
	}
}

func TestInspectPixel_Errors(t *testing.T) {
	s := newTestScene()
	if _, err := InspectPixel(s, Config{}, 3, 0); err == nil {
		t.Error("Expected an error outside the image")
	}

	s.HFov = 0
	if _, err := InspectPixel(s, Config{}, 0, 0); err == nil {
		t.Error("Expected an error for an invalid scene")
	}
}
