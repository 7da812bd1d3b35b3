package renderer

import (
	"math"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

func occluderMaterial(alpha core.Vec3) *material.Material {
	return material.NewAbsorbing(core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1), 0.1, 0.5, 0, 1, alpha, 1)
}

func TestShadowFactor_NoOccluders(t *testing.T) {
	s := scene.New()
	s.Add(geometry.NewSphere(core.NewVec3(0, 20, 0), 2, occluderMaterial(core.NewVec3(1, 1, 1))))
	rt := newTestRaytracer(newTestScene(), Config{})
	rt.scene = s

	tests := []struct {
		name string
		dir  core.Vec3
	}{
		{"occluder beyond the light", core.NewVec3(0, 1, 0)},
		{"empty direction", core.NewVec3(1, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rt.shadowFactor(core.Vec3{}, tt.dir, 10, nil)
			if !vecApproxEqual(got, core.NewVec3(1, 1, 1), 1e-12) {
				t.Errorf("Expected full light, got %v", got)
			}
		})
	}
}

func TestShadowFactor_MonotoneInOpacity(t *testing.T) {
	up := core.NewVec3(0, 1, 0)
	previous := 2.0

	for _, alpha := range []float64{0, 0.2, 0.5, 0.8, 1} {
		s := scene.New()
		s.Add(geometry.NewSphere(core.NewVec3(0, 5, 0), 2, occluderMaterial(core.NewVec3(alpha, alpha, alpha))))
		rt := newTestRaytracer(newTestScene(), Config{})
		rt.scene = s

		got := rt.shadowFactor(core.Vec3{}, up, 10, nil)
		if math.Abs(got.X-(1-alpha)) > 1e-12 {
			t.Errorf("Alpha %.1f: expected %f, got %f", alpha, 1-alpha, got.X)
		}
		if got.X > previous {
			t.Errorf("Alpha %.1f: shadow factor increased from %f to %f", alpha, previous, got.X)
		}
		previous = got.X
	}
}

func TestShadowFactor_ColoredAndStacked(t *testing.T) {
	s := scene.New()
	s.Add(
		geometry.NewSphere(core.NewVec3(0, 4, 0), 1, occluderMaterial(core.NewVec3(1, 0, 0.5))),
		geometry.NewSphere(core.NewVec3(0, 7, 0), 1, occluderMaterial(core.NewVec3(0, 0.5, 0.5))),
	)
	rt := newTestRaytracer(newTestScene(), Config{})
	rt.scene = s

	got := rt.shadowFactor(core.Vec3{}, core.NewVec3(0, 1, 0), 10, nil)
	want := core.NewVec3(0, 0.5, 0.25)
	if !vecApproxEqual(got, want, 1e-12) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestShadowFactor_PartialCone(t *testing.T) {
	s := scene.New()
	// A thin opaque rod just off the central ray blocks part of the cone only
	s.Add(geometry.NewCylinder(core.NewVec3(0.03, 1, 0), core.NewVec3(0, 0, 1), 0.02, 4, occluderMaterial(core.NewVec3(1, 1, 1))))
	rt := newTestRaytracer(newTestScene(), Config{})
	rt.scene = s

	soft := rt.shadowFactor(core.Vec3{}, core.NewVec3(0, 1, 0), 10, nil)
	if soft.X <= 0 || soft.X >= 1 {
		t.Errorf("Expected a partial shadow, got %v", soft)
	}

	rt.config = MergeConfig(rt.config, Config{Shadow: ShadowConfig{Hard: true}})
	if hard := rt.shadowFactor(core.Vec3{}, core.NewVec3(0, 1, 0), 10, nil); !vecApproxEqual(hard, core.NewVec3(1, 1, 1), 1e-12) {
		t.Errorf("Expected the central ray to pass the rod, got %v", hard)
	}
}

func TestShadowFactor_ExcludesSelf(t *testing.T) {
	sphere := geometry.NewSphere(core.NewVec3(0, 0, 0), 1, occluderMaterial(core.NewVec3(1, 1, 1)))
	s := scene.New()
	s.Add(sphere)
	rt := newTestRaytracer(newTestScene(), Config{})
	rt.scene = s

	// From the bottom of the sphere the light above is behind the sphere itself
	point := core.NewVec3(0, -1, 0)
	up := core.NewVec3(0, 1, 0)
	if got := rt.shadowFactor(point, up, 10, sphere); !vecApproxEqual(got, core.NewVec3(1, 1, 1), 1e-12) {
		t.Errorf("Expected excluded object not to shadow, got %v", got)
	}
	if got := rt.shadowFactor(point, up, 10, nil); !vecApproxEqual(got, core.Vec3{}, 1e-12) {
		t.Errorf("Expected the sphere to block the light, got %v", got)
	}
}

// gridMesh builds an n x n grid of unit quads in the plane y = height
func gridMesh(t *testing.T, n int, height float64, mat *material.Material) *geometry.TriangleMesh {
	t.Helper()
	var vertices []core.Vec3
	half := float64(n) / 2
	for i := 0; i <= n; i++ {
		for k := 0; k <= n; k++ {
			vertices = append(vertices, core.NewVec3(float64(i)-half, height, float64(k)-half))
		}
	}
	var faces []int
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			a := i*(n+1) + k
			b := a + n + 1
			faces = append(faces, a, b, b+1, a, b+1, a+1)
		}
	}
	mesh, err := geometry.NewTriangleMeshFromFaces(vertices, faces, 8, mat)
	if err != nil {
		t.Fatalf("Failed to build grid: %v", err)
	}
	return mesh
}

func TestShadowFactor_MeshTrianglesCountedOnce(t *testing.T) {
	s := scene.New()
	s.Add(gridMesh(t, 10, 1, occluderMaterial(core.NewVec3(0.5, 0.5, 0.5))))
	rt := newTestRaytracer(newTestScene(), Config{})
	rt.scene = s

	// Well inside one triangle for the whole cone
	got := rt.shadowFactor(core.NewVec3(0.7, 0, 0.2), core.NewVec3(0, 1, 0), 10, nil)
	if !vecApproxEqual(got, core.NewVec3(0.5, 0.5, 0.5), 1e-12) {
		t.Errorf("Expected each ray to pass exactly one triangle, got %v", got)
	}
}
