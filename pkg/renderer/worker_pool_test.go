package renderer

import (
	"reflect"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

func TestSplitBands(t *testing.T) {
	tests := []struct {
		name    string
		height  int
		workers int
		want    []Band
	}{
		{"even split", 4, 2, []Band{{0, 2}, {2, 4}}},
		{"short last band", 10, 3, []Band{{0, 4}, {4, 8}, {8, 10}}},
		{"empty bands dropped", 5, 4, []Band{{0, 2}, {2, 4}, {4, 5}}},
		{"more workers than rows", 2, 8, []Band{{0, 1}, {1, 2}}},
		{"single worker", 3, 1, []Band{{0, 3}}},
		{"non-positive workers", 3, 0, []Band{{0, 3}}},
		{"empty image", 0, 4, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitBands(tt.height, tt.workers)
			if len(got) != len(tt.want) || (len(got) > 0 && !reflect.DeepEqual(got, tt.want)) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestResolveWorkers(t *testing.T) {
	if got := ResolveWorkers(3); got != 3 {
		t.Errorf("Expected explicit count to win, got %d", got)
	}
	if got := ResolveWorkers(0); got < 1 {
		t.Errorf("Expected at least one worker, got %d", got)
	}
}

func TestRender_IndependentOfWorkerCount(t *testing.T) {
	s := newTestScene()
	s.Width, s.Height = 16, 12
	s.HFov = 60
	s.BackgroundColor = core.NewVec3(0.1, 0.2, 0.3)
	s.Add(
		geometry.NewSphere(core.NewVec3(-1, 0, -6), 1, material.NewPhong(core.NewVec3(0.8, 0.2, 0.2), core.NewVec3(1, 1, 1), 0.1, 0.6, 0.3, 30)),
		geometry.NewSphere(core.NewVec3(1.2, 0, -5), 1, material.NewTransparent(core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1), 0.05, 0.1, 0.4, 60, 0.2, 1.5)),
		gridMesh(t, 8, -1, material.NewPhong(core.NewVec3(0.5, 0.5, 0.5), core.NewVec3(1, 1, 1), 0.2, 0.7, 0, 1)),
	)
	s.AddLight(lights.NewPoint(core.NewVec3(3, 5, 0), core.NewVec3(1, 1, 1)))

	config := Config{Shadow: ShadowConfig{Hard: true}}

	config.Workers = 1
	single, singleStats, err := Render(s, config, nil)
	if err != nil {
		t.Fatalf("Single worker render failed: %v", err)
	}

	config.Workers = 5
	multi, multiStats, err := Render(s, config, nil)
	if err != nil {
		t.Fatalf("Parallel render failed: %v", err)
	}

	for i := range single.Pixels {
		if single.Pixels[i] != multi.Pixels[i] {
			t.Fatalf("Pixel %d differs: %v vs %v", i, single.Pixels[i], multi.Pixels[i])
		}
	}
	if singleStats.Total != multiStats.Total {
		t.Errorf("Expected identical ray counts, got %+v vs %+v", singleStats.Total, multiStats.Total)
	}
	if len(multiStats.Bands) != 4 {
		t.Errorf("Expected 12 rows in 4 bands of 3, got %d bands", len(multiStats.Bands))
	}
}

func TestRender_StaticBandAssignment(t *testing.T) {
	s := newTestScene()
	s.Width, s.Height = 4, 10
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -5), 1, material.NewPhong(core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1), 0.1, 0.6, 0, 1)))

	for run := 0; run < 5; run++ {
		_, stats, err := Render(s, Config{Workers: 3, Shadow: ShadowConfig{Hard: true}}, nil)
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		want := SplitBands(10, 3)
		for i, band := range stats.Bands {
			if band.Worker != i || band.Band != want[i] {
				t.Errorf("Run %d: band %d rendered rows %v by worker %d, want rows %v by worker %d",
					run, i, band.Band, band.Worker, want[i], i)
			}
			if band.Rays.Primary != int64(band.Band.Rows()*s.Width) {
				t.Errorf("Run %d: band %d traced %d primary rays, want %d", run, i, band.Rays.Primary, band.Band.Rows()*s.Width)
			}
		}
	}
}

func TestRender_InvalidScene(t *testing.T) {
	s := newTestScene()
	s.Width = 0
	if _, _, err := Render(s, Config{}, nil); err == nil {
		t.Error("Expected an error for an empty image")
	}
}
