package renderer

import (
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

func TestRenderStats_Table(t *testing.T) {
	stats := RenderStats{
		Width:   4,
		Height:  4,
		Workers: 2,
		Bands: []BandStats{
			{Band: Band{0, 2}, Worker: 1, Rays: RayCounts{Primary: 8, Secondary: 3, Shadow: 81}, Duration: 12 * time.Millisecond},
			{Band: Band{2, 4}, Worker: 0, Rays: RayCounts{Primary: 8, Secondary: 0, Shadow: 162}, Duration: 9 * time.Millisecond},
		},
		Total:    RayCounts{Primary: 16, Secondary: 3, Shadow: 243},
		Duration: 15 * time.Millisecond,
	}

	out := stats.Table()
	for _, want := range []string{"Primary", "Secondary", "Shadow", "0-1", "2-3", "243", "Total", "15ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected table to contain %q:\n%s", want, out)
		}
	}

	if stats.TotalPixels() != 16 {
		t.Errorf("Expected 16 pixels, got %d", stats.TotalPixels())
	}
	if rps := stats.RaysPerSecond(); rps < 17466 || rps > 17467 {
		t.Errorf("Expected about 17466.7 rays/s, got %f", rps)
	}
	if (RenderStats{}).RaysPerSecond() != 0 {
		t.Error("Expected zero throughput without a duration")
	}
}

func TestFrameBuffer_ToImage(t *testing.T) {
	frame := NewFrameBuffer(2, 2)
	frame.Set(0, 0, core.NewVec3(1, 0, 0))
	frame.Set(1, 0, core.NewVec3(0, 0.5, 0))
	frame.Set(0, 1, core.NewVec3(2, -1, 0)) // Out of range, clamped
	frame.Set(1, 1, core.NewVec3(0, 0, 1))

	if got := frame.At(1, 1); got != core.NewVec3(0, 0, 1) {
		t.Errorf("Expected stored blue, got %v", got)
	}

	img := frame.ToImage()
	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, color.RGBA{255, 0, 0, 255}},
		{1, 0, color.RGBA{0, 128, 0, 255}},
		{0, 1, color.RGBA{255, 0, 0, 255}},
		{1, 1, color.RGBA{0, 0, 255, 255}},
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("Pixel (%d,%d): expected %v, got %v", tt.x, tt.y, tt.want, got)
		}
	}
}
