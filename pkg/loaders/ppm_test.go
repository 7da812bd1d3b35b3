package loaders

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
)

func TestReadPPM(t *testing.T) {
	input := `P3
# created by hand
2 2 # width height
15
15 0 0   0 15 0
0 0 15   5 5 5
`
	data, err := ReadPPM(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadPPM failed: %v", err)
	}
	if data.Width != 2 || data.Height != 2 {
		t.Fatalf("Expected 2x2, got %dx%d", data.Width, data.Height)
	}

	if got := data.Pixels[1]; abs(got.Y-1) > 1e-12 || got.X != 0 {
		t.Errorf("Expected green top-right, got %v", got)
	}
	if got := data.Pixels[3]; abs(got.X-1.0/3) > 1e-12 {
		t.Errorf("Expected gray scaled by the max value, got %v", got)
	}
}

func TestReadPPM_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"binary magic", "P6 1 1 255\n"},
		{"truncated header", "P3 2 2"},
		{"zero width", "P3 0 1 255\n"},
		{"too few values", "P3 1 2 255\n1 2 3\n"},
		{"too many values", "P3 1 1 255\n1 2 3 4\n"},
		{"value above max", "P3 1 1 15\n1 2 16\n"},
		{"not a number", "P3 1 1 255\n1 x 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadPPM(strings.NewReader(tt.input))
			if !errors.Is(err, ErrInvalidPPM) {
				t.Errorf("Expected ErrInvalidPPM, got %v", err)
			}
		})
	}
}

func TestWritePPM(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{G: 128, A: 255})
	img.Set(0, 1, color.RGBA{B: 7, A: 255})
	img.Set(1, 1, color.RGBA{R: 1, G: 2, B: 3, A: 255})

	var buf bytes.Buffer
	if err := WritePPM(&buf, img); err != nil {
		t.Fatalf("WritePPM failed: %v", err)
	}

	want := "P3\n2 2\n255\n255 0 0 0 128 0\n0 0 7 1 2 3\n"
	if buf.String() != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, buf.String())
	}
}
