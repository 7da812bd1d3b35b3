package material

import (
	"fmt"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// ImageTexture provides color from a 2D image
type ImageTexture struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major: Pixels[y*Width + x], y=0 is the first (top) row
}

// NewImageTexture creates a new image texture
func NewImageTexture(width, height int, pixels []core.Vec3) (*ImageTexture, error) {
	if err := checkDimensions(width, height, len(pixels)); err != nil {
		return nil, err
	}
	return &ImageTexture{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}, nil
}

// Evaluate samples the texture at (u, v) with bilinear filtering.
// u runs left to right, v top to bottom; both are clamped to [0, 1].
func (t *ImageTexture) Evaluate(u, v float64) core.Vec3 {
	return bilinear(t.Pixels, t.Width, t.Height, u, v)
}

func checkDimensions(width, height, count int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid image dimensions %dx%d", width, height)
	}
	if count != width*height {
		return fmt.Errorf("expected %d pixels for %dx%d image, got %d", width*height, width, height, count)
	}
	return nil
}

// bilinear blends the four texels surrounding (u*(w-1), v*(h-1))
func bilinear(values []core.Vec3, width, height int, u, v float64) core.Vec3 {
	u = max(0, min(1, u))
	v = max(0, min(1, v))

	x := u * float64(width-1)
	y := v * float64(height-1)

	i := int(x)
	j := int(y)
	alpha := x - float64(i)
	beta := y - float64(j)

	i1 := min(i+1, width-1)
	j1 := min(j+1, height-1)

	c00 := values[j*width+i]
	c10 := values[j*width+i1]
	c01 := values[j1*width+i]
	c11 := values[j1*width+i1]

	return c00.Multiply((1 - alpha) * (1 - beta)).
		Add(c10.Multiply(alpha * (1 - beta))).
		Add(c01.Multiply((1 - alpha) * beta)).
		Add(c11.Multiply(alpha * beta))
}
