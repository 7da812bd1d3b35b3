package loaders

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// ErrInvalidPPM is returned for malformed or unsupported PPM data
var ErrInvalidPPM = errors.New("invalid PPM")

// ReadPPM parses an ASCII (P3) PPM image. Comments start with '#' and run to
// the end of the line; the header may span several lines.
func ReadPPM(r io.Reader) (*ImageData, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var tokens []string
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		tokens = append(tokens, strings.Fields(line)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read PPM: %w", err)
	}

	if len(tokens) < 4 {
		return nil, fmt.Errorf("%w: truncated header", ErrInvalidPPM)
	}
	if tokens[0] != "P3" {
		return nil, fmt.Errorf("%w: magic %q, only P3 is supported", ErrInvalidPPM, tokens[0])
	}

	header := make([]int, 3)
	for i := range header {
		v, err := strconv.Atoi(tokens[i+1])
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("%w: bad header value %q", ErrInvalidPPM, tokens[i+1])
		}
		header[i] = v
	}
	width, height, maxVal := header[0], header[1], header[2]

	values := tokens[4:]
	if len(values) != 3*width*height {
		return nil, fmt.Errorf("%w: expected %d color values for %dx%d, got %d",
			ErrInvalidPPM, 3*width*height, width, height, len(values))
	}

	scale := 1 / float64(maxVal)
	pixels := make([]core.Vec3, width*height)
	var rgb [3]float64
	for p := range pixels {
		for c := 0; c < 3; c++ {
			tok := values[3*p+c]
			v, err := strconv.Atoi(tok)
			if err != nil || v < 0 || v > maxVal {
				return nil, fmt.Errorf("%w: bad color value %q at pixel %d", ErrInvalidPPM, tok, p)
			}
			rgb[c] = float64(v) * scale
		}
		pixels[p] = core.NewVec3(rgb[0], rgb[1], rgb[2])
	}

	return &ImageData{Width: width, Height: height, Pixels: pixels}, nil
}

// WritePPM writes img as an ASCII (P3) PPM with a max value of 255, one
// image row per line
func WritePPM(w io.Writer, img image.Image) error {
	bw := bufio.NewWriter(w)
	bounds := img.Bounds()

	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", bounds.Dx(), bounds.Dy()); err != nil {
		return err
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			sep := " "
			if x == bounds.Max.X-1 {
				sep = "\n"
			}
			if _, err := fmt.Fprintf(bw, "%d %d %d%s", r>>8, g>>8, b>>8, sep); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
