package loaders

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Supported output formats
const (
	FormatPNG = "png"
	FormatPPM = "ppm"
)

// FormatFromFilename infers the output format from the file extension,
// defaulting to PNG
func FormatFromFilename(filename string) string {
	if strings.EqualFold(filepath.Ext(filename), ".ppm") {
		return FormatPPM
	}
	return FormatPNG
}

// EncodeImage writes img to w in the given format
func EncodeImage(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatPPM:
		return WritePPM(w, img)
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// SaveImage writes img to filename, creating parent directories as needed.
// An empty format is inferred from the extension.
func SaveImage(filename string, img image.Image, format string) error {
	if format == "" {
		format = FormatFromFilename(filename)
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := EncodeImage(file, img, format); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return file.Close()
}
