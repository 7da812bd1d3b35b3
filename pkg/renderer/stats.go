package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
)

// BandStats describes the work done for one band
type BandStats struct {
	Band     Band
	Worker   int
	Rays     RayCounts
	Duration time.Duration
}

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Width    int
	Height   int
	Workers  int
	Bands    []BandStats // Ordered by band
	Total    RayCounts
	Duration time.Duration // Wall time of the whole render
}

// TotalPixels returns the number of pixels rendered
func (s RenderStats) TotalPixels() int {
	return s.Width * s.Height
}

// RaysPerSecond returns the overall ray throughput
func (s RenderStats) RaysPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Total.Total()) / s.Duration.Seconds()
}

// Table renders per-band ray counts and timings as a text table
func (s RenderStats) Table() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetHeader([]string{"Band", "Rows", "Worker", "Primary", "Secondary", "Shadow", "Time"})

	for i, band := range s.Bands {
		table.Append([]string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d-%d", band.Band.Start, band.Band.End-1),
			fmt.Sprintf("%d", band.Worker),
			fmt.Sprintf("%d", band.Rays.Primary),
			fmt.Sprintf("%d", band.Rays.Secondary),
			fmt.Sprintf("%d", band.Rays.Shadow),
			band.Duration.Round(time.Millisecond).String(),
		})
	}

	table.SetFooter([]string{
		"Total",
		fmt.Sprintf("%d", s.Height),
		fmt.Sprintf("%d", s.Workers),
		fmt.Sprintf("%d", s.Total.Primary),
		fmt.Sprintf("%d", s.Total.Secondary),
		fmt.Sprintf("%d", s.Total.Shadow),
		s.Duration.Round(time.Millisecond).String(),
	})

	table.Render()
	return buf.String()
}
