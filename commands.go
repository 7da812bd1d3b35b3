package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
	"github.com/df07/go-whitted-raytracer/web/server"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// loadScene reads the scene file argument or builds the preset. It returns
// the scene and a base name for the output file.
func loadScene(ctx *cli.Context) (*scene.Scene, string, error) {
	if ctx.NArg() > 1 {
		return nil, "", fmt.Errorf("expected at most one scene file, got %d", ctx.NArg())
	}

	if ctx.NArg() == 1 {
		filename := ctx.Args().First()
		sc, err := scene.LoadScene(filename, logger)
		if err != nil {
			return nil, "", err
		}
		base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		return sc, base, nil
	}

	preset := ctx.String("preset")
	sc, err := scene.NewPreset(preset)
	if err != nil {
		return nil, "", err
	}
	return sc, preset, nil
}

// outputPath picks the output filename and format from the flags
func outputPath(out, format, base string) (string, string) {
	if out == "" {
		ext := loaders.FormatPNG
		if format != "" {
			ext = strings.ToLower(format)
		}
		out = base + "." + ext
	}
	if format == "" {
		format = loaders.FormatFromFilename(out)
	}
	return out, strings.ToLower(format)
}

// RenderScene renders a single frame and writes it to disk.
func RenderScene(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, base, err := loadScene(ctx)
	if err != nil {
		return err
	}

	if w := ctx.Int("width"); w > 0 {
		sc.Width = w
	}
	if h := ctx.Int("height"); h > 0 {
		sc.Height = h
	}

	config := renderer.Config{
		Workers:  ctx.Int("workers"),
		MaxDepth: ctx.Int("max-depth"),
	}
	config.Shadow.Hard = ctx.Bool("hard-shadows")
	if config.Workers > 0 && sc.Threads > 0 && config.Workers != sc.Threads {
		logger.Warningf("--workers %d overrides threadcount %d", config.Workers, sc.Threads)
	}

	out, format := outputPath(ctx.String("out"), ctx.String("format"), base)
	if format != loaders.FormatPNG && format != loaders.FormatPPM {
		return fmt.Errorf("unsupported output format %q", format)
	}

	frame, stats, err := renderer.Render(sc, config, logger)
	if err != nil {
		return err
	}

	if err := loaders.SaveImage(out, frame.ToImage(), format); err != nil {
		return err
	}

	logger.Noticef("render statistics\n%s", stats.Table())
	logger.Noticef("%d pixels at %.0f rays/s, saved %s", stats.TotalPixels(), stats.RaysPerSecond(), out)
	return nil
}

// DescribeScene prints a summary of a scene, or lists presets and scene
// files when no scene is named.
func DescribeScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() == 0 {
		response, err := scene.ListAllScenes(ctx.String("scenes"))
		if err != nil {
			return err
		}
		logger.Noticef("available scenes\n%s", sceneListTable(response))
		return nil
	}

	name := ctx.Args().First()
	var sc *scene.Scene
	var err error
	if _, statErr := os.Stat(name); statErr == nil {
		sc, err = scene.LoadScene(name, logger)
	} else {
		sc, err = scene.NewPreset(name)
	}
	if err != nil {
		return err
	}

	logger.Noticef("scene %s\n%s", name, sceneSummaryTable(sc))
	return nil
}

// Serve starts the web server.
func Serve(ctx *cli.Context) error {
	setupLogging(ctx)
	return server.NewServer(ctx.Int("port"), ctx.String("scenes")).Start()
}

func sceneListTable(response scene.ScenesResponse) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"ID", "Name", "Group", "Description"})
	for _, group := range response.Groups {
		for _, info := range group.Scenes {
			table.Append([]string{info.ID, info.Name, group.Name, info.Description})
		}
	}
	table.Render()
	return buf.String()
}

func sceneSummaryTable(sc *scene.Scene) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Property", "Value"})

	projection := "perspective"
	if sc.Parallel {
		projection = "parallel"
	}
	cue := "off"
	if sc.DepthCue != nil {
		cue = fmt.Sprintf("%v from %g to %g", sc.DepthCue.Color, sc.DepthCue.DMin, sc.DepthCue.DMax)
	}

	var spheres, cylinders, triangles, meshes int
	for _, obj := range sc.Objects {
		switch obj.(type) {
		case *geometry.Sphere:
			spheres++
		case *geometry.Cylinder:
			cylinders++
		case *geometry.Triangle:
			triangles++
		case *geometry.TriangleMesh:
			meshes++
		}
	}

	rows := [][]string{
		{"Image", fmt.Sprintf("%dx%d", sc.Width, sc.Height)},
		{"Eye", fmt.Sprintf("%v", sc.Eye)},
		{"View", fmt.Sprintf("%v", sc.View)},
		{"Up", fmt.Sprintf("%v", sc.Up)},
		{"HFov", fmt.Sprintf("%g", sc.HFov)},
		{"Projection", projection},
		{"Background", fmt.Sprintf("%v eta %g", sc.Background(), sc.BackgroundEta)},
		{"Depth cue", cue},
		{"Objects", fmt.Sprintf("%d spheres, %d cylinders, %d triangles, %d meshes", spheres, cylinders, triangles, meshes)},
		{"Primitives", fmt.Sprintf("%d", sc.GetPrimitiveCount())},
		{"Lights", fmt.Sprintf("%d", len(sc.Lights))},
		{"Workers", fmt.Sprintf("%d", renderer.ResolveWorkers(sc.Threads))},
	}
	table.AppendBulk(rows)
	table.Render()
	return buf.String()
}
