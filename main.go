package main

import (
	"os"

	"github.com/df07/go-whitted-raytracer/pkg/log"
	"github.com/urfave/cli"
)

var logger = log.New("whitted")

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "whitted"
	app.Usage = "render scene descriptions with recursive Whitted ray tracing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a scene file or a built-in scene",
			Description: `
Read a scene description (eye, viewdir, updir, hfov, imsize, bkgcolor,
mtlcolor, objects and lights, one keyword per line) and write the rendered
image. Without a scene file the --preset scene is rendered.`,
			ArgsUsage: "[scene_file.txt]",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Usage: "image filename; defaults to the scene name with a .png extension",
				},
				cli.StringFlag{
					Name:  "format, f",
					Usage: "output format (png or ppm); inferred from --out when empty",
				},
				cli.StringFlag{
					Name:  "preset",
					Value: "default",
					Usage: "built-in scene to render when no scene file is given",
				},
				cli.IntFlag{
					Name:  "workers, w",
					Usage: "number of parallel workers; overrides the scene's threadcount",
				},
				cli.IntFlag{
					Name:  "max-depth",
					Usage: "maximum recursion depth for reflected and transmitted rays",
				},
				cli.IntFlag{
					Name:  "width",
					Usage: "override the image width",
				},
				cli.IntFlag{
					Name:  "height",
					Usage: "override the image height",
				},
				cli.BoolFlag{
					Name:  "hard-shadows",
					Usage: "cast a single shadow ray per light",
				},
			},
			Action: RenderScene,
		},
		{
			Name:      "info",
			Usage:     "describe a scene, or list the available scenes",
			ArgsUsage: "[scene_file.txt | preset]",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "scenes",
					Value: "scenes",
					Usage: "directory of scene files to list",
				},
			},
			Action: DescribeScene,
		},
		{
			Name:  "serve",
			Usage: "serve renders over HTTP",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "port, p",
					Value: 8080,
					Usage: "port to serve on",
				},
				cli.StringFlag{
					Name:  "scenes",
					Value: "scenes",
					Usage: "directory of scene files to offer",
				},
			},
			Action: Serve,
		},
	}
	return app
}

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
