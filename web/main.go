package main

import (
	"os"

	"github.com/df07/go-whitted-raytracer/pkg/log"
	"github.com/df07/go-whitted-raytracer/web/server"
	"github.com/urfave/cli"
)

var logger = log.New("web")

func main() {
	app := cli.NewApp()
	app.Name = "whitted-web"
	app.Usage = "serve rendered scenes over HTTP"
	app.Flags = []cli.Flag{
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
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
	}
	app.Action = func(ctx *cli.Context) error {
		if ctx.Bool("v") {
			log.SetLevel(log.Info)
		}

		port := ctx.Int("port")
		logger.Noticef("Visit http://localhost:%d/api/scenes to list scenes", port)
		return server.NewServer(port, ctx.String("scenes")).Start()
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
