// Package main is the stitch command, which estimates the affine transform between two images.
package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

const (
	flagDebug  = "debug"
	flagConfig = "config"
	flagSeed   = "seed"
	flagOut    = "out"
	flagPlot   = "plot"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "stitch",
		Usage: "align images of the same scene",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "align",
				Usage:     "estimate the affine transform mapping the second image onto the first one",
				ArgsUsage: "<image1> <image2>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    flagConfig,
						Aliases: []string{"c"},
						Usage:   "load alignment parameters from `FILE`",
					},
					&cli.Int64Flag{
						Name:  flagSeed,
						Usage: "seed of the RANSAC sampler, overrides the config",
					},
					&cli.StringFlag{
						Name:  flagOut,
						Usage: "write the result as json to `FILE` instead of stdout",
					},
					&cli.StringFlag{
						Name:  flagPlot,
						Usage: "draw the inlier matches to the png `FILE`",
					},
				},
				Action: alignAction,
			},
		},
	}
}
