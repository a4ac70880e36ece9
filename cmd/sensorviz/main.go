// Package main is the sensorviz command line tool.
package main

import (
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sensorviz/sensorviz/logging"
)

const (
	// Flags.
	flagConfig    = "config"
	flagDebug     = "debug"
	flagLogFile   = "log-file"
	flagPose      = "pose"
	flagSeed      = "seed"
	flagMap       = "map"
	flagVisualize = "visualize"
	flagWrite     = "write-visible"
	flagBinary    = "binary"
	flagHistogram = "histogram"
	flagBins      = "bins"
	flagSpeed     = "speed"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the command tree. Command output goes to out; logs go to stdout through the logger.
func newApp(out io.Writer) *cli.App {
	var (
		logger  logging.Logger
		logFile *lumberjack.Logger
	)

	return &cli.App{
		Name:      "sensorviz",
		Usage:     "inspect camera frustums, projections and correspondences over a LIDAR map",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     flagConfig,
				Aliases:  []string{"c"},
				Usage:    "load scene configuration from `FILE`",
				Required: true,
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "also write logs to `FILE`, rotated as it grows",
			},
			&cli.Int64Flag{
				Name:  flagSeed,
				Usage: "seed for synthetic trajectories and test clouds",
				Value: 1,
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool(flagDebug) {
				logger = logging.NewDebugLogger("sensorviz")
			} else {
				logger = logging.NewLogger("sensorviz")
			}
			if fn := c.String(flagLogFile); fn != "" {
				logFile = &lumberjack.Logger{
					Filename:   fn,
					MaxSize:    64,
					MaxBackups: 2,
					Compress:   true,
				}
				logger.AddAppender(logging.NewWriterAppender(logFile))
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if logFile == nil {
				return nil
			}
			return logFile.Close()
		},
		Commands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "check the configuration file and report every problem",
				Action: func(c *cli.Context) error {
					return validateAction(c)
				},
			},
			{
				Name:  "frustum",
				Usage: "print the frustum geometry, optionally placed at a trajectory pose",
				Flags: []cli.Flag{poseFlag()},
				Action: func(c *cli.Context) error {
					return frustumAction(c, logger)
				},
			},
			{
				Name:  "project",
				Usage: "project the map into the camera image",
				Flags: []cli.Flag{
					poseFlag(),
					&cli.StringFlag{
						Name:  flagMap,
						Usage: "PCD `FILE` to project instead of the configured map",
					},
					&cli.BoolFlag{
						Name:  flagVisualize,
						Usage: "print near-plane markers instead of raw projections",
					},
					&cli.StringFlag{
						Name:  flagWrite,
						Usage: "write the points the camera sees to the PCD `FILE`",
					},
					&cli.BoolFlag{
						Name:  flagBinary,
						Usage: "write --write-visible in binary PCD instead of ascii",
					},
				},
				Action: func(c *cli.Context) error {
					return projectAction(c, logger)
				},
			},
			{
				Name:  "match",
				Usage: "report residuals between correspondences and the camera placement",
				Flags: []cli.Flag{
					poseFlag(),
					&cli.StringFlag{
						Name:  flagHistogram,
						Usage: "save a residual histogram to `FILE` (png, svg or pdf)",
					},
					&cli.IntFlag{
						Name:  flagBins,
						Usage: "histogram bin count",
					},
				},
				Action: func(c *cli.Context) error {
					return matchAction(c, logger)
				},
			},
			{
				Name:  "play",
				Usage: "play the trajectory, moving the frustum along it",
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:  flagSpeed,
						Usage: "points per second, overriding the configured speed",
					},
				},
				Action: func(c *cli.Context) error {
					return playAction(c, logger)
				},
			},
			{
				Name:  "watch",
				Usage: "rebuild the frustum whenever the configuration file changes",
				Action: func(c *cli.Context) error {
					return watchAction(c, logger)
				},
			},
		},
	}
}

func poseFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  flagPose,
		Usage: "place the camera at trajectory pose `INDEX`",
		Value: -1,
	}
}
