package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	cli := cli.App{
		Usage: "Replay allocation workloads against simulated disks",
		Commands: []*cli.Command{
			{
				Name:      "replay",
				Usage:     "Run a workload against one allocation strategy",
				Action:    replayWorkload,
				ArgsUsage: "WORKLOAD_FILE",
				Flags: append(
					arenaFlags(),
					&cli.StringFlag{
						Name:  "strategy",
						Value: "contiguous",
						Usage: "allocation strategy: contiguous or linked",
					},
					&cli.BoolFlag{
						Name:  "stop-on-fail",
						Usage: "stop at the first command that fails",
					},
					&cli.BoolFlag{
						Name:  "single-compaction",
						Usage: "don't compact again after relocating an extended file (contiguous only)",
					},
					&cli.BoolFlag{
						Name:  "dump-table",
						Usage: "print the directory table as CSV after the workload",
					},
					&cli.StringFlag{
						Name:  "slice",
						Usage: "print the owners of blocks START:END as CSV after the workload",
					},
					&cli.BoolFlag{
						Name:  "outcomes",
						Usage: "print the outcome of every command as CSV",
					},
				),
			},
			{
				Name:      "compare",
				Usage:     "Run a workload against both strategies and report where they disagree",
				Action:    compareWorkload,
				ArgsUsage: "WORKLOAD_FILE",
				Flags: append(
					arenaFlags(),
					&cli.BoolFlag{
						Name:  "show-layout",
						Usage: "also list steps where only the placement of blocks differs",
					},
				),
			},
		},
	}

	err := cli.Run(os.Args)
	if err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}
