package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

var version = "dev"

func main() {
	app := cli.App{
		Name:      "zleepd",
		HelpName:  "zleepd",
		Usage:     "tick-driven host with shared sleep clock",
		Version:   version,
		UsageText: "zleepd <command> [arguments...]",
		Commands: []cli.Command{
			{
				Name:   "run",
				Usage:  "run a host with demo sleepers until interrupted",
				Action: run,
				Flags:  runFlags,
			},
			{
				Name:   "bench",
				Usage:  "schedule waiters with random deadlines and report fire order and lateness",
				Action: bench,
				Flags:  benchFlags,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "zleepd:", err)
		os.Exit(1)
	}
}
