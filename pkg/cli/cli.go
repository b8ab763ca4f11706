// Package cli provides the command-line interface for conveyor.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Usage:   "Path to workspace conveyor.yaml",
		EnvVars: []string{"CONVEYOR_CONFIG"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"CONVEYOR_VERBOSE"},
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "conveyor",
		Usage:   "Declarative CI pipeline orchestrator",
		Version: Version,
		Description: `Conveyor evaluates triggers, expands job matrices, and executes
pipeline jobs concurrently with per-job fail-fast semantics.

Examples:
  conveyor run pipeline.yaml --event push --branch master
  conveyor validate pipeline.yaml
  conveyor history --limit 10`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			runCommand,
			validateCommand,
			historyCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
