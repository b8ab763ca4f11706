package cli

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/conveyor-ci/conveyor/pkg/config"
	"github.com/conveyor-ci/conveyor/pkg/store"
)

var historyCommand = &cli.Command{
	Name:      "history",
	Usage:     "List past pipeline runs",
	ArgsUsage: "[run-id]",
	Description: `List runs recorded in the history database, newest first.
With a run ID argument, show that run's job instances instead.

Examples:
  conveyor history
  conveyor history --pipeline CI --limit 5
  conveyor history 4f6b1c0a-...`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "db",
			Usage: "Run history database path (default: <home>/history.db)",
		},
		&cli.StringFlag{
			Name:  "pipeline",
			Usage: "Only show runs of this pipeline",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Max number of runs to show",
			Value: 20,
		},
	},
	Action: runHistory,
}

func runHistory(c *cli.Context) error {
	dbPath := c.String("db")
	if dbPath == "" {
		dbPath = config.GetHistoryPath()
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: open history database: %v", err), 2)
	}
	defer s.Close()

	if c.NArg() > 0 {
		return showRun(s, c.Args().First())
	}

	runs, err := s.ListRuns(c.String("pipeline"), c.Int("limit"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet")
		return nil
	}

	fmt.Printf("  %-36s %-16s %-20s %-10s %6s %10s\n", "Run", "Pipeline", "Event", "Status", "Jobs", "Duration")
	fmt.Println(strings.Repeat("─", 106))
	for _, r := range runs {
		event := r.EventKind
		if r.EventBranch != "" {
			event = fmt.Sprintf("%s (%s)", r.EventKind, r.EventBranch)
		}
		fmt.Printf("  %-36s %-16s %-20s %s%-10s%s %3d/%-3d %9s\n",
			r.ID, truncate(r.Pipeline, 16), truncate(event, 20),
			statusColor(r.Status), r.Status, color(colorReset),
			r.SucceededJobs, r.TotalJobs,
			formatDuration(r.DurationMs))
	}

	return nil
}

func showRun(s store.Store, id string) error {
	r, err := s.GetRun(id)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	fmt.Printf("\n  %s%s%s — %s, started %s\n\n",
		color(colorBold), r.Pipeline, color(colorReset),
		r.Status, r.StartTime.Local().Format("2006-01-02 15:04:05"))

	for _, job := range r.Jobs {
		fmt.Printf("  %s%-8s%s %-42s %10s\n",
			statusColor(job.Status), job.Status, color(colorReset),
			truncate(job.Label, 42), formatDuration(job.DurationMs))
		if job.Error != "" {
			fmt.Printf("           %s╰─%s %s\n", color(colorGray), color(colorReset), job.Error)
		}
	}
	fmt.Println()

	return nil
}

func statusColor(status string) string {
	switch status {
	case "succeeded":
		return color(colorGreen)
	case "failed", "cancelled":
		return color(colorRed)
	case "skipped":
		return color(colorCyan)
	default:
		return ""
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
