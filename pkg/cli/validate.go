package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/conveyor-ci/conveyor/pkg/executor"
	"github.com/conveyor-ci/conveyor/pkg/pipeline"
	"github.com/conveyor-ci/conveyor/pkg/shell"
)

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "Parse and validate a pipeline file without running it",
	ArgsUsage: "<pipeline-file>",
	Description: `Validate a pipeline file: YAML syntax, job and step structure,
matrix axes, and action references. Matrix expansion runs so duplicate
instance identities and empty axes are caught here too.

Exits 0 when valid, 2 when not.`,
	Action: runValidate,
}

func runValidate(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one pipeline file argument", 2)
	}
	path := c.Args().First()

	p, err := pipeline.ParseFile(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	instances, err := executor.BuildInstances(p)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}
	if err := executor.ValidateActions(instances, shell.NewRunner()); err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	name := p.Name
	if name == "" {
		name = path
	}
	fmt.Printf("%s✓%s %s is valid\n", color(colorGreen), color(colorReset), name)
	fmt.Printf("  Triggers:  %d\n", len(p.Triggers))
	fmt.Printf("  Jobs:      %d\n", len(p.Jobs))
	fmt.Printf("  Instances: %d\n", len(instances))

	for _, inst := range instances {
		fmt.Printf("    - %s (%d steps)\n", inst.Label, len(inst.Job.Steps))
	}

	return nil
}
