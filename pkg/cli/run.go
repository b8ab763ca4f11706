package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/conveyor-ci/conveyor/pkg/config"
	"github.com/conveyor-ci/conveyor/pkg/core"
	"github.com/conveyor-ci/conveyor/pkg/executor"
	"github.com/conveyor-ci/conveyor/pkg/logger"
	"github.com/conveyor-ci/conveyor/pkg/pipeline"
	"github.com/conveyor-ci/conveyor/pkg/shell"
	"github.com/conveyor-ci/conveyor/pkg/store"
)

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "Evaluate triggers and execute a pipeline",
	ArgsUsage: "<pipeline-file>",
	Description: `Run a pipeline file against a simulated event.

Reports are generated in the output directory:
  - Default: ./reports/<timestamp>/
  - With --output: <output>/<timestamp>/
  - With --output and --flatten: <output>/ (no timestamp subfolder)

Exit codes:
  0  all jobs succeeded, or no trigger matched the event
  1  at least one job failed or was cancelled
  2  the pipeline file is invalid

Examples:
  conveyor run pipeline.yaml --event push --branch master
  conveyor run pipeline.yaml --event pull_request --parallelism 4
  conveyor run pipeline.yaml --event push --branch master -e CI=true
  conveyor run pipeline.yaml --event push --force`,
	Flags: []cli.Flag{
		// Event simulation
		&cli.StringFlag{
			Name:  "event",
			Usage: "Event kind to evaluate triggers against (push, pull_request, ...)",
			Value: "push",
		},
		&cli.StringFlag{
			Name:  "branch",
			Usage: "Branch the event refers to",
		},
		&cli.BoolFlag{
			Name:  "force",
			Usage: "Run even if no trigger matches the event",
		},

		// Execution settings
		&cli.IntFlag{
			Name:    "parallelism",
			Aliases: []string{"j"},
			Usage:   "Max concurrent job instances (0 = sequential)",
		},
		&cli.BoolFlag{
			Name:  "stop-on-fail",
			Usage: "Cancel remaining instances after the first job failure",
		},

		// Environment and secrets
		&cli.StringSliceFlag{
			Name:    "env",
			Aliases: []string{"e"},
			Usage:   "Environment variables (KEY=VALUE)",
		},
		&cli.StringFlag{
			Name:  "secrets",
			Usage: "Path to a YAML file of secret bindings",
		},

		// Output directory
		&cli.StringFlag{
			Name:  "output",
			Usage: "Output directory for reports (default: ./reports)",
		},
		&cli.BoolFlag{
			Name:  "flatten",
			Usage: "Don't create timestamp subfolder (requires --output)",
		},

		// History
		&cli.StringFlag{
			Name:  "history-db",
			Usage: "Run history database path (default: <home>/history.db)",
		},
		&cli.BoolFlag{
			Name:  "no-history",
			Usage: "Don't record this run in the history database",
		},
	},
	Action: runPipeline,
}

// RunConfig holds the complete resolved run configuration.
type RunConfig struct {
	// Paths
	PipelinePath string
	ConfigPath   string

	// Event
	EventKind   string
	EventBranch string
	Force       bool

	// Execution
	Parallelism int
	StopOnFail  bool

	// Environment
	Env     map[string]string
	Secrets map[string]string

	// Output
	OutputDir string // Final resolved output directory

	// History
	HistoryDB string
	NoHistory bool
}

func runPipeline(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one pipeline file argument", 2)
	}

	cfg, err := buildRunConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	// Parse before doing anything else: a broken file is a config error
	// regardless of triggers.
	p, err := pipeline.ParseFile(cfg.PipelinePath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	// Trigger evaluation. A non-matching event is a normal outcome, not
	// a failure.
	ev := pipeline.Event{Kind: cfg.EventKind, Branch: cfg.EventBranch}
	if !p.Match(ev) && !cfg.Force {
		fmt.Printf("No trigger in %s matches event %s, nothing to run\n", cfg.PipelinePath, describeEvent(ev))
		return nil
	}

	return executeRun(c, cfg, p, ev)
}

// buildRunConfig merges the workspace config file with CLI flags.
// Flags win over file values.
func buildRunConfig(c *cli.Context) (*RunConfig, error) {
	var fileCfg *config.Config
	var err error

	if configPath := c.String("config"); configPath != "" {
		fileCfg, err = config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", configPath, err)
		}
	} else {
		fileCfg, err = config.LoadFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("load workspace config: %w", err)
		}
	}

	cfg := &RunConfig{
		PipelinePath: c.Args().First(),
		ConfigPath:   c.String("config"),
		EventKind:    c.String("event"),
		EventBranch:  c.String("branch"),
		Force:        c.Bool("force"),
		Parallelism:  fileCfg.Parallelism,
		StopOnFail:   fileCfg.StopOnFail,
		HistoryDB:    fileCfg.HistoryDB,
		NoHistory:    c.Bool("no-history"),
	}

	if c.IsSet("parallelism") {
		cfg.Parallelism = c.Int("parallelism")
	}
	if c.IsSet("stop-on-fail") {
		cfg.StopOnFail = c.Bool("stop-on-fail")
	}
	if c.IsSet("history-db") {
		cfg.HistoryDB = c.String("history-db")
	}
	if cfg.HistoryDB == "" {
		cfg.HistoryDB = config.GetHistoryPath()
	}

	// Workspace env, then CLI -e overrides
	cfg.Env = make(map[string]string)
	for k, v := range fileCfg.Env {
		cfg.Env[k] = v
	}
	for k, v := range parseEnvVars(c.StringSlice("env")) {
		cfg.Env[k] = v
	}

	secretsPath := c.String("secrets")
	if secretsPath == "" {
		secretsPath = fileCfg.SecretsFile
	}
	cfg.Secrets, err = config.LoadSecrets(secretsPath)
	if err != nil {
		return nil, err
	}

	cfg.OutputDir, err = resolveOutputDir(coalesce(c.String("output"), fileCfg.OutputDir), c.Bool("flatten"))
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func executeRun(c *cli.Context, cfg *RunConfig, p *pipeline.Pipeline, ev pipeline.Event) error {
	// 1. Create output directory
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return cli.Exit(fmt.Sprintf("Error: create output directory: %v", err), 2)
	}

	// 2. Initialize logging
	logPath := filepath.Join(cfg.OutputDir, "conveyor.log")
	if err := logger.Init(logPath); err != nil {
		fmt.Printf("Warning: Failed to initialize logger: %v\n", err)
	}
	defer logger.Close()

	logger.Info("=== Pipeline run started ===")
	logger.Info("Pipeline: %s (%s)", p.Name, cfg.PipelinePath)
	logger.Info("Event: %s", describeEvent(ev))
	logger.Info("Output directory: %s", cfg.OutputDir)
	logger.Info("Parallelism: %d, stop-on-fail: %v", cfg.Parallelism, cfg.StopOnFail)

	// 3. Handle SIGINT/SIGTERM: cancel the run so in-flight jobs finish
	// as cancelled and the report stays consistent.
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Build the step runner and provisioner
	stepRunner := shell.NewRunner()
	provisioner := &shell.LocalProvisioner{
		Env:     cfg.Env,
		Secrets: cfg.Secrets,
	}

	runner := executor.New(stepRunner, provisioner, executor.RunnerConfig{
		OutputDir:      cfg.OutputDir,
		Parallelism:    cfg.Parallelism,
		StopOnFail:     cfg.StopOnFail,
		Version:        Version,
		RunnerName:     "shell",
		OnJobStart:     onJobStart,
		OnStepComplete: onStepComplete,
		OnJobEnd:       onJobEnd,
	})

	printHeader(p, ev, cfg)
	if c.Bool("verbose") {
		fmt.Printf("  %soutput: %s, parallelism: %d, history: %s%s\n",
			color(colorGray), cfg.OutputDir, cfg.Parallelism, cfg.HistoryDB, color(colorReset))
	}

	// 5. Execute
	result, err := runner.Run(ctx, p, ev)
	if err != nil {
		logger.Error("Pipeline execution failed: %v", err)
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	// 6. Summary and report pointers
	printSummary(result)
	fmt.Println("  Reports:")
	fmt.Printf("    JSON:   %s\n", filepath.Join(cfg.OutputDir, "report.json"))
	fmt.Printf("    Log:    %s\n", logPath)
	fmt.Println()

	// 7. Record history
	if !cfg.NoHistory {
		if err := recordRun(cfg.HistoryDB, result); err != nil {
			fmt.Printf("Warning: Failed to record run history: %v\n", err)
			logger.Error("Failed to record run history: %v", err)
		}
	}

	// Exit with code 1 if any instance failed (summary already printed)
	if result.ExitCode() != 0 {
		return cli.Exit("", 1)
	}

	return nil
}

// recordRun saves the finished run to the history database.
func recordRun(dbPath string, result *core.RunResult) error {
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.SaveRun(store.FromResult(result))
}

// resolveOutputDir resolves the final output directory.
func resolveOutputDir(output string, flatten bool) (string, error) {
	if flatten && output == "" {
		return "", fmt.Errorf("--flatten requires --output to be specified")
	}

	baseDir := output
	if baseDir == "" {
		baseDir = "./reports"
	}

	if flatten {
		return filepath.Clean(baseDir), nil
	}

	// Create timestamp-based subfolder
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(baseDir, timestamp), nil
}

func parseEnvVars(envs []string) map[string]string {
	result := make(map[string]string)
	for _, e := range envs {
		parts := strings.SplitN(e, "=", 2)
		if len(parts) != 2 {
			continue
		}
		result[parts[0]] = parts[1]
	}
	return result
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func describeEvent(ev pipeline.Event) string {
	if ev.Branch == "" {
		return ev.Kind
	}
	return fmt.Sprintf("%s on %s", ev.Kind, ev.Branch)
}
