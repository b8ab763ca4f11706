package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/conveyor-ci/conveyor/pkg/core"
	"github.com/conveyor-ci/conveyor/pkg/pipeline"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// Slow step threshold in milliseconds
const slowThresholdMs = 30000

// colorsEnabled determines if ANSI colors should be used
var colorsEnabled = true

func init() {
	// Respect NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		colorsEnabled = false
		return
	}
	// Check if stdout is a terminal
	if fileInfo, err := os.Stdout.Stat(); err == nil {
		if (fileInfo.Mode() & os.ModeCharDevice) == 0 {
			colorsEnabled = false
		}
	}
}

// color returns the color code if colors are enabled, empty string otherwise
func color(c string) string {
	if colorsEnabled {
		return c
	}
	return ""
}

func printHeader(p *pipeline.Pipeline, ev pipeline.Event, cfg *RunConfig) {
	name := p.Name
	if name == "" {
		name = cfg.PipelinePath
	}
	fmt.Printf("\n  %s%s%s triggered by %s\n", color(colorBold), name, color(colorReset), describeEvent(ev))
}

// Live progress callbacks

func onJobStart(jobIdx, totalJobs int, name, label string) {
	fmt.Printf("\n  %s[%d/%d]%s %s%s%s\n",
		color(colorCyan), jobIdx+1, totalJobs, color(colorReset),
		color(colorBold), label, color(colorReset))
	fmt.Println(strings.Repeat("─", 60))
}

func onStepComplete(jobLabel string, stepIdx int, desc string, passed bool, durationMs int64, errMsg string) {
	isSlow := durationMs >= slowThresholdMs
	durStr := formatDuration(durationMs)

	if passed {
		symbol := "✓"
		symbolColor := color(colorGreen)
		durColor := ""
		if isSlow {
			durColor = color(colorYellow)
			symbol = "⚠"
			symbolColor = color(colorYellow)
		}
		fmt.Printf("    %s%s%s %s %s(%s)%s\n",
			symbolColor, symbol, color(colorReset), desc, durColor, durStr, color(colorReset))
	} else {
		fmt.Printf("    %s✗%s %s (%s)\n", color(colorRed), color(colorReset), desc, durStr)
		if errMsg != "" {
			fmt.Printf("      %s╰─%s %s\n", color(colorGray), color(colorReset), errMsg)
		}
	}
}

func onJobEnd(label string, passed bool, durationMs int64) {
	if passed {
		fmt.Printf("  %s✓%s %s %s%s%s\n",
			color(colorGreen), color(colorReset), label, color(colorGray), formatDuration(durationMs), color(colorReset))
	} else {
		fmt.Printf("  %s✗%s %s %s%s%s\n",
			color(colorRed), color(colorReset), label, color(colorGray), formatDuration(durationMs), color(colorReset))
	}
}

func printSummary(result *core.RunResult) {
	// Calculate step totals
	totalSteps := 0
	passedSteps := 0
	failedSteps := 0
	skippedSteps := 0
	for _, jr := range result.Jobs {
		totalSteps += jr.TotalSteps
		passedSteps += jr.SucceededSteps
		failedSteps += jr.FailedSteps
		skippedSteps += jr.SkippedSteps
	}

	// Print step summary
	fmt.Println()
	if passedSteps > 0 {
		fmt.Printf("  %s%d steps passing%s (%s)\n", color(colorGreen), passedSteps, color(colorReset), formatDuration(result.Duration.Milliseconds()))
	}
	if failedSteps > 0 {
		fmt.Printf("  %s%d steps failing%s\n", color(colorRed), failedSteps, color(colorReset))
	}
	if skippedSteps > 0 {
		fmt.Printf("  %s%d steps skipped%s\n", color(colorCyan), skippedSteps, color(colorReset))
	}
	fmt.Println()

	// Print table
	tableWidth := 92
	fmt.Println(strings.Repeat("═", tableWidth))
	fmt.Printf("  %-42s %6s %7s %6s %6s %6s %10s\n", "Job", "Status", "Steps", "Pass", "Fail", "Skip", "Duration")
	fmt.Println(strings.Repeat("─", tableWidth))

	// Print each job instance
	for _, jr := range result.Jobs {
		var status string
		var statusColor string
		switch jr.Status {
		case core.StatusFailed:
			status = "✗ FAIL"
			statusColor = color(colorRed)
		case core.StatusCancelled:
			status = "✗ CANC"
			statusColor = color(colorRed)
		case core.StatusSkipped:
			status = "- SKIP"
			statusColor = color(colorCyan)
		default:
			status = "✓ PASS"
			statusColor = color(colorGreen)
		}

		// Truncate label if too long
		label := jr.Label
		if len(label) > 42 {
			label = label[:39] + "..."
		}

		fmt.Printf("  %-42s %s%6s%s %7d %6d %6d %6d %10s\n",
			label, statusColor, status, color(colorReset),
			jr.TotalSteps, jr.SucceededSteps, jr.FailedSteps, jr.SkippedSteps,
			formatDuration(jr.Duration.Milliseconds()))
	}
	fmt.Println(strings.Repeat("═", tableWidth))

	// Verdict line
	if result.Success() {
		fmt.Printf("\n  %s✓ %d/%d jobs succeeded%s (%s)\n\n",
			color(colorGreen), result.SucceededJobs, result.TotalJobs, color(colorReset),
			formatDuration(result.Duration.Milliseconds()))
	} else {
		failed := result.FailedJobs + result.CancelledJobs
		fmt.Printf("\n  %s✗ %d/%d jobs failed%s (%s)\n\n",
			color(colorRed), failed, result.TotalJobs, color(colorReset),
			formatDuration(result.Duration.Milliseconds()))
	}
}

func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60000 {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	}
	mins := ms / 60000
	secs := (ms % 60000) / 1000
	return fmt.Sprintf("%dm %ds", mins, secs)
}
