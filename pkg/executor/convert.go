package executor

import (
	"github.com/conveyor-ci/conveyor/pkg/core"
	"github.com/conveyor-ci/conveyor/pkg/report"
)

// toReportStatus converts an execution status to its report form.
func toReportStatus(s core.Status) report.Status {
	switch s {
	case core.StatusRunning:
		return report.StatusRunning
	case core.StatusSucceeded:
		return report.StatusSucceeded
	case core.StatusFailed:
		return report.StatusFailed
	case core.StatusSkipped:
		return report.StatusSkipped
	case core.StatusCancelled:
		return report.StatusCancelled
	default:
		return report.StatusPending
	}
}
