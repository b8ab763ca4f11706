package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func readIndex(t *testing.T, dir string) *Index {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "report.json"))
	if err != nil {
		t.Fatalf("read report.json: %v", err)
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		t.Fatalf("unmarshal report.json: %v", err)
	}
	return &idx
}

func TestIndexWriter_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	index, details := BuildSkeleton(sampleJobs(), BuilderConfig{Pipeline: "CI"})
	if err := WriteSkeleton(tmpDir, index, details); err != nil {
		t.Fatal(err)
	}

	w := NewIndexWriter(tmpDir, index)
	defer w.Close()

	w.Start()
	if got := readIndex(t, tmpDir); got.Status != StatusRunning {
		t.Errorf("after Start: Status = %v, want running", got.Status)
	}

	now := time.Now()
	duration := int64(1200)
	w.UpdateJob("job-000", &JobUpdate{
		Status:   StatusSucceeded,
		EndTime:  &now,
		Duration: &duration,
		Steps:    StepCounts{Total: 2, Succeeded: 2},
	})
	w.UpdateJob("job-001", &JobUpdate{
		Status:   StatusFailed,
		EndTime:  &now,
		Duration: &duration,
		Steps:    StepCounts{Total: 2, Succeeded: 1, Failed: 1},
	})
	w.End()

	got := readIndex(t, tmpDir)
	if got.Status != StatusFailed {
		t.Errorf("final Status = %v, want failed", got.Status)
	}
	if got.Summary.Succeeded != 1 || got.Summary.Failed != 1 {
		t.Errorf("Summary = %+v, want 1 succeeded, 1 failed", got.Summary)
	}
	if got.EndTime == nil {
		t.Error("EndTime = nil, want set")
	}
	if got.Jobs[0].Status != StatusSucceeded {
		t.Errorf("Jobs[0].Status = %v, want succeeded", got.Jobs[0].Status)
	}
}

func TestIndexWriter_CancelledCountsAsFailure(t *testing.T) {
	tmpDir := t.TempDir()
	index, details := BuildSkeleton(sampleJobs(), BuilderConfig{Pipeline: "CI"})
	if err := WriteSkeleton(tmpDir, index, details); err != nil {
		t.Fatal(err)
	}

	w := NewIndexWriter(tmpDir, index)
	defer w.Close()
	w.Start()

	w.UpdateJob("job-000", &JobUpdate{Status: StatusSucceeded})
	w.UpdateJob("job-001", &JobUpdate{Status: StatusCancelled})
	w.End()

	if got := readIndex(t, tmpDir); got.Status != StatusFailed {
		t.Errorf("Status = %v, want failed when an instance is cancelled", got.Status)
	}
}

func TestJobWriter_StepLifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	index, details := BuildSkeleton(sampleJobs(), BuilderConfig{Pipeline: "CI"})
	if err := WriteSkeleton(tmpDir, index, details); err != nil {
		t.Fatal(err)
	}

	iw := NewIndexWriter(tmpDir, index)
	defer iw.Close()
	iw.Start()

	jw := NewJobWriter(&details[0], tmpDir, iw)
	jw.Start()
	jw.StepStart(0)
	jw.StepEnd(0, StatusSucceeded, 0, "ok", "")
	jw.StepStart(1)
	jw.StepEnd(1, StatusFailed, 1, "", "exit status 1")
	jw.End(StatusFailed, "fmt-check failed")

	data, err := os.ReadFile(filepath.Join(tmpDir, "jobs", "job-000.json"))
	if err != nil {
		t.Fatal(err)
	}
	var detail JobDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		t.Fatal(err)
	}

	if detail.Steps[0].Status != StatusSucceeded {
		t.Errorf("step 0 status = %v, want succeeded", detail.Steps[0].Status)
	}
	if detail.Steps[1].Status != StatusFailed {
		t.Errorf("step 1 status = %v, want failed", detail.Steps[1].Status)
	}
	if detail.Steps[1].Error == nil || *detail.Steps[1].Error != "exit status 1" {
		t.Errorf("step 1 error = %v, want exit status 1", detail.Steps[1].Error)
	}
	if detail.Duration == nil {
		t.Error("detail.Duration = nil, want set")
	}
}

func TestJobWriter_SkipRemainingSteps(t *testing.T) {
	tmpDir := t.TempDir()
	index, details := BuildSkeleton(sampleJobs(), BuilderConfig{Pipeline: "CI"})
	if err := WriteSkeleton(tmpDir, index, details); err != nil {
		t.Fatal(err)
	}

	iw := NewIndexWriter(tmpDir, index)
	defer iw.Close()

	jw := NewJobWriter(&details[0], tmpDir, iw)
	jw.Start()
	jw.StepStart(0)
	jw.StepEnd(0, StatusFailed, 1, "", "boom")
	jw.SkipRemainingSteps(1)
	jw.End(StatusFailed, "boom")

	detail := jw.GetJobDetail()
	if detail.Steps[1].Status != StatusSkipped {
		t.Errorf("step 1 status = %v, want skipped", detail.Steps[1].Status)
	}

	counts := jw.stepCounts()
	if counts.Failed != 1 || counts.Skipped != 1 {
		t.Errorf("counts = %+v, want 1 failed, 1 skipped", counts)
	}
}
