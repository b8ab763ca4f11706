package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/conveyor-ci/conveyor/pkg/core"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	s := openTestStore(t)

	rec := &RunRecord{
		Pipeline:      "CI",
		EventKind:     "push",
		EventBranch:   "master",
		Status:        "succeeded",
		StartTime:     time.Now().UTC(),
		DurationMs:    4200,
		TotalJobs:     2,
		SucceededJobs: 2,
		Jobs: []JobRecord{
			{Name: "lint", Label: "lint", Status: "succeeded", DurationMs: 1200},
			{Name: "test", Label: "test (ubuntu-latest)", Status: "succeeded", DurationMs: 3000},
		},
	}

	if err := s.SaveRun(rec); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if rec.ID == "" {
		t.Fatal("SaveRun() did not assign an ID")
	}

	got, err := s.GetRun(rec.ID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}

	if got.Pipeline != "CI" {
		t.Errorf("Pipeline = %q, want %q", got.Pipeline, "CI")
	}
	if got.Status != "succeeded" {
		t.Errorf("Status = %q, want %q", got.Status, "succeeded")
	}
	if len(got.Jobs) != 2 {
		t.Fatalf("len(Jobs) = %d, want 2", len(got.Jobs))
	}
	if got.Jobs[1].Label != "test (ubuntu-latest)" {
		t.Errorf("Jobs[1].Label = %q, want %q", got.Jobs[1].Label, "test (ubuntu-latest)")
	}
}

func TestSQLiteStore_GetRun_NotFound(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.GetRun("no-such-run"); err == nil {
		t.Error("GetRun() error = nil, want not-found error")
	}
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	s := openTestStore(t)

	for i, status := range []string{"succeeded", "failed", "succeeded"} {
		rec := &RunRecord{
			Pipeline:  "CI",
			EventKind: "push",
			Status:    status,
			StartTime: time.Now().UTC(),
		}
		if i == 1 {
			rec.Pipeline = "Release"
		}
		if err := s.SaveRun(rec); err != nil {
			t.Fatalf("SaveRun() error = %v", err)
		}
		// Keep created_at timestamps distinct
		time.Sleep(10 * time.Millisecond)
	}

	all, err := s.ListRuns("", 0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}
	// Newest first
	if all[0].Status != "succeeded" || all[2].Status != "succeeded" {
		t.Errorf("unexpected ordering: %v, %v, %v", all[0].Status, all[1].Status, all[2].Status)
	}
	if all[1].Pipeline != "Release" {
		t.Errorf("all[1].Pipeline = %q, want %q", all[1].Pipeline, "Release")
	}

	ci, err := s.ListRuns("CI", 0)
	if err != nil {
		t.Fatalf("ListRuns(CI) error = %v", err)
	}
	if len(ci) != 2 {
		t.Errorf("len(ci) = %d, want 2", len(ci))
	}

	limited, err := s.ListRuns("", 1)
	if err != nil {
		t.Fatalf("ListRuns(limit=1) error = %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("len(limited) = %d, want 1", len(limited))
	}
}

func TestFromResult(t *testing.T) {
	result := &core.RunResult{
		Pipeline:    "CI",
		RunID:       "run-123",
		EventKind:   "pull_request",
		EventBranch: "master",
		Status:      core.StatusFailed,
		StartTime:   time.Now(),
		Duration:    5 * time.Second,
		Jobs: []core.JobResult{
			{Name: "lint", Label: "lint", Status: core.StatusSucceeded, Duration: 2 * time.Second},
			{Name: "test", Label: "test (macos-latest)", Status: core.StatusFailed, Duration: 3 * time.Second, Error: "exit status 1"},
		},
	}
	result.ComputeSummary()

	rec := FromResult(result)

	if rec.ID != "run-123" {
		t.Errorf("ID = %q, want %q", rec.ID, "run-123")
	}
	if rec.Status != "failed" {
		t.Errorf("Status = %q, want %q", rec.Status, "failed")
	}
	if rec.DurationMs != 5000 {
		t.Errorf("DurationMs = %d, want 5000", rec.DurationMs)
	}
	if rec.SucceededJobs != 1 || rec.FailedJobs != 1 {
		t.Errorf("summary = %d/%d, want 1/1", rec.SucceededJobs, rec.FailedJobs)
	}
	if rec.Jobs[1].Error != "exit status 1" {
		t.Errorf("Jobs[1].Error = %q, want %q", rec.Jobs[1].Error, "exit status 1")
	}
}
