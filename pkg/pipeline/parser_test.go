package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYAML = `name: CI
on:
  push:
    branches: [master]
  pull_request:
jobs:
  lint:
    runs-on: ubuntu-latest
    steps:
      - name: fmt-check
        run: cargo fmt -- --check
      - name: clippy-check
        run: cargo clippy -- -D warnings
  test:
    runs-on: ${{ matrix.os }}
    strategy:
      matrix:
        os: [ubuntu-latest, windows-latest, macos-latest]
    steps:
      - uses: actions/checkout
      - name: build
        run: cargo build --verbose
      - name: test
        run: cargo test --verbose
`

func TestParse_Sample(t *testing.T) {
	p, err := Parse([]byte(sampleYAML), "ci.yaml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if p.Name != "CI" {
		t.Errorf("Name = %q, want %q", p.Name, "CI")
	}

	if len(p.Triggers) != 2 {
		t.Fatalf("len(Triggers) = %d, want 2", len(p.Triggers))
	}
	if p.Triggers[0].Kind != "push" || len(p.Triggers[0].Branches) != 1 || p.Triggers[0].Branches[0] != "master" {
		t.Errorf("Triggers[0] = %+v, want push on master", p.Triggers[0])
	}
	if p.Triggers[1].Kind != "pull_request" || len(p.Triggers[1].Branches) != 0 {
		t.Errorf("Triggers[1] = %+v, want pull_request with no filter", p.Triggers[1])
	}

	if len(p.Jobs) != 2 {
		t.Fatalf("len(Jobs) = %d, want 2", len(p.Jobs))
	}

	lint := p.Jobs[0]
	if lint.Name != "lint" {
		t.Errorf("Jobs[0].Name = %q, want %q (declaration order)", lint.Name, "lint")
	}
	if lint.Matrixed() {
		t.Error("lint.Matrixed() = true, want false")
	}
	if len(lint.Steps) != 2 {
		t.Fatalf("len(lint.Steps) = %d, want 2", len(lint.Steps))
	}
	if lint.Steps[0].Name != "fmt-check" {
		t.Errorf("lint.Steps[0].Name = %q, want %q", lint.Steps[0].Name, "fmt-check")
	}

	test := p.Jobs[1]
	if !test.Matrixed() {
		t.Fatal("test.Matrixed() = false, want true")
	}
	if len(test.Matrix.Axes) != 1 || test.Matrix.Axes[0].Name != "os" {
		t.Fatalf("test.Matrix.Axes = %+v, want single os axis", test.Matrix.Axes)
	}
	if got := len(test.Matrix.Axes[0].Values); got != 3 {
		t.Errorf("len(os values) = %d, want 3", got)
	}
	if test.Steps[0].Uses != "actions/checkout" {
		t.Errorf("test.Steps[0].Uses = %q, want %q", test.Steps[0].Uses, "actions/checkout")
	}
}

func TestParse_TriggerForms(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want []Trigger
	}{
		{
			"scalar",
			"on: push\njobs:\n  a:\n    steps:\n      - run: true\n",
			[]Trigger{{Kind: "push"}},
		},
		{
			"sequence",
			"on: [push, pull_request]\njobs:\n  a:\n    steps:\n      - run: true\n",
			[]Trigger{{Kind: "push"}, {Kind: "pull_request"}},
		},
		{
			"mapping without filter",
			"on:\n  pull_request:\njobs:\n  a:\n    steps:\n      - run: true\n",
			[]Trigger{{Kind: "pull_request"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse([]byte(tt.yaml), "test.yaml")
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(p.Triggers) != len(tt.want) {
				t.Fatalf("len(Triggers) = %d, want %d", len(p.Triggers), len(tt.want))
			}
			for i, tr := range p.Triggers {
				if tr.Kind != tt.want[i].Kind {
					t.Errorf("Triggers[%d].Kind = %q, want %q", i, tr.Kind, tt.want[i].Kind)
				}
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{"empty file", "", "empty pipeline file"},
		{"no jobs", "name: CI\non: push\n", "declares no jobs"},
		{"job without steps", "jobs:\n  build:\n    runs-on: linux\n", "declares no steps"},
		{
			"step without command",
			"jobs:\n  build:\n    steps:\n      - name: mystery\n",
			"neither run nor uses",
		},
		{
			"step with both commands",
			"jobs:\n  build:\n    steps:\n      - run: make\n        uses: actions/checkout\n",
			"both run and uses",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml), "test.yaml")
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want containing %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestParse_StepFields(t *testing.T) {
	yaml := `jobs:
  deploy:
    runs-on: ubuntu-latest
    env:
      STAGE: prod
    steps:
      - name: upload
        run: ./upload.sh
        continue-on-error: true
        timeout-minutes: 5
        env:
          TOKEN: ${{ secrets.DEPLOY_TOKEN }}
`
	p, err := Parse([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	job := p.Jobs[0]
	if job.Env["STAGE"] != "prod" {
		t.Errorf("job.Env[STAGE] = %q, want %q", job.Env["STAGE"], "prod")
	}

	step := job.Steps[0]
	if !step.ContinueOnError {
		t.Error("ContinueOnError = false, want true")
	}
	if step.TimeoutMinutes != 5 {
		t.Errorf("TimeoutMinutes = %d, want 5", step.TimeoutMinutes)
	}
	if step.Env["TOKEN"] != "${{ secrets.DEPLOY_TOKEN }}" {
		t.Errorf("step.Env[TOKEN] = %q, want the raw secret reference", step.Env["TOKEN"])
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ci.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if p.SourcePath != path {
		t.Errorf("SourcePath = %q, want %q", p.SourcePath, path)
	}
}

func TestParseFile_Missing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("ParseFile() error = nil, want error for missing file")
	}
}

func TestStep_Describe(t *testing.T) {
	tests := []struct {
		step Step
		want string
	}{
		{Step{Name: "build", Run: "make"}, "build"},
		{Step{Uses: "actions/checkout"}, "actions/checkout"},
		{Step{Run: "make test"}, "make test"},
	}
	for _, tt := range tests {
		if got := tt.step.Describe(); got != tt.want {
			t.Errorf("Describe() = %q, want %q", got, tt.want)
		}
	}
}
