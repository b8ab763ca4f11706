package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "conveyor.yaml")

	content := `
parallelism: 4
stopOnFail: true
outputDir: out
historyDb: history.db
secretsFile: secrets.yaml
env:
  CI: "true"
  REGISTRY: docker.io
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Parallelism != 4 {
		t.Errorf("expected parallelism 4, got %d", cfg.Parallelism)
	}
	if !cfg.StopOnFail {
		t.Error("expected stopOnFail true")
	}
	if cfg.OutputDir != "out" {
		t.Errorf("expected outputDir out, got %s", cfg.OutputDir)
	}
	if cfg.Env["CI"] != "true" || cfg.Env["REGISTRY"] != "docker.io" {
		t.Errorf("expected env {CI:true, REGISTRY:docker.io}, got %v", cfg.Env)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/conveyor.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "conveyor.yaml")

	content := `env: [invalid yaml`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoad_EmptyConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "conveyor.yaml")

	if err := os.WriteFile(configPath, []byte(``), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Parallelism != 0 {
		t.Errorf("expected parallelism 0, got %d", cfg.Parallelism)
	}
}

func TestLoadFromDir_ConveyorYaml(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "conveyor.yaml")

	content := `parallelism: 2`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Parallelism != 2 {
		t.Errorf("expected parallelism 2, got %d", cfg.Parallelism)
	}
}

func TestLoadFromDir_NoConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Should return empty config
	if cfg.OutputDir != "" {
		t.Errorf("expected empty outputDir, got %s", cfg.OutputDir)
	}
}

func TestLoadFromDir_PrefersYamlOverYml(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "conveyor.yaml"), []byte(`parallelism: 1`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "conveyor.yml"), []byte(`parallelism: 9`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Should prefer conveyor.yaml
	if cfg.Parallelism != 1 {
		t.Errorf("expected parallelism 1 (from conveyor.yaml), got %d", cfg.Parallelism)
	}
}

func TestLoadSecrets(t *testing.T) {
	dir := t.TempDir()
	secretsPath := filepath.Join(dir, "secrets.yaml")

	content := `
DEPLOY_TOKEN: s3cret
API_KEY: abc123
`
	if err := os.WriteFile(secretsPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	secrets, err := LoadSecrets(secretsPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if secrets["DEPLOY_TOKEN"] != "s3cret" {
		t.Errorf("expected DEPLOY_TOKEN s3cret, got %q", secrets["DEPLOY_TOKEN"])
	}
	if secrets["API_KEY"] != "abc123" {
		t.Errorf("expected API_KEY abc123, got %q", secrets["API_KEY"])
	}
}

func TestLoadSecrets_MissingFile(t *testing.T) {
	secrets, err := LoadSecrets("/nonexistent/secrets.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(secrets) != 0 {
		t.Errorf("expected empty secrets, got %v", secrets)
	}
}

func TestLoadSecrets_EmptyPath(t *testing.T) {
	secrets, err := LoadSecrets("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(secrets) != 0 {
		t.Errorf("expected empty secrets, got %v", secrets)
	}
}
