package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabasePath != "spark.db" || cfg.ListenAddr != ":8587" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Playbook.HighPain != 0.7 {
		t.Errorf("playbook defaults: %+v", cfg.Playbook)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spark.yaml")
	content := `
database_path: /tmp/other.db
generator:
  provider: mock
rhythm_tick: 30s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabasePath != "/tmp/other.db" {
		t.Errorf("database_path: %q", cfg.DatabasePath)
	}
	if cfg.Generator.Provider != "mock" {
		t.Errorf("provider: %q", cfg.Generator.Provider)
	}
	// Untouched fields keep their defaults.
	if cfg.Generator.Model != "llama3.2" {
		t.Errorf("model default lost: %q", cfg.Generator.Model)
	}
	if cfg.RhythmTickInterval() != 30*time.Second {
		t.Errorf("rhythm tick: %v", cfg.RhythmTickInterval())
	}
}

func TestEnvOverridesWin(t *testing.T) {
	t.Setenv("SPARK_DB", "/env/spark.db")
	t.Setenv("SPARK_GENERATOR", "mock")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabasePath != "/env/spark.db" {
		t.Errorf("env db override: %q", cfg.DatabasePath)
	}
	if cfg.Generator.Provider != "mock" {
		t.Errorf("env provider override: %q", cfg.Generator.Provider)
	}
}

func TestRhythmTickBadValueFallsBack(t *testing.T) {
	cfg := Default()
	cfg.RhythmTick = "sideways"
	if cfg.RhythmTickInterval() != 5*time.Minute {
		t.Errorf("fallback: %v", cfg.RhythmTickInterval())
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("{{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
