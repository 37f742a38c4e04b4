package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestExampleConfigParses(t *testing.T) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(ExampleConfig), &cfg); err != nil {
		t.Fatalf("unmarshal example config: %v", err)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Fatalf("unexpected embedding model: %q", cfg.Embedding.Model)
	}
	if !Enabled(cfg.Parsers.Slack) {
		t.Fatal("expected slack parser enabled in example config")
	}
}

func TestLoadAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("store:\n  path: test.db\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg.WithDefaults()
	if cfg.Query.DefaultLimit != 50 {
		t.Fatalf("expected default limit 50, got %d", cfg.Query.DefaultLimit)
	}
	if cfg.Query.Hybrid.VectorWeight != 0.5 || cfg.Query.Hybrid.TextWeight != 0.5 {
		t.Fatalf("unexpected hybrid defaults: %+v", cfg.Query.Hybrid)
	}
}

func TestParsersEnabledDefaultsToTrue(t *testing.T) {
	var p ParsersConfig
	if !Enabled(p.Slack) {
		t.Fatal("expected unset toggle to default to enabled")
	}
}
