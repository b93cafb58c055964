package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	// Check sampling defaults
	if cfg.Sampling.Seed != 0xDEAFBEEF {
		t.Errorf("Sampling.Seed = %#x, want 0xDEAFBEEF", cfg.Sampling.Seed)
	}
	if cfg.Sampling.Rounds != 1_000_000 {
		t.Errorf("Sampling.Rounds = %d, want 1000000", cfg.Sampling.Rounds)
	}
	if cfg.Sampling.Workers != 0 {
		t.Errorf("Sampling.Workers = %d, want 0", cfg.Sampling.Workers)
	}
	if cfg.Sampling.Tolerance != 1e-3 {
		t.Errorf("Sampling.Tolerance = %v, want 0.001", cfg.Sampling.Tolerance)
	}

	// Check cache defaults
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be false by default")
	}
	if cfg.Cache.Dir != ".mut/cache" {
		t.Errorf("Cache.Dir = %s, want .mut/cache", cfg.Cache.Dir)
	}
	if cfg.Cache.TTL != 24 {
		t.Errorf("Cache.TTL = %d, want 24", cfg.Cache.TTL)
	}

	// Check output defaults
	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %s, want text", cfg.Output.Format)
	}
	if !cfg.Output.Color {
		t.Error("Output.Color should be true by default")
	}
	if cfg.Output.Precision != 6 {
		t.Errorf("Output.Precision = %d, want 6", cfg.Output.Precision)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "mut.toml")

	content := `
[sampling]
seed = 7
rounds = 5000
workers = 2

[cache]
enabled = true
ttl = 2

[output]
format = "json"
color = false
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Sampling.Seed != 7 {
		t.Errorf("Sampling.Seed = %d, want 7", cfg.Sampling.Seed)
	}
	if cfg.Sampling.Rounds != 5000 {
		t.Errorf("Sampling.Rounds = %d, want 5000", cfg.Sampling.Rounds)
	}
	if cfg.Sampling.Workers != 2 {
		t.Errorf("Sampling.Workers = %d, want 2", cfg.Sampling.Workers)
	}
	if cfg.Sampling.Tolerance != 1e-3 {
		t.Errorf("Sampling.Tolerance = %v, want default 0.001", cfg.Sampling.Tolerance)
	}
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be true")
	}
	if cfg.Cache.TTL != 2 {
		t.Errorf("Cache.TTL = %d, want 2", cfg.Cache.TTL)
	}
	if cfg.Cache.Dir != ".mut/cache" {
		t.Errorf("Cache.Dir = %s, want default .mut/cache", cfg.Cache.Dir)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %s, want json", cfg.Output.Format)
	}
	if cfg.Output.Color {
		t.Error("Output.Color should be false")
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "mut.yaml")

	content := `
sampling:
  rounds: 250
  tolerance: 0.01
output:
  format: markdown
  precision: 3
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Sampling.Rounds != 250 {
		t.Errorf("Sampling.Rounds = %d, want 250", cfg.Sampling.Rounds)
	}
	if cfg.Sampling.Tolerance != 0.01 {
		t.Errorf("Sampling.Tolerance = %v, want 0.01", cfg.Sampling.Tolerance)
	}
	if cfg.Output.Format != "markdown" {
		t.Errorf("Output.Format = %s, want markdown", cfg.Output.Format)
	}
	if cfg.Output.Precision != 3 {
		t.Errorf("Output.Precision = %d, want 3", cfg.Output.Precision)
	}
}

func TestLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "mut.json")

	content := `{"sampling": {"seed": 12, "workers": 4}, "output": {"format": "toon"}}`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Sampling.Seed != 12 {
		t.Errorf("Sampling.Seed = %d, want 12", cfg.Sampling.Seed)
	}
	if cfg.Sampling.Workers != 4 {
		t.Errorf("Sampling.Workers = %d, want 4", cfg.Sampling.Workers)
	}
	if cfg.Output.Format != "toon" {
		t.Errorf("Output.Format = %s, want toon", cfg.Output.Format)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero rounds", func(c *Config) { c.Sampling.Rounds = 0 }, true},
		{"negative workers", func(c *Config) { c.Sampling.Workers = -1 }, true},
		{"max workers", func(c *Config) { c.Sampling.Workers = MaxWorkers }, false},
		{"too many workers", func(c *Config) { c.Sampling.Workers = MaxWorkers + 1 }, true},
		{"zero tolerance", func(c *Config) { c.Sampling.Tolerance = 0 }, true},
		{"tolerance of one", func(c *Config) { c.Sampling.Tolerance = 1 }, true},
		{"unknown format", func(c *Config) { c.Output.Format = "xml" }, true},
		{"md alias", func(c *Config) { c.Output.Format = "md" }, false},
		{"precision too large", func(c *Config) { c.Output.Precision = 30 }, true},
		{"enabled cache without dir", func(c *Config) { c.Cache.Enabled = true; c.Cache.Dir = "" }, true},
		{"disabled cache without dir", func(c *Config) { c.Cache.Dir = "" }, false},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigSearchesStandardLocations(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, ".mut"), 0755); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(tmpDir, ".mut", "mut.toml")
	if err := os.WriteFile(configPath, []byte("[sampling]\nrounds = 42\n"), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := LoadConfig(WithDir(tmpDir))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if result.Source != configPath {
		t.Errorf("Source = %q, want %q", result.Source, configPath)
	}
	if result.Config.Sampling.Rounds != 42 {
		t.Errorf("Sampling.Rounds = %d, want 42", result.Config.Sampling.Rounds)
	}
}

func TestLoadConfigDefaultsWhenNothingFound(t *testing.T) {
	result, err := LoadConfig(WithDir(t.TempDir()))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if result.Source != "" {
		t.Errorf("Source = %q, want empty", result.Source)
	}
	if result.Config.Sampling.Rounds != DefaultConfig().Sampling.Rounds {
		t.Error("expected default configuration")
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "mut.toml")
	if err := os.WriteFile(configPath, []byte("[sampling]\nrounds = -5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(WithPath(configPath)); err == nil {
		t.Error("LoadConfig() should reject negative rounds")
	}
}

func TestLoadConfigOverridesBeforeValidation(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "mut.toml")
	if err := os.WriteFile(configPath, []byte("[output]\nformat = \"xml\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(WithPath(configPath)); err == nil {
		t.Fatal("LoadConfig() should reject an unknown format")
	}

	result, err := LoadConfig(WithPath(configPath), WithOverrides(func(c *Config) {
		c.Output.Format = "json"
	}))
	if err != nil {
		t.Fatalf("LoadConfig() with override error: %v", err)
	}
	if result.Config.Output.Format != "json" {
		t.Errorf("Output.Format = %q, want json", result.Config.Output.Format)
	}
}
