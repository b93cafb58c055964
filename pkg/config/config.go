package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for mut.
type Config struct {
	// Sampling run settings
	Sampling SamplingConfig `koanf:"sampling" toml:"sampling"`

	// Histogram cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// SamplingConfig controls the sample command and the sample_distribution tool.
type SamplingConfig struct {
	Seed      uint64  `koanf:"seed" toml:"seed"`
	Rounds    int     `koanf:"rounds" toml:"rounds"`
	Workers   int     `koanf:"workers" toml:"workers"` // 0 means NumCPU
	Tolerance float64 `koanf:"tolerance" toml:"tolerance"`
}

// CacheConfig controls reuse of sampling histograms across runs.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format    string `koanf:"format" toml:"format"` // text, json, markdown, toon, yaml
	Color     bool   `koanf:"color" toml:"color"`
	Precision int    `koanf:"precision" toml:"precision"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Sampling: SamplingConfig{
			Seed:      0xDEAFBEEF,
			Rounds:    1_000_000,
			Workers:   0,
			Tolerance: 1e-3,
		},
		Cache: CacheConfig{
			Enabled: false,
			Dir:     ".mut/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format:    "text",
			Color:     true,
			Precision: 6,
		},
	}
}

// MaxWorkers bounds sampling.workers. Each worker owns a sampler and a
// histogram, so the count drives memory use.
const MaxWorkers = 1024

var validFormats = map[string]bool{
	"text":     true,
	"json":     true,
	"markdown": true,
	"md":       true,
	"toon":     true,
	"yaml":     true,
	"yml":      true,
}

// Validate reports every invalid field in one error.
func (c *Config) Validate() error {
	var errs []error
	if c.Sampling.Rounds <= 0 {
		errs = append(errs, fmt.Errorf("sampling.rounds must be positive (got %d)", c.Sampling.Rounds))
	}
	if c.Sampling.Workers < 0 || c.Sampling.Workers > MaxWorkers {
		errs = append(errs, fmt.Errorf("sampling.workers must be within [0,%d] (got %d)", MaxWorkers, c.Sampling.Workers))
	}
	if !(c.Sampling.Tolerance > 0 && c.Sampling.Tolerance < 1) {
		errs = append(errs, fmt.Errorf("sampling.tolerance must be within (0,1) (got %v)", c.Sampling.Tolerance))
	}
	if c.Cache.Enabled && c.Cache.Dir == "" {
		errs = append(errs, errors.New("cache.dir must be set when the cache is enabled"))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be positive (got %d)", c.Cache.TTL))
	}
	if !validFormats[strings.ToLower(c.Output.Format)] {
		errs = append(errs, fmt.Errorf("output.format %q is not one of text, json, markdown, toon, yaml", c.Output.Format))
	}
	if c.Output.Precision < 0 || c.Output.Precision > 17 {
		errs = append(errs, fmt.Errorf("output.precision must be within [0,17] (got %d)", c.Output.Precision))
	}
	return errors.Join(errs...)
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// configNames are searched, in order, in each of searchDirs.
var (
	configNames = []string{
		"mut.toml",
		"mut.yaml",
		"mut.yml",
		"mut.json",
		".mut.toml",
		".mut.yaml",
		".mut.yml",
		".mut.json",
	}
	searchDirs = []string{".", ".mut"}
)

// LoadResult is a loaded configuration and the file it came from.
// Source is empty when defaults were used.
type LoadResult struct {
	Config *Config
	Source string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

type loadOptions struct {
	path      string
	dir       string
	overrides []func(*Config)
}

// WithPath loads exactly this file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithDir searches relative to dir instead of the working directory.
func WithDir(dir string) LoadOption {
	return func(o *loadOptions) {
		o.dir = dir
	}
}

// WithOverrides applies fn to the loaded configuration before it is
// validated, so a flag can replace an invalid file value.
func WithOverrides(fn func(*Config)) LoadOption {
	return func(o *loadOptions) {
		o.overrides = append(o.overrides, fn)
	}
}

// LoadConfig loads and validates configuration. With WithPath the file
// must exist; otherwise the standard locations are searched and defaults
// are used when none is found.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := &loadOptions{dir: "."}
	for _, opt := range opts {
		opt(o)
	}

	source := o.path
	if source == "" {
		source = findConfig(o.dir)
	}

	cfg := DefaultConfig()
	if source != "" {
		loaded, err := Load(source)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", source, err)
		}
		cfg = loaded
	}
	for _, fn := range o.overrides {
		fn(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &LoadResult{Config: cfg, Source: source}, nil
}

func findConfig(base string) string {
	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(base, dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}
