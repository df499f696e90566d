package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultThreads is the worker count used when threading is requested
// without an explicit count.
const DefaultThreads = 5

// Config holds all configuration for the search tool.
type Config struct {
	Index   IndexConfig   `yaml:"index"`
	Workers WorkersConfig `yaml:"workers"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// IndexConfig holds indexing configuration.
type IndexConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
	Stemming bool     `yaml:"stemming"`
	Progress bool     `yaml:"progress"` // progress bar when stderr is a terminal
}

// WorkersConfig holds worker pool configuration.
type WorkersConfig struct {
	Threads int `yaml:"threads"`
}

// OutputConfig holds the default export file names used when an export flag
// is given without a path.
type OutputConfig struct {
	Index     string `yaml:"index"`
	Results   string `yaml:"results"`
	Locations string `yaml:"locations"`
	DB        string `yaml:"db"`
	Metrics   string `yaml:"metrics"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			Includes: []string{"**/*.txt", "**/*.text"},
			Excludes: []string{},
			Stemming: true,
			Progress: true,
		},
		Workers: WorkersConfig{
			Threads: DefaultThreads,
		},
		Output: OutputConfig{
			Index:     "index.json",
			Results:   "results.json",
			Locations: "locations.json",
			DB:        "index.db",
			Metrics:   "metrics.prom",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file, then applies SEARCH_*
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for search.yaml,
// then .search/config.yaml).
func LoadFromDir(dir string) (*Config, error) {
	for _, path := range []string{
		filepath.Join(dir, "search.yaml"),
		ConfigPath(dir),
	} {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigPath returns the path of the per-directory config file.
func ConfigPath(dir string) string {
	return filepath.Join(dir, ".search", "config.yaml")
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports settings the tool cannot run with.
func (c *Config) Validate() error {
	if c.Workers.Threads < 1 {
		return fmt.Errorf("workers.threads must be at least 1, got %d", c.Workers.Threads)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SEARCH_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers.Threads = n
		}
	}
	if v := os.Getenv("SEARCH_STEMMING"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Index.Stemming = b
		}
	}
	if v := os.Getenv("SEARCH_PROGRESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Index.Progress = b
		}
	}
	if v := os.Getenv("SEARCH_INCLUDES"); v != "" {
		cfg.Index.Includes = splitList(v)
	}
	if v := os.Getenv("SEARCH_EXCLUDES"); v != "" {
		cfg.Index.Excludes = splitList(v)
	}
	if v := os.Getenv("SEARCH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SEARCH_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
