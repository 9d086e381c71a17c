// Package config assembles a run configuration from defaults, an optional
// YAML run file, CLI flags, and the .env credential.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// APIKeyEnv is the environment variable carrying the Gemini credential.
const APIKeyEnv = "API_KEY"

// Duration wraps time.Duration so YAML run files can say "90s" or "3m".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config is one run's full configuration. YAML keys mirror the CLI flags.
type Config struct {
	Entity        string `yaml:"entity"`
	ContextLimit  int    `yaml:"context_limit"`
	InputFolder   string `yaml:"input_folder"`
	OutputFolder  string `yaml:"output_folder"`
	DiscardFolder string `yaml:"discard_folder"`

	Augment    bool     `yaml:"augment"`
	Transforms []string `yaml:"transforms"`
	Seed       int64    `yaml:"seed"`

	Parallel        int      `yaml:"parallel"`
	ContextParallel int      `yaml:"context_parallel"`
	CallTimeout     Duration `yaml:"call_timeout"`
	MaxAttempts     int      `yaml:"max_attempts"`
	RetryPause      Duration `yaml:"retry_pause"`
	PartialReport   bool     `yaml:"partial_report"`

	DescribeModel  string `yaml:"describe_model"`
	SynthesisModel string `yaml:"synthesis_model"`
	JudgeModel     string `yaml:"judge_model"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// APIKey comes from the environment only, never from the run file.
	APIKey string `yaml:"-"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		ContextLimit:    3,
		InputFolder:     "input_images",
		OutputFolder:    "output_images",
		DiscardFolder:   "discarded_images",
		Transforms:      []string{"mirror"},
		Parallel:        1,
		ContextParallel: 1,
		CallTimeout:     Duration(2 * time.Minute),
		MaxAttempts:     3,
		RetryPause:      Duration(3 * time.Second),
		PartialReport:   true,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// LoadFile overlays a YAML run file on the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadCredential resolves the API key from .env (if present) and the process
// environment. A missing credential is the one misconfiguration that must
// abort before any image is processed.
func (c *Config) LoadCredential() error {
	_ = godotenv.Load() // .env is optional; the real environment wins
	c.APIKey = os.Getenv(APIKeyEnv)
	if c.APIKey == "" {
		return fmt.Errorf("config: %s not set; add it to the environment or a .env file", APIKeyEnv)
	}
	return nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Entity == "" {
		return fmt.Errorf("config: entity is required")
	}
	if c.ContextLimit < 1 {
		return fmt.Errorf("config: context_limit must be >= 1, got %d", c.ContextLimit)
	}
	if c.Parallel < 1 {
		return fmt.Errorf("config: parallel must be >= 1, got %d", c.Parallel)
	}
	if c.ContextParallel < 1 {
		return fmt.Errorf("config: context_parallel must be >= 1, got %d", c.ContextParallel)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("config: max_attempts must be >= 1, got %d", c.MaxAttempts)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("config: log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}
