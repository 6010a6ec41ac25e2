package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents testscan configuration options
type Config struct {
	// RunnerPath is the test-runner executable to launch
	RunnerPath string `yaml:"runner_path"`

	// RunnerArgs are the arguments passed on a normal launch
	RunnerArgs []string `yaml:"runner_args"`

	// DebugArgs are appended on a debug launch so a debugger can attach
	DebugArgs []string `yaml:"debug_args"`

	// WorkDir is the working directory for the runner (empty = inherit)
	WorkDir string `yaml:"work_dir"`

	// Timeout is the maximum execution time for one run
	Timeout time.Duration `yaml:"timeout"`

	// LogDir is the directory where run logs are written
	LogDir string `yaml:"log_dir"`

	// HistoryPath is the path to the run-history database
	HistoryPath string `yaml:"history_path"`

	// SummaryPath is where the last-run summary file is written
	SummaryPath string `yaml:"summary_path"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		RunnerPath:  "mocha-worker",
		RunnerArgs:  []string{"--reporter", "json-stream"},
		DebugArgs:   []string{"--inspect-brk=9229"},
		Timeout:     30 * time.Minute,
		LogDir:      filepath.Join(".testscan", "logs"),
		HistoryPath: filepath.Join(".testscan", "history.db"),
		SummaryPath: filepath.Join(".testscan", "last-run.json"),
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
// File values are merged over defaults; absent keys keep their defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Temporary struct so the timeout can be written as a duration string
	type yamlConfig struct {
		RunnerPath  string   `yaml:"runner_path"`
		RunnerArgs  []string `yaml:"runner_args"`
		DebugArgs   []string `yaml:"debug_args"`
		WorkDir     string   `yaml:"work_dir"`
		Timeout     string   `yaml:"timeout"`
		LogDir      string   `yaml:"log_dir"`
		HistoryPath string   `yaml:"history_path"`
		SummaryPath string   `yaml:"summary_path"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.RunnerPath != "" {
		cfg.RunnerPath = yamlCfg.RunnerPath
	}
	if yamlCfg.RunnerArgs != nil {
		cfg.RunnerArgs = yamlCfg.RunnerArgs
	}
	if yamlCfg.DebugArgs != nil {
		cfg.DebugArgs = yamlCfg.DebugArgs
	}
	if yamlCfg.WorkDir != "" {
		cfg.WorkDir = yamlCfg.WorkDir
	}
	if yamlCfg.Timeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format %q: %w", yamlCfg.Timeout, err)
		}
		cfg.Timeout = timeout
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.HistoryPath != "" {
		cfg.HistoryPath = yamlCfg.HistoryPath
	}
	if yamlCfg.SummaryPath != "" {
		cfg.SummaryPath = yamlCfg.SummaryPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.RunnerPath == "" {
		return fmt.Errorf("runner_path must not be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}
