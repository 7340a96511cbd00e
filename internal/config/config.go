// Package config holds the immutable run configuration. It is constructed
// once at startup from an optional YAML file plus environment overrides,
// validated before the workflow begins, and passed explicitly into the
// driver. No component reads ambient settings mid-run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all codeforge configuration.
type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Workflow WorkflowConfig `yaml:"workflow"`
	Sandbox  SandboxConfig  `yaml:"sandbox"`
	Web      WebConfig      `yaml:"web"`
	History  HistoryConfig  `yaml:"history"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LLMConfig configures the completion oracle.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini, openai
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// WorkflowConfig configures the fix loop.
type WorkflowConfig struct {
	MaxIterations int     `yaml:"max_iterations"`
	Temperature   float64 `yaml:"temperature"`
}

// SandboxConfig configures candidate execution.
type SandboxConfig struct {
	// Timeout bounds a single candidate execution. Empty or "0" disables
	// the limit, in which case an infinite-loop candidate blocks the run.
	Timeout        string `yaml:"timeout"`
	MaxOutputBytes int64  `yaml:"max_output_bytes"`
}

// WebConfig configures the web UI server.
type WebConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// HistoryConfig configures run persistence.
type HistoryConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level"` // DEBUG, INFO, WARNING, ERROR
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"DEBUG", "INFO", "WARNING", "ERROR"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "gemini",
			Timeout:  "2m",
		},
		Workflow: WorkflowConfig{
			MaxIterations: 5,
			Temperature:   0.7,
		},
		Sandbox: SandboxConfig{
			Timeout:        "30s",
			MaxOutputBytes: 1 << 20,
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 8080,
		},
		History: HistoryConfig{
			DatabasePath: defaultDatabasePath(),
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}

func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "codeforge.db"
	}
	return filepath.Join(home, ".codeforge", "history.db")
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "codeforge.yaml"
	}
	return filepath.Join(home, ".codeforge", "config.yaml")
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "openai"
	}

	if model := os.Getenv("CODEFORGE_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if temp := os.Getenv("CODEFORGE_TEMPERATURE"); temp != "" {
		if v, err := strconv.ParseFloat(temp, 64); err == nil {
			c.Workflow.Temperature = v
		}
	}
	if iters := os.Getenv("CODEFORGE_MAX_ITERATIONS"); iters != "" {
		if v, err := strconv.Atoi(iters); err == nil {
			c.Workflow.MaxIterations = v
		}
	}
	if level := os.Getenv("CODEFORGE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if path := os.Getenv("CODEFORGE_DB"); path != "" {
		c.History.DatabasePath = path
	}
}

// GetLLMTimeout returns the oracle call timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 2 * time.Minute
	}
	return d
}

// GetSandboxTimeout returns the per-execution timeout. Zero disables it.
func (c *Config) GetSandboxTimeout() time.Duration {
	if c.Sandbox.Timeout == "" || c.Sandbox.Timeout == "0" {
		return 0
	}
	d, err := time.ParseDuration(c.Sandbox.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// Validate validates the configuration. Invalid values fail fast at
// startup, before the loop begins.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key not configured (set GEMINI_API_KEY or OPENAI_API_KEY)")
	}
	if c.LLM.Provider != "gemini" && c.LLM.Provider != "openai" {
		return fmt.Errorf("invalid LLM provider: %s (valid: gemini, openai)", c.LLM.Provider)
	}

	if c.Workflow.Temperature < 0.0 || c.Workflow.Temperature > 1.0 {
		return fmt.Errorf("temperature must be between 0.0 and 1.0, got %g", c.Workflow.Temperature)
	}
	if c.Workflow.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1, got %d", c.Workflow.MaxIterations)
	}

	validLevel := false
	for _, l := range ValidLogLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}

	return nil
}
