// Package config provides hierarchical configuration loading for AgentPipe.
// Precedence: defaults < YAML file < environment variables. The result is a
// plain value consumed read-only at interpreter construction.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentpipe/interpreter"
)

// Agent holds the execution backend tunables.
type Agent struct {
	Model         string        `yaml:"model"`
	ContextWindow int           `yaml:"context_window"`
	MaxTokens     int           `yaml:"max_tokens"`
	Temperature   float64       `yaml:"temperature"`
	Timeout       time.Duration `yaml:"timeout"`
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
	APIBase       string        `yaml:"api_base"`
	APIKey        string        `yaml:"api_key"`
}

// System holds system-wide settings.
type System struct {
	LogLevel string `yaml:"log_level"`
	LogDir   string `yaml:"log_dir"`
	DataDir  string `yaml:"data_dir"`
}

// Config is the effective application configuration.
type Config struct {
	Agent  Agent  `yaml:"agent"`
	System System `yaml:"system"`
}

// Defaults returns a Config with sensible default values for local
// development: a locally hosted coder model behind an OpenAI-compatible
// endpoint.
func Defaults() Config {
	return Config{
		Agent: Agent{
			Model:         "qwen2.5-coder:14b-instruct-q4_K_M",
			ContextWindow: 32000,
			MaxTokens:     4096,
			Temperature:   0.7,
			Timeout:       5 * time.Minute,
			RetryAttempts: 3,
			RetryDelay:    time.Second,
			APIBase:       "http://localhost:11434/v1",
		},
		System: System{
			LogLevel: "info",
			LogDir:   "logs",
			DataDir:  "data",
		},
	}
}

// Load builds the effective configuration: defaults, overlaid with the YAML
// file at path (skipped when path is empty), overlaid with environment
// variables.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overlays AGENTPIPE_* environment variables. Unparsable numeric
// values are ignored in favor of the current value.
func applyEnv(cfg *Config) {
	if v := os.Getenv("AGENTPIPE_MODEL"); v != "" {
		cfg.Agent.Model = v
	}
	if v := os.Getenv("AGENTPIPE_API_BASE"); v != "" {
		cfg.Agent.APIBase = v
	}
	if v := os.Getenv("AGENTPIPE_API_KEY"); v != "" {
		cfg.Agent.APIKey = v
	}
	if v := os.Getenv("AGENTPIPE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Agent.Timeout = d
		}
	}
	if v := os.Getenv("AGENTPIPE_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Agent.MaxTokens = n
		}
	}
	if v := os.Getenv("AGENTPIPE_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Agent.Temperature = f
		}
	}
	if v := os.Getenv("AGENTPIPE_LOG_LEVEL"); v != "" {
		cfg.System.LogLevel = v
	}
}

// Interpreter maps the agent section onto an immutable interpreter Config.
func (c Config) Interpreter() interpreter.Config {
	return interpreter.Config{
		Model:         c.Agent.Model,
		Mode:          interpreter.ModeLocal,
		ContextWindow: c.Agent.ContextWindow,
		MaxTokens:     c.Agent.MaxTokens,
		Temperature:   c.Agent.Temperature,
		APIBase:       c.Agent.APIBase,
		APIKey:        c.Agent.APIKey,
		AutoRun:       true,
		SafeMode:      true,
		Timeout:       c.Agent.Timeout,
	}
}
