// Package config loads the core's configuration from a YAML file with
// environment overrides for deployment-sensitive values.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can be written as "1s", "300ms".
type Duration time.Duration

// UnmarshalYAML parses a scalar duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full configuration tree.
type Config struct {
	Service struct {
		BaseURL        string   `yaml:"base_url"`
		APIKey         string   `yaml:"api_key"`
		RequestTimeout Duration `yaml:"request_timeout"`
	} `yaml:"service"`

	Run struct {
		PollInterval  Duration `yaml:"poll_interval"`
		Timeout       Duration `yaml:"timeout"`
		MaxToolRounds int      `yaml:"max_tool_rounds"`
	} `yaml:"run"`

	Conflict struct {
		ConfirmInterval Duration `yaml:"confirm_interval"`
		ConfirmTimeout  Duration `yaml:"confirm_timeout"`
	} `yaml:"conflict"`

	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

// Default returns the documented defaults: 1s polling with a 300s run timeout,
// and a 15s cancellation-confirmation window checked every 1.5s.
func Default() Config {
	var cfg Config
	cfg.Service.RequestTimeout = Duration(30 * time.Second)
	cfg.Run.PollInterval = Duration(time.Second)
	cfg.Run.Timeout = Duration(300 * time.Second)
	cfg.Run.MaxToolRounds = 10
	cfg.Conflict.ConfirmInterval = Duration(1500 * time.Millisecond)
	cfg.Conflict.ConfirmTimeout = Duration(15 * time.Second)
	cfg.Store.Path = "assistant.db"
	cfg.Log.Level = "info"
	return cfg
}

// Load reads path over the defaults and applies environment overrides. An
// empty path keeps the defaults, still honouring the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv lets deployments inject secrets and endpoints without a file edit.
func (c *Config) applyEnv() {
	if v := os.Getenv("ASSISTANT_BASE_URL"); v != "" {
		c.Service.BaseURL = v
	}
	if v := os.Getenv("ASSISTANT_API_KEY"); v != "" {
		c.Service.APIKey = v
	}
	if v := os.Getenv("ASSISTANT_DB_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("ASSISTANT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}
