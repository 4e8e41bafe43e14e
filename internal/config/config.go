// Package config holds the engine configuration: YAML file, overridden
// by environment variables, falling back to defaults when no file
// exists.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all spark configuration.
type Config struct {
	// Storage
	DatabasePath string `yaml:"database_path"`

	// HTTP API
	ListenAddr string `yaml:"listen_addr"`

	// Generation collaborator
	Generator GeneratorConfig `yaml:"generator"`

	// Background rhythm drift
	RhythmTick      string  `yaml:"rhythm_tick"`
	RhythmDriftStep float64 `yaml:"rhythm_drift_step"`

	// Playbook thresholds
	Playbook PlaybookConfig `yaml:"playbook"`
}

// GeneratorConfig configures the generation collaborator.
type GeneratorConfig struct {
	Provider string `yaml:"provider"` // ollama, mock
	URL      string `yaml:"url"`
	Model    string `yaml:"model"`
}

// PlaybookConfig overrides the classifier thresholds.
type PlaybookConfig struct {
	LowTrust         float64 `yaml:"low_trust"`
	HighPain         float64 `yaml:"high_pain"`
	HighDrift        float64 `yaml:"high_drift"`
	ComplexWordCount int     `yaml:"complex_word_count"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DatabasePath: "spark.db",
		ListenAddr:   ":8587",
		Generator: GeneratorConfig{
			Provider: "ollama",
			URL:      "http://localhost:11434",
			Model:    "llama3.2",
		},
		RhythmTick:      "5m",
		RhythmDriftStep: 2.0,
		Playbook: PlaybookConfig{
			LowTrust:         0.4,
			HighPain:         0.7,
			HighDrift:        0.4,
			ComplexWordCount: 120,
		},
	}
}

// Load loads configuration from a YAML file. A missing file returns the
// defaults; environment variables win over both.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SPARK_DB"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("SPARK_LISTEN"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("SPARK_GENERATOR"); v != "" {
		c.Generator.Provider = v
	}
	if v := os.Getenv("SPARK_GENERATOR_URL"); v != "" {
		c.Generator.URL = v
	}
	if v := os.Getenv("SPARK_GENERATOR_MODEL"); v != "" {
		c.Generator.Model = v
	}
	if v := os.Getenv("SPARK_RHYTHM_TICK"); v != "" {
		c.RhythmTick = v
	}
}

// RhythmTickInterval parses the rhythm tick, falling back to the
// default on a bad value.
func (c *Config) RhythmTickInterval() time.Duration {
	d, err := time.ParseDuration(c.RhythmTick)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}
