package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

type yamlConfig struct {
	Function struct {
		Handler     string `yaml:"handler"`
		Runtime     string `yaml:"runtime"`
		Timeout     *int   `yaml:"timeout"`
		MemoryLimit *int64 `yaml:"memoryLimit"`
	} `yaml:"function"`
	Server struct {
		Host         string `yaml:"host"`
		Port         int    `yaml:"port"`
		Mode         string `yaml:"mode"`
		Debug        bool   `yaml:"debug"`
		StrictPanics bool   `yaml:"strictPanics"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func optionFromConfigBytes(b []byte) (Option, error) {
	var cfg yamlConfig
	if err := yaml.UnmarshalStrict(b, &cfg); err != nil {
		return nil, err
	}

	return func(c *Config) {
		if cfg.Function.Handler != "" {
			c.Handler = cfg.Function.Handler
		}
		if cfg.Function.Runtime != "" {
			c.Runtime = cfg.Function.Runtime
		}
		if cfg.Function.Timeout != nil {
			c.Timeout = *cfg.Function.Timeout
		}
		if cfg.Function.MemoryLimit != nil {
			c.MemoryLimit = *cfg.Function.MemoryLimit
		}

		if cfg.Server.Host != "" {
			c.Host = cfg.Server.Host
		}
		if cfg.Server.Port != 0 {
			c.Port = cfg.Server.Port
		}
		if cfg.Server.Mode != "" {
			c.Mode = cfg.Server.Mode
		}
		c.Debug = cfg.Server.Debug
		c.StrictPanics = cfg.Server.StrictPanics

		if cfg.Log.Level != "" {
			c.LogLevel = cfg.Log.Level
		}
		if cfg.Log.Format != "" {
			c.LogFormat = cfg.Log.Format
		}
	}, nil
}

// WithConfig parses YAML bytes following kubeless.yaml structure.
func WithConfig(yamlBytes []byte) (Option, error) {
	opt, err := optionFromConfigBytes(yamlBytes)
	if err != nil {
		return nil, fmt.Errorf("config.WithConfig: %w", err)
	}
	return opt, nil
}

// WithConfigFile loads a YAML file following kubeless.yaml structure.
func WithConfigFile(path string) (Option, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.WithConfigFile(%s): %w", path, err)
	}
	return WithConfig(b)
}
