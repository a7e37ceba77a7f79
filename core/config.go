package core

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const ConfigFile = "dayview.config.yml"

type Config struct {
	OutputDir       string        `yaml:"outputDir"`
	ViewsDir        string        `yaml:"viewsDir"`
	PublicDir       string        `yaml:"publicDir"`
	EnvFile         string        `yaml:"envFile"`
	DebugHeaders    bool          `yaml:"debugHeaders"`
	DebugLogs       bool          `yaml:"debugLogs"`
	UpstreamTimeout time.Duration `yaml:"upstreamTimeout"`
}

func DefaultConfig() Config {
	return Config{
		OutputDir: "./cache",
		ViewsDir:  "views",
		PublicDir: "public",
		EnvFile:   ".env",
	}
}

// LoadConfig never fails: a missing or unreadable file yields the defaults,
// and empty fields in a partial file are filled from them.
var LoadConfig = func(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig()
	}

	defaults := DefaultConfig()
	if cfg.OutputDir == "" {
		cfg.OutputDir = defaults.OutputDir
	}
	if cfg.ViewsDir == "" {
		cfg.ViewsDir = defaults.ViewsDir
	}
	if cfg.PublicDir == "" {
		cfg.PublicDir = defaults.PublicDir
	}
	if cfg.EnvFile == "" {
		cfg.EnvFile = defaults.EnvFile
	}

	return cfg
}
