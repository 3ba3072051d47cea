// Package config loads lgpctl settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"lgpkit/internal/compress"
	"lgpkit/internal/logging"
	"lgpkit/internal/storage"
)

const (
	EnvStore       = "LGPCTL_STORE"
	EnvDBPath      = "LGPCTL_DB_PATH"
	EnvCompression = "LGPCTL_COMPRESSION"
	EnvLogLevel    = "LGPCTL_LOG_LEVEL"
)

// DefaultFiles are searched in order when no explicit path is given.
var DefaultFiles = []string{"lgpctl.yaml", ".lgpctl.yaml"}

type Config struct {
	Store       string `yaml:"store"`
	DBPath      string `yaml:"db_path"`
	Compression string `yaml:"compression"`
	ExportsDir  string `yaml:"exports_dir"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`

	// Source is the file the config was read from, empty for defaults.
	Source string `yaml:"-"`
}

func DefaultConfig() *Config {
	return &Config{
		Store:       storage.DefaultStoreKind(),
		DBPath:      "lgpkit.db",
		Compression: compress.Zstd,
		ExportsDir:  "exports",
		LogLevel:    "info",
		LogFormat:   logging.FormatAuto,
	}
}

// Load reads path, or the first of DefaultFiles that exists when path is
// empty, then applies environment overrides. A missing explicit path is an
// error; finding no default file is not.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error
	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	} else {
		for _, name := range DefaultFiles {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				break
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	if path != "" {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		cfg.Source = path
		if cfg.DBPath != "" && !filepath.IsAbs(cfg.DBPath) {
			cfg.DBPath = filepath.Join(filepath.Dir(path), cfg.DBPath)
		}
	}

	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvStore); ok && v != "" {
		c.Store = v
	}
	if v, ok := lookup(EnvDBPath); ok && v != "" {
		c.DBPath = v
	}
	if v, ok := lookup(EnvCompression); ok && v != "" {
		c.Compression = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
}

// Validate rejects unknown store kinds, compression names and log levels.
func (c *Config) Validate() error {
	switch c.Store {
	case "memory":
	case "sqlite":
		if c.DBPath == "" {
			return errors.New("db_path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unsupported store backend: %s", c.Store)
	}
	if _, err := compress.Parse(c.Compression); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "", logging.FormatAuto, logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("unsupported log format: %s", c.LogFormat)
	}
	return nil
}
