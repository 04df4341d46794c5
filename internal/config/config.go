// Package config loads the application configuration file. Database
// credentials never live here; they come from the site's settings.php.
package config

import (
	"os"

	yaml "go.yaml.in/yaml/v3"

	"github.com/druscope/druscope/internal/errs"
)

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address, e.g. ":8080".
	Listen string `yaml:"listen"`

	Log    Log    `yaml:"log"`
	Export Export `yaml:"export"`
}

// Log configures the structured logger.
type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// Export configures report upload to object storage.
type Export struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		Log:    Log{Level: "info", Format: "json"},
	}
}

// Load reads a YAML config file, filling unset fields from Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to read config file "+path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to parse config file "+path, err)
	}

	if cfg.Export.Enabled {
		if cfg.Export.Endpoint == "" || cfg.Export.Bucket == "" {
			return nil, errs.New(errs.ErrKindInvalidInput,
				"export.endpoint and export.bucket are required when export is enabled")
		}
	}
	return cfg, nil
}
