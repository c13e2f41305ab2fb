// Package config resolves the tool configuration from defaults, an optional
// YAML file and DATALAKE_* environment variables, in ascending precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Events controls whether object-created notification queues are provisioned
// alongside the buckets, and for which tiers.
type Events struct {
	Enabled bool     `yaml:"enabled"`
	Tiers   []string `yaml:"tiers"`
}

// Config is the effective configuration of a provisioning or verify run.
type Config struct {
	Project     string `yaml:"project"`
	Environment string `yaml:"environment"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	PathStyle   bool   `yaml:"path_style"`
	Manifest    string `yaml:"manifest"`
	Events      Events `yaml:"events"`
}

var (
	validEnvironments = []string{"dev", "staging", "prod"}
	validTiers        = []string{"bronze", "silver", "gold"}

	// S3 bucket name fragment: the project prefixes every bucket name, so it
	// has to obey bucket naming rules itself.
	projectRE = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$`)
)

// Default returns the configuration used when nothing else is given. The
// values match the original data-lake setup for this project.
func Default() Config {
	return Config{
		Project:     "patient-outcome",
		Environment: "dev",
		Region:      "us-west-2",
		Manifest:    "data_lake_config.json",
		Events: Events{
			Enabled: false,
			Tiers:   []string{"bronze"},
		},
	}
}

// Overrides are command-line settings. They sit above the environment
// layer; empty fields leave the current value alone.
type Overrides struct {
	Project     string
	Environment string
	Region      string
	Endpoint    string
	Manifest    string
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (if non-empty), then environment overrides, then flag overrides. The
// result is validated.
func Load(path string, over Overrides) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyOverrides(over)

	// Custom endpoints (LocalStack, MinIO) do not resolve virtual-hosted
	// bucket names.
	if cfg.Endpoint != "" {
		cfg.PathStyle = true
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyOverrides(over Overrides) {
	if over.Project != "" {
		c.Project = over.Project
	}
	if over.Environment != "" {
		c.Environment = over.Environment
	}
	if over.Region != "" {
		c.Region = over.Region
	}
	if over.Endpoint != "" {
		c.Endpoint = over.Endpoint
	}
	if over.Manifest != "" {
		c.Manifest = over.Manifest
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if !projectRE.MatchString(c.Project) {
		return fmt.Errorf("project %q must be lowercase letters, digits and hyphens", c.Project)
	}
	if !lo.Contains(validEnvironments, c.Environment) {
		return fmt.Errorf("environment %q must be one of dev, staging, prod", c.Environment)
	}
	if c.Region == "" {
		return errors.New("region must not be empty")
	}
	if c.Manifest == "" {
		return errors.New("manifest path must not be empty")
	}
	for _, tier := range c.Events.Tiers {
		if !lo.Contains(validTiers, tier) {
			return fmt.Errorf("events tier %q must be one of bronze, silver, gold", tier)
		}
	}
	return nil
}
