// Copyright 2025 Certen Protocol
//
// Optional static defaults file for `aip-prover serve -config`, trimmed
// down from the validator's pkg/config/anchor_config.go YAML-loading idiom
// (env-var substitution + gopkg.in/yaml.v3) to the handful of fields this
// service actually tunes: retry cadence, pending-batch size, and the
// connection-pool knobs. Values already set via environment variables take
// precedence — this file only fills in fields whose environment variable is
// unset.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultsFile is the shape of the optional YAML defaults file.
type DefaultsFile struct {
	RetryInterval    string `yaml:"retry_interval"`
	PendingBatchSize int    `yaml:"pending_batch_size"`
	Database         struct {
		MaxConns    int `yaml:"max_conns"`
		MinConns    int `yaml:"min_conns"`
		MaxIdleTime int `yaml:"max_idle_time"`
		MaxLifetime int `yaml:"max_lifetime"`
	} `yaml:"database"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		if value := os.Getenv(groups[1]); value != "" {
			return value
		}
		if len(groups) >= 4 {
			return groups[3]
		}
		return ""
	})
}

// ApplyDefaultsFile reads a YAML defaults file (with ${VAR}/${VAR:-default}
// environment substitution) and overlays each non-zero field onto cfg
// wherever the corresponding environment variable is unset, so an explicit
// environment variable always wins over the file.
func ApplyDefaultsFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read defaults file: %w", err)
	}

	var defaults DefaultsFile
	if err := yaml.Unmarshal([]byte(substituteEnvVars(string(data))), &defaults); err != nil {
		return fmt.Errorf("parse defaults file: %w", err)
	}

	if defaults.RetryInterval != "" && os.Getenv("RETRY_INTERVAL") == "" {
		d, err := time.ParseDuration(defaults.RetryInterval)
		if err != nil {
			return fmt.Errorf("invalid retry_interval %q: %w", defaults.RetryInterval, err)
		}
		cfg.RetryInterval = d
	}
	if defaults.PendingBatchSize != 0 && os.Getenv("PENDING_BATCH_SIZE") == "" {
		cfg.PendingBatchSize = defaults.PendingBatchSize
	}
	if defaults.Database.MaxConns != 0 && os.Getenv("DATABASE_MAX_CONNS") == "" {
		cfg.DatabaseMaxConns = defaults.Database.MaxConns
	}
	if defaults.Database.MinConns != 0 && os.Getenv("DATABASE_MIN_CONNS") == "" {
		cfg.DatabaseMinConns = defaults.Database.MinConns
	}
	if defaults.Database.MaxIdleTime != 0 && os.Getenv("DATABASE_MAX_IDLE_TIME") == "" {
		cfg.DatabaseMaxIdleTime = defaults.Database.MaxIdleTime
	}
	if defaults.Database.MaxLifetime != 0 && os.Getenv("DATABASE_MAX_LIFETIME") == "" {
		cfg.DatabaseMaxLifetime = defaults.Database.MaxLifetime
	}

	return nil
}
