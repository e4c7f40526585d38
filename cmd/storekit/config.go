/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config configures the debug CLI. Precedence: defaults, then the YAML
// config file, then environment variables (optionally loaded from .env).
type Config struct {
	// Dir is the directory holding the local store snapshot.
	Dir string `env:"STOREKIT_DIR" yaml:"dir"`

	// LogLevel is a zap level string (debug, info, warn, error).
	LogLevel string `env:"STOREKIT_LOG_LEVEL" yaml:"logLevel"`
}

func loadConfig(path string) (Config, error) {
	cfg := Config{
		Dir:      ".",
		LogLevel: "info",
	}

	// Missing .env is fine; only surface real read failures.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load .env: %w", err)
	}

	if raw, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

func (c Config) buildLogger() (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.Set(c.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
