// Package config loads the relay's ambient, environment-driven
// operational settings. The wire protocol's compile-time constants
// (port, frame size, queue capacity, mix period, socket buffers) are
// not here — they are not meant to be overridden at runtime; see
// internal/relay for those.
package config

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Config holds operational knobs: logging, metrics exposure, and the
// accept-loop throttle.
type Config struct {
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// MetricsAddr, if set, serves Prometheus metrics on this address
	// (e.g. ":9798"). Empty disables the metrics listener.
	MetricsAddr string `env:"METRICS_ADDR" default:""`

	AcceptRatePerSecond float64 `env:"ACCEPT_RATE_PER_SECOND" default:"5"`
	AcceptBurst         int     `env:"ACCEPT_BURST" default:"10"`
}

// Load reads configuration from the environment, optionally seeded by
// a .env file in the working directory.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return &cfg, nil
}
