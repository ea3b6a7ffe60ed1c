// Package config holds the run configuration shared by the command-line tools.
// Values start from DefaultConfig, are overridden by STELLARATOR_* environment
// variables and finally by flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"

	"stellarator/internal/raster"
)

// Config is the generator configuration.
type Config struct {
	Seed int64 `env:"STELLARATOR_SEED"`
	// Data is a local directory or a remote source holding bodies.json,
	// presets.cfg, templates.cfg and names.json.
	Data string `env:"STELLARATOR_DATA"`
	// Cache is where remote data sources are fetched to.
	Cache  string `env:"STELLARATOR_CACHE"`
	Output string `env:"STELLARATOR_OUTPUT"`
	// Folder names the generated system inside Output.
	Folder         string  `env:"STELLARATOR_FOLDER"`
	NormalStrength float64 `env:"STELLARATOR_NORMAL_STRENGTH"`
	Seam           string  `env:"STELLARATOR_SEAM"`
	Workers        int     `env:"STELLARATOR_WORKERS"`
	StrictBodies   bool    `env:"STELLARATOR_STRICT"`
	// Resolution overrides the radius-based raster width when non-zero.
	Resolution   int    `env:"STELLARATOR_RESOLUTION"`
	LogLevel     string `env:"STELLARATOR_LOG_LEVEL"`
	OTelEndpoint string `env:"STELLARATOR_OTEL_ENDPOINT"`
}

// DefaultConfig returns the defaults used before environment and flags.
func DefaultConfig() Config {
	return Config{
		Seed:           42,
		Data:           "data",
		Cache:          ".stellarator-cache",
		Output:         "systems",
		Folder:         "Stellarator",
		NormalStrength: 3,
		Seam:           raster.SeamLegacy.String(),
		LogLevel:       "info",
	}
}

// ApplyEnv overrides fields whose environment variables are set.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for the generated system")
	fs.StringVar(&c.Data, "data", c.Data, "data directory or remote source (git::, https://, archives)")
	fs.StringVar(&c.Cache, "cache", c.Cache, "directory remote data sources are fetched into")
	fs.StringVar(&c.Output, "out", c.Output, "output root directory")
	fs.StringVar(&c.Folder, "folder", c.Folder, "system folder name")
	fs.Float64Var(&c.NormalStrength, "normal-strength", c.NormalStrength, "normal map strength [0,10]")
	fs.StringVar(&c.Seam, "seam", c.Seam, "normal map seam mode: legacy or toroidal")
	fs.IntVar(&c.Workers, "workers", c.Workers, "raster rows sampled in parallel (0 = all CPUs)")
	fs.BoolVar(&c.StrictBodies, "strict", c.StrictBodies, "abort the run on the first failed body")
	fs.IntVar(&c.Resolution, "resolution", c.Resolution, "raster width override (0 = by radius)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
}

// SeamMode parses the configured seam.
func (c Config) SeamMode() (raster.Seam, error) {
	return raster.ParseSeam(c.Seam)
}

// Level parses the configured log level.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// Validate checks values that flags and environment cannot constrain.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.SeamMode(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if c.NormalStrength < 0 || c.NormalStrength > raster.MaxStrength {
		errs = append(errs, fmt.Errorf("normal strength %g outside [0,%d]", c.NormalStrength, raster.MaxStrength))
	}
	if c.Resolution < 0 || c.Resolution%2 != 0 {
		errs = append(errs, fmt.Errorf("resolution %d must be a non-negative even width", c.Resolution))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d must not be negative", c.Workers))
	}
	if c.Data == "" {
		errs = append(errs, errors.New("data source is required"))
	}
	if c.Folder == "" {
		errs = append(errs, errors.New("folder is required"))
	}
	return errors.Join(errs...)
}
