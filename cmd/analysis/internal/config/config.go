// Package config loads settings for the analysis tool.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	hll "github.com/rejitnatarajan/HLL"
)

// Config is the top-level configuration of the analysis tool.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Sweep   SweepConfig   `mapstructure:"sweep"`
	Count   CountConfig   `mapstructure:"count"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SweepConfig holds accuracy sweep settings.
type SweepConfig struct {
	Precisions    []int  `mapstructure:"precisions"`
	Cardinalities []int  `mapstructure:"cardinalities"`
	Trials        int    `mapstructure:"trials"`
	Workers       int    `mapstructure:"workers"`
	Hash          string `mapstructure:"hash"`
	Seed          uint32 `mapstructure:"seed"`
}

// CountConfig holds distinct counting settings.
type CountConfig struct {
	Precision int    `mapstructure:"precision"`
	Hash      string `mapstructure:"hash"`
	Seed      uint32 `mapstructure:"seed"`
	PerSource bool   `mapstructure:"per_source"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Default values applied before the config file and environment.
const (
	DefaultSweepTrials    = 10
	DefaultSweepWorkers   = 0
	DefaultCountPrecision = hll.DefaultPrecision
	DefaultLogLevel       = "info"
	DefaultLogFormat      = FormatText
	DefaultHash           = hll.HashMurmur3
)

// DefaultSweepPrecisions and DefaultSweepCardinalities are the sweep grid
// used when none is configured.
var (
	DefaultSweepPrecisions    = []int{4, 8, 12, 14}
	DefaultSweepCardinalities = []int{100, 1_000, 10_000, 100_000}
)

// Sentinel errors for configuration validation.
var (
	// ErrInvalidTrials indicates the trial count is not positive.
	ErrInvalidTrials = errors.New("sweep.trials must be positive")
	// ErrInvalidCardinality indicates a sweep cardinality is not positive.
	ErrInvalidCardinality = errors.New("sweep.cardinalities must be positive")
	// ErrInvalidPrecision indicates a precision outside [4, 16].
	ErrInvalidPrecision = fmt.Errorf("precision must be between %d and %d", hll.MinPrecision, hll.MaxPrecision)
	// ErrInvalidWorkers indicates the worker count is negative.
	ErrInvalidWorkers = errors.New("sweep.workers must be non-negative")
	// ErrInvalidLogLevel indicates an unrecognized log level.
	ErrInvalidLogLevel = errors.New("logging.level must be one of debug, info, warn, error")
	// ErrInvalidLogFormat indicates an unrecognized log format.
	ErrInvalidLogFormat = errors.New("logging.format must be text or json")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	sweepErr := c.validateSweep()
	if sweepErr != nil {
		return sweepErr
	}

	countErr := c.validateCount()
	if countErr != nil {
		return countErr
	}

	return c.validateLogging()
}

func (c *Config) validateSweep() error {
	for _, p := range c.Sweep.Precisions {
		if !validPrecision(p) {
			return fmt.Errorf("sweep: %w (got %d)", ErrInvalidPrecision, p)
		}
	}

	for _, n := range c.Sweep.Cardinalities {
		if n <= 0 {
			return fmt.Errorf("%w (got %d)", ErrInvalidCardinality, n)
		}
	}

	if c.Sweep.Trials <= 0 {
		return ErrInvalidTrials
	}

	if c.Sweep.Workers < 0 {
		return ErrInvalidWorkers
	}

	_, err := hll.HashByName(c.Sweep.Hash)
	if err != nil {
		return fmt.Errorf("sweep.hash: %w", err)
	}

	return nil
}

func (c *Config) validateCount() error {
	if !validPrecision(c.Count.Precision) {
		return fmt.Errorf("count: %w (got %d)", ErrInvalidPrecision, c.Count.Precision)
	}

	_, err := hll.HashByName(c.Count.Hash)
	if err != nil {
		return fmt.Errorf("count.hash: %w", err)
	}

	return nil
}

func (c *Config) validateLogging() error {
	_, err := ParseLevel(c.Logging.Level)
	if err != nil {
		return err
	}

	switch strings.ToLower(c.Logging.Format) {
	case FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("%w (got %q)", ErrInvalidLogFormat, c.Logging.Format)
	}
}

func validPrecision(p int) bool {
	return p >= hll.MinPrecision && p <= hll.MaxPrecision
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w (got %q)", ErrInvalidLogLevel, name)
	}
}

// NewLogger builds a logger writing to w. Invalid settings fall back to
// text output at info level; Load rejects them before this point.
func NewLogger(cfg LoggingConfig, w io.Writer) *slog.Logger {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Format, FormatJSON) {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}

	return slog.New(slog.NewTextHandler(w, handlerOpts))
}
