// Package config is the formatter's mapstructure-tagged configuration
// tree, loaded by Viper from an explicit file, a discovered dotfile, or
// defaults (spec.md 6).
package config

import "errors"

// Config is the top-level configuration for javafmt.
type Config struct {
	TargetVersion string          `mapstructure:"target_version"`
	Rules         RulesConfig     `mapstructure:"rules"`
	Pipeline      PipelineConfig  `mapstructure:"pipeline"`
	Security      SecurityConfig  `mapstructure:"security"`
	Discovery     DiscoveryConfig `mapstructure:"discovery"`
}

// RulesConfig selects which rules run and their per-rule parameters.
type RulesConfig struct {
	Enabled []string                  `mapstructure:"enabled"`
	Params  map[string]map[string]any `mapstructure:"params"`
}

// PipelineConfig holds the scheduler's resource knobs.
type PipelineConfig struct {
	MaxConcurrency    int    `mapstructure:"max_concurrency"`
	MemoryBudgetBytes int64  `mapstructure:"memory_budget_bytes"`
	FailFast          bool   `mapstructure:"fail_fast"`
	MaxViolations     int    `mapstructure:"max_violations"`
	MinSeverity       string `mapstructure:"min_severity"`
}

// SecurityConfig holds the guard limits spec.md 7 requires.
type SecurityConfig struct {
	MaxSymlinkDepth   int      `mapstructure:"max_symlink_depth"`
	MaxRecursionDepth int      `mapstructure:"max_recursion_depth"`
	MaxFileSizeBytes  int64    `mapstructure:"max_file_size_bytes"`
	Extensions        []string `mapstructure:"extensions"`
}

// DiscoveryConfig holds the file-walker's include/exclude globs.
type DiscoveryConfig struct {
	Include []string `mapstructure:"include"`
	Exclude []string `mapstructure:"exclude"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidConcurrency indicates pipeline.max_concurrency is negative.
	ErrInvalidConcurrency = errors.New("pipeline.max_concurrency must be non-negative")
	// ErrInvalidMaxViolations indicates pipeline.max_violations is negative.
	ErrInvalidMaxViolations = errors.New("pipeline.max_violations must be non-negative")
	// ErrInvalidSeverity indicates pipeline.min_severity is not a recognized level.
	ErrInvalidSeverity = errors.New("pipeline.min_severity must be one of error, warn, info, debug")
	// ErrInvalidFileSize indicates security.max_file_size_bytes is not positive.
	ErrInvalidFileSize = errors.New("security.max_file_size_bytes must be positive")
	// ErrInvalidSymlinkDepth indicates security.max_symlink_depth is negative.
	ErrInvalidSymlinkDepth = errors.New("security.max_symlink_depth must be non-negative")
	// ErrInvalidRecursionDepth indicates security.max_recursion_depth is negative.
	ErrInvalidRecursionDepth = errors.New("security.max_recursion_depth must be non-negative")
	// ErrNoExtensions indicates security.extensions is empty.
	ErrNoExtensions = errors.New("security.extensions must name at least one extension")
)

var validSeverities = map[string]bool{"error": true, "warn": true, "info": true, "debug": true}

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if err := c.validatePipeline(); err != nil {
		return err
	}

	return c.validateSecurity()
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.MaxConcurrency < 0 {
		return ErrInvalidConcurrency
	}

	if c.Pipeline.MaxViolations < 0 {
		return ErrInvalidMaxViolations
	}

	if c.Pipeline.MinSeverity != "" && !validSeverities[c.Pipeline.MinSeverity] {
		return ErrInvalidSeverity
	}

	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.MaxFileSizeBytes <= 0 {
		return ErrInvalidFileSize
	}

	if c.Security.MaxSymlinkDepth < 0 {
		return ErrInvalidSymlinkDepth
	}

	if c.Security.MaxRecursionDepth < 0 {
		return ErrInvalidRecursionDepth
	}

	if len(c.Security.Extensions) == 0 {
		return ErrNoExtensions
	}

	return nil
}
