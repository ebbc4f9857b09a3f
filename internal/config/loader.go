package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".javafmt"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for javafmt settings.
const envPrefix = "JAVAFMT"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// Default tunables applied when neither a config file nor the
// environment overrides them.
const (
	DefaultTargetVersion     = "21"
	DefaultMaxConcurrency    = 0 // 0 lets the caller fall back to runtime.NumCPU
	DefaultMinSeverity       = "info"
	DefaultMaxSymlinkDepth   = 10
	DefaultMaxRecursionDepth = 100
	DefaultMaxFileSizeBytes  = 10 * 1024 * 1024
)

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path
// (spec.md 6's `--config`). Otherwise, the config file is searched in
// CWD and $HOME. A missing config file is not an error; defaults apply.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	if err := viperCfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config

	if err := viperCfg.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("target_version", DefaultTargetVersion)

	viperCfg.SetDefault("rules.enabled", []string{"line-length"})
	viperCfg.SetDefault("rules.params", map[string]map[string]any{
		"line-length": {"max": 120},
	})

	viperCfg.SetDefault("pipeline.max_concurrency", DefaultMaxConcurrency)
	viperCfg.SetDefault("pipeline.memory_budget_bytes", 0)
	viperCfg.SetDefault("pipeline.fail_fast", false)
	viperCfg.SetDefault("pipeline.max_violations", 0)
	viperCfg.SetDefault("pipeline.min_severity", DefaultMinSeverity)

	viperCfg.SetDefault("security.max_symlink_depth", DefaultMaxSymlinkDepth)
	viperCfg.SetDefault("security.max_recursion_depth", DefaultMaxRecursionDepth)
	viperCfg.SetDefault("security.max_file_size_bytes", DefaultMaxFileSizeBytes)
	viperCfg.SetDefault("security.extensions", []string{".java"})

	viperCfg.SetDefault("discovery.include", []string{})
	viperCfg.SetDefault("discovery.exclude", []string{})
}
