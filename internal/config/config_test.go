package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/javafmt/internal/config"
)

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)

	require.NoError(t, os.Chdir(dir))
	defer func() { require.NoError(t, os.Chdir(cwd)) }()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultTargetVersion, cfg.TargetVersion)
	assert.Equal(t, []string{"line-length"}, cfg.Rules.Enabled)
	assert.Equal(t, []string{".java"}, cfg.Security.Extensions)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := "target_version: \"17\"\nrules:\n  enabled: [\"line-length\"]\n  params:\n    line-length:\n      max: 80\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "17", cfg.TargetVersion)
	assert.Equal(t, 80, cfg.Rules.Params["line-length"]["max"])
}

func TestValidate_RejectsEmptyExtensions(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		Security: config.SecurityConfig{MaxFileSizeBytes: 1024},
	}
	assert.ErrorIs(t, cfg.Validate(), config.ErrNoExtensions)
}

func TestValidate_RejectsNegativeConcurrency(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		Pipeline: config.PipelineConfig{MaxConcurrency: -1},
		Security: config.SecurityConfig{MaxFileSizeBytes: 1024, Extensions: []string{".java"}},
	}
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidConcurrency)
}
