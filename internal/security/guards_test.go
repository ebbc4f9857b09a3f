package security_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/javafmt/internal/security"
)

func TestSanitizePath_RejectsEmpty(t *testing.T) {
	t.Parallel()

	g := security.New(security.DefaultConfig())
	_, err := g.SanitizePath("")
	assert.ErrorIs(t, err, security.ErrEmptyPath)
}

func TestSanitizePath_RejectsNUL(t *testing.T) {
	t.Parallel()

	g := security.New(security.DefaultConfig())
	_, err := g.SanitizePath("foo\x00bar")
	assert.ErrorIs(t, err, security.ErrPathContainsNUL)
}

func TestSanitizePath_WithinRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "Main.java")
	require.NoError(t, os.WriteFile(file, []byte("class Main {}"), 0o644))

	g := security.New(security.DefaultConfig(dir))
	resolved, err := g.SanitizePath(file)
	require.NoError(t, err)
	assert.Equal(t, file, resolved)
}

func TestSanitizePath_EscapesRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	outside := t.TempDir()
	file := filepath.Join(outside, "Main.java")
	require.NoError(t, os.WriteFile(file, []byte("class Main {}"), 0o644))

	g := security.New(security.DefaultConfig(dir))
	_, err := g.SanitizePath(file)
	assert.ErrorIs(t, err, security.ErrPathEscape)
}

func TestCheckExtension(t *testing.T) {
	t.Parallel()

	g := security.New(security.DefaultConfig())
	assert.NoError(t, g.CheckExtension("Main.java"))
	assert.ErrorIs(t, g.CheckExtension("Main.class"), security.ErrExtensionDenied)
}

func TestCheckSize(t *testing.T) {
	t.Parallel()

	cfg := security.DefaultConfig()
	cfg.MaxFileSizeBytes = 10
	g := security.New(cfg)

	assert.NoError(t, g.CheckSize(5))
	assert.ErrorIs(t, g.CheckSize(11), security.ErrFileTooLarge)
}

func TestRecursionGuard(t *testing.T) {
	t.Parallel()

	rg := security.NewRecursionGuard(2)
	require.NoError(t, rg.Enter())
	require.NoError(t, rg.Enter())
	assert.ErrorIs(t, rg.Enter(), security.ErrRecursionTooDeep)

	rg.Leave()
	assert.NoError(t, rg.Enter())
}
