package discover_test

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/javafmt/internal/discover"
	"github.com/Sumatoshi-tech/javafmt/internal/security"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalker_DiscoversJavaFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Main.java"), "class Main {}")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignore me")
	writeFile(t, filepath.Join(dir, "sub", "Helper.java"), "class Helper {}")

	guards := security.New(security.DefaultConfig(dir))
	w := discover.NewWalker(guards, nil, nil, 100)

	found, err := w.Discover([]string{dir})
	require.NoError(t, err)

	sort.Strings(found)
	require.Len(t, found, 2)
	assert.Contains(t, found[0], "Helper.java")
	assert.Contains(t, found[1], "Main.java")
}

func TestWalker_ExcludeGlob(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Main.java"), "class Main {}")
	writeFile(t, filepath.Join(dir, "generated", "Gen.java"), "class Gen {}")

	guards := security.New(security.DefaultConfig(dir))
	w := discover.NewWalker(guards, nil, []string{"**/generated/**"}, 100)

	found, err := w.Discover([]string{dir})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Contains(t, found[0], "Main.java")
}
