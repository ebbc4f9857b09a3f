package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
)

func TestAddRecursiveWatches_CoversNestedDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	nested := filepath.Join(root, "pkg", "sub")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "A.java"), []byte("class A {}\n"), 0o644))

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, addRecursiveWatches(watcher, []string{root}))

	watched := watcher.WatchList()
	require.Contains(t, watched, root)
	require.Contains(t, watched, filepath.Join(root, "pkg"))
	require.Contains(t, watched, nested)
}

func TestAddRecursiveWatches_FileRootWatchesParentDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "A.java")
	require.NoError(t, os.WriteFile(path, []byte("class A {}\n"), 0o644))

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, addRecursiveWatches(watcher, []string{path}))

	require.Contains(t, watcher.WatchList(), dir)
}
