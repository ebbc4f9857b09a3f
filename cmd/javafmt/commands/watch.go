package commands

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Sumatoshi-tech/javafmt/internal/edit"
)

// watchDebounce coalesces a burst of filesystem events (e.g. an editor's
// save-as-rename-then-write) into a single re-run.
const watchDebounce = 300 * time.Millisecond

// runWatch re-runs runOnce every time a file under roots changes,
// grounded on the teacher pack's fsnotify-based watcher (directory-level
// watches, recursive add, debounced flush) but simplified: rather than
// dispatching per-event, every flush just re-discovers and re-processes
// the whole root set, relying on the cache (internal/cachekey) to skip
// files that did not actually change.
func (r *runner) runWatch(
	ctx context.Context, b *batch, roots []string, out, progressWriter io.Writer, threshold edit.Severity,
) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addRecursiveWatches(watcher, roots); err != nil {
		return err
	}

	r.progressf(progressWriter, "watching for changes (ctrl-c to stop)")

	if _, runErr := r.runOnce(ctx, b, roots, out, threshold); runErr != nil {
		return runErr
	}

	var timer *time.Timer

	rerun := make(chan struct{}, 1)
	signalRerun := func() {
		select {
		case rerun <- struct{}{}:
		default:
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}

			if timer != nil {
				timer.Stop()
			}

			timer = time.AfterFunc(watchDebounce, signalRerun)

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			r.progressf(progressWriter, "watch error: %v", werr)

		case <-rerun:
			if _, runErr := r.runOnce(ctx, b, roots, out, threshold); runErr != nil {
				return runErr
			}
		}
	}
}

// addRecursiveWatches adds an fsnotify watch for every directory under
// each root (fsnotify.Watcher.Add is not recursive). Symlink cycles are
// not a concern here the way they are in internal/discover's directory
// walk: filepath.WalkDir never follows a symlink into a directory, so it
// cannot loop.
func addRecursiveWatches(watcher *fsnotify.Watcher, roots []string) error {
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return err
		}

		if !info.IsDir() {
			if err := watcher.Add(filepath.Dir(root)); err != nil {
				return err
			}

			continue
		}

		err = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
			if walkErr != nil {
				return nil
			}

			if d.IsDir() {
				_ = watcher.Add(path)
			}

			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}
