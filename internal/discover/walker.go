// Package discover walks the positional file/directory arguments
// (spec.md 6) into a concrete list of files to process, applying
// include/exclude glob filters plus the security package's extension
// allowlist and recursion-depth bound.
package discover

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Sumatoshi-tech/javafmt/internal/security"
)

// FileDiscovery finds the concrete set of files a run should process.
type FileDiscovery interface {
	Discover(roots []string) ([]string, error)
}

// Walker implements FileDiscovery over the local filesystem.
type Walker struct {
	Guards            *security.Guards
	Include           []string
	Exclude           []string
	MaxRecursionDepth int
}

// NewWalker constructs a Walker. A nil or empty Include matches every
// file the Guards' extension allowlist admits.
func NewWalker(guards *security.Guards, include, exclude []string, maxDepth int) *Walker {
	return &Walker{Guards: guards, Include: include, Exclude: exclude, MaxRecursionDepth: maxDepth}
}

// Discover walks roots (files or directories) and returns every regular
// file that passes the extension allowlist and the include/exclude
// globs, deepest-first-safe (directories are recursed with a bounded
// RecursionGuard so a symlink cycle cannot loop forever).
func (w *Walker) Discover(roots []string) ([]string, error) {
	var out []string

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if w.matches(root) {
				out = append(out, root)
			}

			continue
		}

		guard := security.NewRecursionGuard(w.MaxRecursionDepth)

		if err := w.walkDir(root, root, guard, &out); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (w *Walker) walkDir(root, dir string, guard *security.RecursionGuard, out *[]string) error {
	if err := guard.Enter(); err != nil {
		return err
	}
	defer guard.Leave()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			if err := w.walkDir(root, full, guard, out); err != nil {
				return err
			}

			continue
		}

		if w.matches(full) {
			*out = append(*out, full)
		}
	}

	return nil
}

func (w *Walker) matches(path string) bool {
	if w.Guards != nil && w.Guards.CheckExtension(path) != nil {
		return false
	}

	base := filepath.Base(path)

	for _, pattern := range w.Exclude {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return false
		}

		if matched, _ := doublestar.Match(pattern, base); matched {
			return false
		}
	}

	if len(w.Include) == 0 {
		return true
	}

	for _, pattern := range w.Include {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}

		if matched, _ := doublestar.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
