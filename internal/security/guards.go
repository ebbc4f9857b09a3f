// Package security implements the input-hardening guards spec.md 7
// requires of anything that walks a filesystem and feeds untrusted text
// into a parser: path containment, symlink-depth limits, recursion
// limits, file-size caps, and an extension allowlist.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrEmptyPath is returned for a blank path argument.
	ErrEmptyPath = errors.New("security: path is empty")
	// ErrPathContainsNUL is returned for a path embedding a NUL byte.
	ErrPathContainsNUL = errors.New("security: path contains NUL byte")
	// ErrPathEscape is returned when a resolved path falls outside every
	// configured root.
	ErrPathEscape = errors.New("security: path escapes configured root")
	// ErrSymlinkTooDeep is returned when resolving symlinks exceeds
	// MaxSymlinkDepth without reaching a terminal file.
	ErrSymlinkTooDeep = errors.New("security: symlink chain too deep")
	// ErrRecursionTooDeep is returned by RecursionGuard.Enter when the
	// configured directory-recursion depth is exceeded.
	ErrRecursionTooDeep = errors.New("security: directory recursion too deep")
	// ErrFileTooLarge is returned when a file exceeds MaxFileSizeBytes.
	ErrFileTooLarge = errors.New("security: file exceeds maximum size")
	// ErrExtensionDenied is returned when a file's extension is not in
	// the configured allowlist.
	ErrExtensionDenied = errors.New("security: file extension not allowed")
)

// Config holds the tunables for every guard. Zero values mean
// "unbounded" for the numeric limits, except Extensions, where a nil or
// empty allowlist denies every file — formatting must be opted into an
// extension explicitly.
type Config struct {
	Roots             []string
	MaxSymlinkDepth   int
	MaxRecursionDepth int
	MaxFileSizeBytes  int64
	Extensions        []string
}

// DefaultConfig returns the guard limits spec.md 7 names as defaults:
// a 10MB per-file cap, a symlink chain of at most 10 hops, recursion
// bounded to 100 directories deep, and the .java extension allowed.
func DefaultConfig(roots ...string) Config {
	return Config{
		Roots:             roots,
		MaxSymlinkDepth:   10,
		MaxRecursionDepth: 100,
		MaxFileSizeBytes:  10 * 1024 * 1024,
		Extensions:        []string{".java"},
	}
}

// Guards applies a Config's limits to concrete paths and sizes.
type Guards struct {
	cfg Config
}

// New constructs a Guards from cfg.
func New(cfg Config) *Guards { return &Guards{cfg: cfg} }

// SanitizePath validates and resolves path: rejects empty paths and
// NUL bytes, cleans and absolutizes it, resolves its symlink chain
// (bounded by MaxSymlinkDepth), and — if any Roots are configured —
// requires the resolved path to fall under one of them.
func (g *Guards) SanitizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrEmptyPath
	}

	if strings.ContainsRune(path, '\x00') {
		return "", fmt.Errorf("%w: %q", ErrPathContainsNUL, path)
	}

	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("security: resolve absolute path for %q: %w", path, err)
	}

	resolved, err := g.resolveSymlinks(abs)
	if err != nil {
		return "", err
	}

	if len(g.cfg.Roots) == 0 {
		return resolved, nil
	}

	for _, root := range g.cfg.Roots {
		rootAbs, err := filepath.Abs(root)
		if err != nil {
			continue
		}

		rel, err := filepath.Rel(rootAbs, resolved)
		if err == nil && !strings.HasPrefix(rel, "..") {
			return resolved, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrPathEscape, resolved)
}

// resolveSymlinks follows path's symlink chain up to MaxSymlinkDepth
// hops, returning ErrSymlinkTooDeep if the chain doesn't terminate in
// time. A depth of 0 disables the bound (treated as unlimited).
func (g *Guards) resolveSymlinks(path string) (string, error) {
	max := g.cfg.MaxSymlinkDepth
	if max <= 0 {
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			return "", fmt.Errorf("security: resolve symlinks for %q: %w", path, err)
		}

		return resolved, nil
	}

	current := path
	for i := 0; i < max; i++ {
		fi, err := os.Lstat(current)
		if err != nil {
			return "", fmt.Errorf("security: stat %q: %w", current, err)
		}

		if fi.Mode()&os.ModeSymlink == 0 {
			return current, nil
		}

		target, err := os.Readlink(current)
		if err != nil {
			return "", fmt.Errorf("security: read symlink %q: %w", current, err)
		}

		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(current), target)
		}

		current = filepath.Clean(target)
	}

	return "", fmt.Errorf("%w: %s", ErrSymlinkTooDeep, path)
}

// CheckExtension reports whether path's extension is in the allowlist.
func (g *Guards) CheckExtension(path string) error {
	ext := strings.ToLower(filepath.Ext(path))

	for _, allowed := range g.cfg.Extensions {
		if strings.ToLower(allowed) == ext {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrExtensionDenied, ext)
}

// CheckSize reports whether size is within MaxFileSizeBytes. A limit of
// 0 or less disables the check.
func (g *Guards) CheckSize(size int64) error {
	if g.cfg.MaxFileSizeBytes <= 0 {
		return nil
	}

	if size > g.cfg.MaxFileSizeBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, size, g.cfg.MaxFileSizeBytes)
	}

	return nil
}

// RecursionGuard bounds directory-walk recursion depth. It is not safe
// for concurrent use by multiple goroutines walking the same tree —
// callers that parallelize directory traversal should give each
// goroutine its own guard rooted at the shared max.
type RecursionGuard struct {
	max   int
	depth int
}

// NewRecursionGuard constructs a RecursionGuard with the given maximum
// depth. A max of 0 or less disables the bound.
func NewRecursionGuard(max int) *RecursionGuard {
	return &RecursionGuard{max: max}
}

// Enter records descending into one more directory level, failing once
// max depth is exceeded.
func (r *RecursionGuard) Enter() error {
	if r.max > 0 && r.depth >= r.max {
		return fmt.Errorf("%w: depth %d", ErrRecursionTooDeep, r.depth)
	}

	r.depth++

	return nil
}

// Leave records ascending back out of one directory level.
func (r *RecursionGuard) Leave() {
	if r.depth > 0 {
		r.depth--
	}
}
