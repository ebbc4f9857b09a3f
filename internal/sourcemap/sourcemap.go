// Package sourcemap converts byte offsets — the only coordinate the
// arena-backed AST knows about — into the 1-based line/column positions
// spec.md's Violation and Edit reports are expressed in.
package sourcemap

import (
	"sort"

	"github.com/Sumatoshi-tech/javafmt/internal/arena"
)

// Index is a precomputed line-start table for one source buffer, letting
// Position run in O(log lines) instead of rescanning from byte zero on
// every lookup.
type Index struct {
	lineStarts []uint32
}

// Build scans source once and records the byte offset of the first byte
// of every line (lineStarts[0] is always 0, the start of line 1).
func Build(source []byte) *Index {
	starts := make([]uint32, 1, 64)
	starts[0] = 0

	for i, b := range source {
		if b == '\n' {
			starts = append(starts, uint32(i+1))
		}
	}

	return &Index{lineStarts: starts}
}

// Position converts a byte offset into a 1-based (line, column) pair.
// Offsets past the end of the source clamp to the last recorded line.
func (idx *Index) Position(offset uint32) arena.Position {
	// Find the greatest lineStarts[i] <= offset.
	i := sort.Search(len(idx.lineStarts), func(i int) bool {
		return idx.lineStarts[i] > offset
	}) - 1

	if i < 0 {
		i = 0
	}

	return arena.Position{
		Line:   i + 1,
		Column: int(offset-idx.lineStarts[i]) + 1,
	}
}

// Range converts a half-open [start, end) byte span into an arena.Range.
func (idx *Index) Range(start, end uint32) arena.Range {
	return arena.Range{Start: idx.Position(start), End: idx.Position(end)}
}
