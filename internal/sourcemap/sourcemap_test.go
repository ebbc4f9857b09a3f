package sourcemap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/javafmt/internal/sourcemap"
)

func TestPosition(t *testing.T) {
	t.Parallel()

	src := []byte("abc\ndefg\nh")
	idx := sourcemap.Build(src)

	cases := []struct {
		offset uint32
		line   int
		col    int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 1, 4}, // the newline itself
		{4, 2, 1}, // 'd'
		{8, 2, 5}, // the second newline
		{9, 3, 1}, // 'h'
	}

	for _, c := range cases {
		pos := idx.Position(c.offset)
		assert.Equal(t, c.line, pos.Line, "offset %d line", c.offset)
		assert.Equal(t, c.col, pos.Column, "offset %d column", c.offset)
	}
}

func TestRange(t *testing.T) {
	t.Parallel()

	src := []byte("0123456789\nabcdef")
	idx := sourcemap.Build(src)

	r := idx.Range(5, 12)
	assert.Equal(t, 1, r.Start.Line)
	assert.Equal(t, 6, r.Start.Column)
	assert.Equal(t, 2, r.End.Line)
	assert.Equal(t, 2, r.End.Column)
	assert.True(t, r.Valid())
}
