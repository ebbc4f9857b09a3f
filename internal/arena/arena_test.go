package arena_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/javafmt/internal/arena"
)

func TestAllocate_BasicInvariants(t *testing.T) {
	a := arena.New(100)

	idx, err := a.Allocate(arena.TypeIdentifier, 0, 5, 0)
	require.NoError(t, err)
	assert.True(t, idx.Valid())
	assert.Equal(t, arena.TypeIdentifier, a.Type(idx))
	assert.Equal(t, uint32(0), a.Start(idx))
	assert.Equal(t, uint32(5), a.End(idx))
}

func TestAllocate_RejectsInvertedRange(t *testing.T) {
	a := arena.New(100)

	_, err := a.Allocate(arena.TypeIdentifier, 10, 5, 0)
	require.ErrorIs(t, err, arena.ErrInvalidRange)
}

func TestAllocate_RejectsOffsetsPastSourceLength(t *testing.T) {
	a := arena.New(10)

	_, err := a.Allocate(arena.TypeIdentifier, 0, 20, 0)
	require.ErrorIs(t, err, arena.ErrInvalidRange)
}

func TestAllocate_EnforcesCellCap(t *testing.T) {
	a := arena.New(1000, arena.WithMaxCells(2))

	_, err := a.Allocate(arena.TypeIdentifier, 0, 1, 0)
	require.NoError(t, err)

	_, err = a.Allocate(arena.TypeIdentifier, 0, 1, 0)
	require.NoError(t, err)

	_, err = a.Allocate(arena.TypeIdentifier, 0, 1, 0)
	require.ErrorIs(t, err, arena.ErrCellCapExceeded)
}

func TestAllocate_EnforcesByteBudget(t *testing.T) {
	a := arena.New(1000, arena.WithByteBudget(1))

	var lastErr error

	for range 200 {
		_, lastErr = a.Allocate(arena.TypeIdentifier, 0, 1, 0)
		if lastErr != nil {
			break
		}
	}

	require.ErrorIs(t, lastErr, arena.ErrHeapBudgetExceeded)
}

func TestAccessors_RejectDeadIndex(t *testing.T) {
	a := arena.New(100)

	assert.Equal(t, arena.TypeInvalid, a.Type(arena.NodeIndex(42)))
	assert.Equal(t, arena.TypeInvalid, a.Type(arena.NoIndex))

	err := a.SetData(arena.NodeIndex(42), 1)
	require.ErrorIs(t, err, arena.ErrLiveIndexOutOfRange)
}

func TestChildList_AppendAndRead(t *testing.T) {
	a := arena.New(100)

	listIdx := a.NewChildList()
	parent, err := a.Allocate(arena.TypeBlock, 0, 10, listIdx)
	require.NoError(t, err)

	child1, err := a.Allocate(arena.TypeExprStatement, 1, 3, 0)
	require.NoError(t, err)

	child2, err := a.Allocate(arena.TypeExprStatement, 4, 6, 0)
	require.NoError(t, err)

	require.NoError(t, a.AppendChild(listIdx, child1))
	require.NoError(t, a.AppendChild(listIdx, child2))

	assert.Equal(t, []arena.NodeIndex{child1, child2}, a.Children(parent))
}

func TestChildren_NonDeclNodeReturnsNil(t *testing.T) {
	a := arena.New(100)

	idx, err := a.Allocate(arena.TypeIdentifier, 0, 5, 0)
	require.NoError(t, err)

	assert.Nil(t, a.Children(idx))
}

func TestSetEnd_PatchesAfterChildrenParsed(t *testing.T) {
	a := arena.New(100)

	idx, err := a.Allocate(arena.TypeBlock, 5, 5, a.NewChildList())
	require.NoError(t, err)

	require.NoError(t, a.SetEnd(idx, 42))
	assert.Equal(t, uint32(42), a.End(idx))

	err = a.SetEnd(idx, 0)
	require.ErrorIs(t, err, arena.ErrInvalidRange)
}

func TestRelease_DropsAllState(t *testing.T) {
	a := arena.New(100)

	_, err := a.Allocate(arena.TypeIdentifier, 0, 5, 0)
	require.NoError(t, err)

	a.Release()
	assert.Equal(t, 0, a.Len())
}

func TestComments_RecordedInOrder(t *testing.T) {
	a := arena.New(100)

	a.AddComment(arena.Comment{Kind: arena.CommentLine, ContentOffset: 0, ContentLength: 10, AttachTo: arena.NodeIndex(0), LeadingTrailing: arena.AttachLeading})
	a.AddComment(arena.Comment{Kind: arena.CommentDoc, ContentOffset: 20, ContentLength: 30, AttachTo: arena.NodeIndex(1), LeadingTrailing: arena.AttachLeading})

	comments := a.Comments()
	require.Len(t, comments, 2)
	assert.Equal(t, arena.CommentDoc, comments[1].Kind)
}

func TestRange_OverlapsAndOrdering(t *testing.T) {
	r1 := arena.Range{Start: arena.Position{Line: 1, Column: 1}, End: arena.Position{Line: 1, Column: 10}}
	r2 := arena.Range{Start: arena.Position{Line: 1, Column: 5}, End: arena.Position{Line: 1, Column: 15}}
	r3 := arena.Range{Start: arena.Position{Line: 1, Column: 10}, End: arena.Position{Line: 1, Column: 20}}

	assert.True(t, r1.Overlaps(r2))
	assert.False(t, r1.Overlaps(r3), "touching at a single point is not an overlap")
	assert.True(t, r1.Valid())
}
