package arena

import (
	"errors"
	"fmt"
)

// Hard caps enforced at growth time, per spec.md 4.1.
const (
	// MaxCells is the maximum number of cells an arena may hold.
	MaxCells = 10_000_000

	// MaxSourceBytes is the maximum size of a source buffer the parser
	// will accept, independent of any Arena instance.
	MaxSourceBytes = 10 * 1024 * 1024

	initialCapacity = 256
	growthFactor    = 2
)

// ErrCellCapExceeded is returned when an allocation would push the arena
// past MaxCells.
var ErrCellCapExceeded = errors.New("arena: cell count would exceed maximum")

// ErrHeapBudgetExceeded is returned when a heap-usage sample (taken every
// sampleInterval allocations) exceeds the arena's configured byte budget.
var ErrHeapBudgetExceeded = errors.New("arena: heap usage exceeds configured budget")

// ErrInvalidRange is returned when allocate is asked to record a cell whose
// start offset exceeds its end offset, or whose offsets exceed the source
// length recorded at construction.
var ErrInvalidRange = errors.New("arena: invalid node range")

// ErrLiveIndexOutOfRange is returned by any accessor given an index that
// is not less than the arena's current length.
var ErrLiveIndexOutOfRange = errors.New("arena: index is not a live node")

// sampleInterval is how often (in allocation count) the arena samples its
// own memory footprint against the configured byte budget. This limits the
// arena's own footprint; it does not attempt to model whole-process heap
// usage (see spec.md 9, "memory check every 100 allocations" note — this
// core keeps the cell cap explicit and leaves process-wide heap bounding
// to the host).
const sampleInterval = 100

// bytesPerCell approximates the in-memory footprint of one Cell, used only
// for the heap-budget sampling check (not the canonical Go struct size,
// which the compiler controls).
const bytesPerCell = 16

// Comment records one comment's metadata. Lifecycle mirrors the arena: a
// parallel, append-only slice populated during parsing and read-only
// afterward.
type Comment struct {
	Kind            CommentKind
	ContentOffset   uint32
	ContentLength   uint32
	AttachTo        NodeIndex
	LeadingTrailing Attachment
}

// CommentKind distinguishes line, block, and doc comments.
type CommentKind uint8

const (
	CommentLine CommentKind = iota
	CommentBlock
	CommentDoc
)

// Attachment records whether a comment attaches before or after its node.
type Attachment uint8

const (
	AttachLeading Attachment = iota
	AttachTrailing
)

// Arena is an append-only vector of fixed-width cells plus a child-list
// side table and a parallel comment slice. It exclusively owns its cells;
// nothing outside may retain a raw cell reference, only NodeIndex values.
// Created by the parser, read by every rule, destroyed as a unit at the
// end of the per-file pipeline.
type Arena struct {
	cells      []Cell
	childLists [][]NodeIndex
	comments   []Comment

	sourceLen  int
	maxCells   int
	byteBudget int64

	allocCount int
}

// Option configures a new Arena.
type Option func(*Arena)

// WithByteBudget sets a soft memory budget (sampled every 100 allocations).
// Zero (the default) disables the sampling check.
func WithByteBudget(bytes int64) Option {
	return func(a *Arena) { a.byteBudget = bytes }
}

// WithMaxCells overrides the default MaxCells cap, primarily for tests that
// want to exercise the cap without allocating ten million cells.
func WithMaxCells(n int) Option {
	return func(a *Arena) { a.maxCells = n }
}

// New creates an empty Arena sized for a source buffer of sourceLen bytes.
func New(sourceLen int, opts ...Option) *Arena {
	a := &Arena{
		cells:      make([]Cell, 0, initialCapacity),
		childLists: make([][]NodeIndex, 0, initialCapacity/4),
		sourceLen:  sourceLen,
		maxCells:   MaxCells,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Len returns the number of live cells.
func (a *Arena) Len() int { return len(a.cells) }

// Capacity returns the current backing-slice capacity.
func (a *Arena) Capacity() int { return cap(a.cells) }

// MemoryBytes estimates the arena's own footprint in bytes.
func (a *Arena) MemoryBytes() uint64 {
	cellBytes := uint64(cap(a.cells)) * bytesPerCell

	var childBytes uint64
	for _, list := range a.childLists {
		childBytes += uint64(cap(list)) * 4
	}

	return cellBytes + childBytes
}

// Allocate appends a new cell and returns its index. Preconditions:
// start <= end, both within [0, sourceLen]; typeTag is a recognized
// variant (checked by caller via TypeTag; this layer only range-checks
// offsets since the only "unrecognized" tag is TypeInvalid, which callers
// should never pass deliberately).
func (a *Arena) Allocate(typeTag TypeTag, start, end, data uint32) (NodeIndex, error) {
	if start > end || int(end) > a.sourceLen {
		return NoIndex, fmt.Errorf("%w: [%d,%d) vs source len %d", ErrInvalidRange, start, end, a.sourceLen)
	}

	if len(a.cells) >= a.maxCells {
		return NoIndex, fmt.Errorf("%w: at %d cells", ErrCellCapExceeded, a.maxCells)
	}

	a.allocCount++

	if a.byteBudget > 0 && a.allocCount%sampleInterval == 0 {
		if int64(a.MemoryBytes()) > a.byteBudget {
			return NoIndex, fmt.Errorf("%w: %d bytes over %d budget", ErrHeapBudgetExceeded, a.MemoryBytes(), a.byteBudget)
		}
	}

	if len(a.cells) == cap(a.cells) {
		a.growCells()
	}

	idx := NodeIndex(len(a.cells))
	a.cells = append(a.cells, Cell{TypeTag: typeTag, StartOffset: start, EndOffset: end, Data: data})

	return idx, nil
}

// growCells doubles the cells slice's capacity explicitly rather than
// relying on append's built-in growth, which drops to a ~1.25x factor past
// a few KiB and would no longer keep capacity a power-of-two multiple of
// initialCapacity (spec.md 220).
func (a *Arena) growCells() {
	next := cap(a.cells) * growthFactor
	if next == 0 {
		next = initialCapacity
	}

	grown := make([]Cell, len(a.cells), next)
	copy(grown, a.cells)
	a.cells = grown
}

// NewChildList reserves a fresh, empty child-list slot and returns its
// side-table index. Declaration-shaped cells store this index in Data.
func (a *Arena) NewChildList() uint32 {
	idx := uint32(len(a.childLists))
	a.childLists = append(a.childLists, nil)

	return idx
}

// AppendChild appends child to the child list at side-table index listIdx.
func (a *Arena) AppendChild(listIdx uint32, child NodeIndex) error {
	if int(listIdx) >= len(a.childLists) {
		return fmt.Errorf("%w: child list %d", ErrLiveIndexOutOfRange, listIdx)
	}

	a.childLists[listIdx] = append(a.childLists[listIdx], child)

	return nil
}

// live validates that i addresses an allocated cell.
func (a *Arena) live(i NodeIndex) error {
	if !i.Valid() || int(i) >= len(a.cells) {
		return fmt.Errorf("%w: %d", ErrLiveIndexOutOfRange, i)
	}

	return nil
}

// Type returns the TypeTag of node i.
func (a *Arena) Type(i NodeIndex) TypeTag {
	if a.live(i) != nil {
		return TypeInvalid
	}

	return a.cells[i].TypeTag
}

// Start returns the start byte offset of node i.
func (a *Arena) Start(i NodeIndex) uint32 {
	if a.live(i) != nil {
		return 0
	}

	return a.cells[i].StartOffset
}

// End returns the end byte offset of node i.
func (a *Arena) End(i NodeIndex) uint32 {
	if a.live(i) != nil {
		return 0
	}

	return a.cells[i].EndOffset
}

// Data returns the raw Data field of node i.
func (a *Arena) Data(i NodeIndex) uint32 {
	if a.live(i) != nil {
		return 0
	}

	return a.cells[i].Data
}

// SetData overwrites the Data field of node i. The only mutator available
// after allocation; used exclusively by the parser during parent fix-up
// (e.g. patching the real end offset, or attaching a deferred child-list
// index) before the arena is handed to the rule engine.
func (a *Arena) SetData(i NodeIndex, v uint32) error {
	if err := a.live(i); err != nil {
		return err
	}

	a.cells[i].Data = v

	return nil
}

// SetEnd patches node i's recorded end offset. Used by productions that
// allocate their node before parsing children (spec.md 4.2) and so must
// patch the real end once parsing of the subtree completes.
func (a *Arena) SetEnd(i NodeIndex, end uint32) error {
	if err := a.live(i); err != nil {
		return err
	}

	if end < a.cells[i].StartOffset {
		return fmt.Errorf("%w: end %d before start %d", ErrInvalidRange, end, a.cells[i].StartOffset)
	}

	a.cells[i].EndOffset = end

	return nil
}

// Children returns the child-list stored at node i's Data field, or nil if
// i's type does not carry a child list.
func (a *Arena) Children(i NodeIndex) []NodeIndex {
	if a.live(i) != nil {
		return nil
	}

	cell := a.cells[i]
	if !cell.TypeTag.HasChildList() {
		return nil
	}

	if int(cell.Data) >= len(a.childLists) {
		return nil
	}

	return a.childLists[cell.Data]
}

// AddComment appends a comment record. Lifecycle mirrors the arena.
func (a *Arena) AddComment(c Comment) {
	a.comments = append(a.comments, c)
}

// Comments returns all comments recorded during parsing, in source order.
func (a *Arena) Comments() []Comment {
	return a.comments
}

// Release drops all cells, child lists, and comments in one bulk
// operation — mirroring the arena's "destroyed as a unit" lifecycle.
// After Release, the Arena must not be used.
func (a *Arena) Release() {
	a.cells = nil
	a.childLists = nil
	a.comments = nil
}
