package parser

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/javafmt/internal/arena"
)

// Security caps, per spec.md 4.2.
const (
	MaxInputBytes        = arena.MaxSourceBytes
	MaxNestingDepth       = 500
	MaxIdentifierLength   = 4096
)

// ErrInputTooLarge is returned when the source buffer exceeds MaxInputBytes.
var ErrInputTooLarge = errors.New("parser: input exceeds maximum source size")

// ErrNestingTooDeep is returned when a production would exceed MaxNestingDepth.
var ErrNestingTooDeep = errors.New("parser: nesting depth exceeds limit")

// ErrIdentifierTooLong is returned when a scanned identifier exceeds MaxIdentifierLength.
var ErrIdentifierTooLong = errors.New("parser: identifier exceeds maximum length")

// SyntaxError records one recovered parse error: a position, and the
// expected vs. actual token description.
type SyntaxError struct {
	Pos      arena.Position
	Expected string
	Actual   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Pos, e.Expected, e.Actual)
}

// SecurityError reports a violation of one of the parser's hard caps.
// Distinct from SyntaxError: security errors abort parsing entirely,
// rather than triggering panic-mode recovery.
type SecurityError struct {
	Cause error
	Pos   arena.Position
}

func (e *SecurityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Cause)
}

func (e *SecurityError) Unwrap() error { return e.Cause }
