package rule

import (
	"github.com/Sumatoshi-tech/javafmt/internal/arena"
	"github.com/Sumatoshi-tech/javafmt/internal/sourcemap"
)

// Context is the immutable per-file context every enabled rule receives —
// spec.md 3's ProcessingContext. Built once by the pipeline's format
// stage from a completed parse; rules read it, never write it.
type Context struct {
	SourcePath string
	SourceText []byte

	Arena    *arena.Arena
	Root     arena.NodeIndex
	Comments []arena.Comment

	Positions *sourcemap.Index

	EnabledRuleIDs map[string]bool
	// Params holds per-rule configuration, keyed by rule id, as loaded
	// from internal/config. Values are whatever the rule's own Apply
	// expects (ints, strings, bools) — the rule is responsible for type
	// assertions and sane defaults.
	Params map[string]map[string]any

	// Metadata is free-form scratch for whoever builds the Context; the
	// pipeline's format stage leaves it nil. Rules may read it but must
	// not rely on keys other rules didn't document.
	Metadata map[string]any
}

// RuleParams returns the configured parameters for ruleID, or an empty
// (never nil) map if none were configured.
func (c *Context) RuleParams(ruleID string) map[string]any {
	if p, ok := c.Params[ruleID]; ok {
		return p
	}

	return map[string]any{}
}

// Position converts a byte offset into a 1-based line/column position.
func (c *Context) Position(offset uint32) arena.Position {
	return c.Positions.Position(offset)
}

// Range converts a half-open [start, end) byte span into a line/column
// arena.Range. Matches the signature edit.Merge expects for its
// `positions` argument.
func (c *Context) Range(start, end uint32) arena.Range {
	return c.Positions.Range(start, end)
}
