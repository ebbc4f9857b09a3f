package rules_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/javafmt/internal/rule"
	"github.com/Sumatoshi-tech/javafmt/internal/rules"
	"github.com/Sumatoshi-tech/javafmt/internal/sourcemap"
)

func newContext(source string) *rule.Context {
	return &rule.Context{
		SourceText: []byte(source),
		Positions:  sourcemap.Build([]byte(source)),
	}
}

func TestLineLength_NoViolationUnderLimit(t *testing.T) {
	t.Parallel()

	r := rules.NewLineLength(120)
	rctx := newContext("short line\nanother short line\n")

	res, err := r.Apply(context.Background(), rctx)
	require.NoError(t, err)
	assert.Empty(t, res.Violations)
	assert.Empty(t, res.Edits)
}

func TestLineLength_FlagsLongLine(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 150)
	r := rules.NewLineLength(120)
	rctx := newContext(long + "\n")

	res, err := r.Apply(context.Background(), rctx)
	require.NoError(t, err)
	assert.Empty(t, res.Violations, "line-length reports no violation of its own; the engine synthesizes one from the edit")

	require.Len(t, res.Edits, 1)
	e := res.Edits[0]
	assert.Equal(t, rules.LineLengthRuleID, e.RuleID)
	assert.Equal(t, uint32(120), e.Range.Start)
	assert.Equal(t, "\n", e.Replacement)
}

func TestLineLength_ConfiguredMax(t *testing.T) {
	t.Parallel()

	r := rules.NewLineLength(120)
	rctx := newContext(strings.Repeat("b", 50) + "\n")
	rctx.Params = map[string]map[string]any{
		rules.LineLengthRuleID: {"max": 10},
	}

	res, err := r.Apply(context.Background(), rctx)
	require.NoError(t, err)
	require.Len(t, res.Edits, 1)
	assert.Equal(t, uint32(10), res.Edits[0].Range.Start)
}

func TestLineLength_ValidateRejectsEmptySource(t *testing.T) {
	t.Parallel()

	r := rules.NewLineLength(120)
	vr := r.Validate(newContext(""))
	assert.False(t, vr.OK)
}
