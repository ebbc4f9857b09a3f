package rules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/javafmt/internal/rules"
)

func TestIndentation_NoViolationWhenAlreadyIndented(t *testing.T) {
	t.Parallel()

	src := "class X {\n    int a;\n}\n"
	r := rules.NewIndentation(4, false)
	rctx := newContext(src)

	res, err := r.Apply(context.Background(), rctx)
	require.NoError(t, err)
	assert.Empty(t, res.Violations)
	assert.Empty(t, res.Edits)
}

func TestIndentation_FlagsWrongDepth(t *testing.T) {
	t.Parallel()

	src := "class X {\nint a;\n}\n"
	r := rules.NewIndentation(4, false)
	rctx := newContext(src)

	res, err := r.Apply(context.Background(), rctx)
	require.NoError(t, err)
	require.Len(t, res.Violations, 1)

	v := res.Violations[0]
	assert.Equal(t, rules.IndentationRuleID, v.RuleID)
	require.Len(t, res.Edits, 1)
	assert.Equal(t, "    ", res.Edits[0].Replacement)
}

func TestIndentation_DedentsClosingBrace(t *testing.T) {
	t.Parallel()

	src := "class X {\n    if (a) {\n        int a;\n    }\n}\n"
	r := rules.NewIndentation(4, false)
	rctx := newContext(src)

	res, err := r.Apply(context.Background(), rctx)
	require.NoError(t, err)
	assert.Empty(t, res.Violations)
}

func TestIndentation_UsesTabsWhenConfigured(t *testing.T) {
	t.Parallel()

	src := "class X {\n\tint a;\n}\n"
	r := rules.NewIndentation(4, true)
	rctx := newContext(src)

	res, err := r.Apply(context.Background(), rctx)
	require.NoError(t, err)
	assert.Empty(t, res.Violations)
}

func TestIndentation_IgnoresBlankLines(t *testing.T) {
	t.Parallel()

	src := "class X {\n\n    int a;\n}\n"
	r := rules.NewIndentation(4, false)
	rctx := newContext(src)

	res, err := r.Apply(context.Background(), rctx)
	require.NoError(t, err)
	assert.Empty(t, res.Violations)
}

func TestIndentation_ValidateRejectsEmptySource(t *testing.T) {
	t.Parallel()

	r := rules.NewIndentation(4, false)
	vr := r.Validate(newContext(""))
	assert.False(t, vr.OK)
}
