package rules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/javafmt/internal/rules"
)

func TestBraceStyle_SameLineAcceptsAttachedBrace(t *testing.T) {
	t.Parallel()

	src := "class X {\n    void f() {\n    }\n}\n"
	r := rules.NewBraceStyle(rules.BraceStyleSameLine)
	rctx := newContext(src)

	res, err := r.Apply(context.Background(), rctx)
	require.NoError(t, err)
	assert.Empty(t, res.Violations)
}

func TestBraceStyle_SameLineFlagsBraceOnOwnLine(t *testing.T) {
	t.Parallel()

	src := "class X\n{\n}\n"
	r := rules.NewBraceStyle(rules.BraceStyleSameLine)
	rctx := newContext(src)

	res, err := r.Apply(context.Background(), rctx)
	require.NoError(t, err)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, rules.BraceStyleRuleID, res.Violations[0].RuleID)

	require.Len(t, res.Edits, 1)
	assert.Equal(t, " ", res.Edits[0].Replacement)
}

func TestBraceStyle_NextLineAcceptsOwnLineBrace(t *testing.T) {
	t.Parallel()

	src := "class X\n{\n}\n"
	r := rules.NewBraceStyle(rules.BraceStyleNextLine)
	rctx := newContext(src)

	res, err := r.Apply(context.Background(), rctx)
	require.NoError(t, err)
	assert.Empty(t, res.Violations)
}

func TestBraceStyle_NextLineFlagsAttachedBrace(t *testing.T) {
	t.Parallel()

	src := "class X {\n}\n"
	r := rules.NewBraceStyle(rules.BraceStyleNextLine)
	rctx := newContext(src)

	res, err := r.Apply(context.Background(), rctx)
	require.NoError(t, err)
	require.Len(t, res.Violations, 1)

	require.Len(t, res.Edits, 1)
	assert.Equal(t, "\n", res.Edits[0].Replacement)
}

func TestBraceStyle_IgnoresBraceInStringLiteral(t *testing.T) {
	t.Parallel()

	src := "class X {\n    String s = \"{\";\n}\n"
	r := rules.NewBraceStyle(rules.BraceStyleSameLine)
	rctx := newContext(src)

	res, err := r.Apply(context.Background(), rctx)
	require.NoError(t, err)
	assert.Empty(t, res.Violations)
}

func TestBraceStyle_ConfiguredStyleOverride(t *testing.T) {
	t.Parallel()

	src := "class X\n{\n}\n"
	r := rules.NewBraceStyle(rules.BraceStyleNextLine)
	rctx := newContext(src)
	rctx.Params = map[string]map[string]any{
		rules.BraceStyleRuleID: {"style": "same-line"},
	}

	res, err := r.Apply(context.Background(), rctx)
	require.NoError(t, err)
	require.Len(t, res.Violations, 1)
}

func TestBraceStyle_ValidateRejectsEmptySource(t *testing.T) {
	t.Parallel()

	r := rules.NewBraceStyle(rules.BraceStyleSameLine)
	vr := r.Validate(newContext(""))
	assert.False(t, vr.OK)
}
