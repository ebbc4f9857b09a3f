package rule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/javafmt/internal/edit"
	"github.com/Sumatoshi-tech/javafmt/internal/rule"
	"github.com/Sumatoshi-tech/javafmt/internal/sourcemap"
)

type fakeRule struct {
	id       string
	priority int
	applyFn  func(ctx context.Context, rctx *rule.Context) (rule.ApplyResult, error)
	maxTime  time.Duration
}

func (f *fakeRule) RuleID() string                        { return f.id }
func (f *fakeRule) Priority() int                         { return f.priority }
func (f *fakeRule) Validate(*rule.Context) rule.ValidationResult { return rule.Valid() }
func (f *fakeRule) MaxExecutionTime() time.Duration       { return f.maxTime }
func (f *fakeRule) MaxMemoryBytes() int64                 { return 0 }

func (f *fakeRule) Apply(ctx context.Context, rctx *rule.Context) (rule.ApplyResult, error) {
	return f.applyFn(ctx, rctx)
}

func newContext(source string) *rule.Context {
	return &rule.Context{
		SourceText: []byte(source),
		Positions:  sourcemap.Build([]byte(source)),
	}
}

func TestEngine_FormatMode_AppliesEdits(t *testing.T) {
	t.Parallel()

	r := &fakeRule{
		id:       "insert-a",
		priority: 10,
		applyFn: func(context.Context, *rule.Context) (rule.ApplyResult, error) {
			return rule.ApplyResult{
				Edits: []edit.Edit{{Range: edit.ByteRange{Start: 0, End: 0}, Replacement: "X", RuleID: "insert-a", Priority: 10}},
			}, nil
		},
	}

	eng := rule.NewEngine([]rule.Rule{r})
	res, err := eng.Run(context.Background(), newContext("abc"), rule.ModeFormat)
	require.NoError(t, err)
	assert.Equal(t, "Xabc", res.FinalText)
	assert.Equal(t, 1, res.EditsApplied)
}

func TestEngine_CheckMode_NoTextChange(t *testing.T) {
	t.Parallel()

	r := &fakeRule{
		id:       "insert-a",
		priority: 10,
		applyFn: func(context.Context, *rule.Context) (rule.ApplyResult, error) {
			return rule.ApplyResult{
				Edits: []edit.Edit{{Range: edit.ByteRange{Start: 0, End: 0}, Replacement: "X", RuleID: "insert-a", Priority: 10}},
			}, nil
		},
	}

	eng := rule.NewEngine([]rule.Rule{r})
	res, err := eng.Run(context.Background(), newContext("abc"), rule.ModeCheck)
	require.NoError(t, err)
	assert.Equal(t, "abc", res.FinalText)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, "insert-a", res.Violations[0].RuleID)
	assert.Contains(t, res.Violations[0].Message, edit.KindWouldEdit)
}

func TestEngine_RuleFailureIsolated(t *testing.T) {
	t.Parallel()

	failing := &fakeRule{
		id:       "boom",
		priority: 5,
		applyFn: func(context.Context, *rule.Context) (rule.ApplyResult, error) {
			return rule.ApplyResult{}, assert.AnError
		},
	}
	ok := &fakeRule{
		id:       "fine",
		priority: 10,
		applyFn: func(context.Context, *rule.Context) (rule.ApplyResult, error) {
			return rule.ApplyResult{
				Edits: []edit.Edit{{Range: edit.ByteRange{Start: 0, End: 0}, Replacement: "Y", RuleID: "fine", Priority: 10}},
			}, nil
		},
	}

	eng := rule.NewEngine([]rule.Rule{failing, ok})
	res, err := eng.Run(context.Background(), newContext("abc"), rule.ModeFormat)
	require.NoError(t, err)
	assert.Equal(t, "Yabc", res.FinalText)

	var sawFailure bool
	for _, v := range res.Violations {
		if v.RuleID == "boom" {
			sawFailure = true
		}
	}
	assert.True(t, sawFailure, "expected a RuleFailure violation for the failing rule")
}

func TestEngine_Timeout(t *testing.T) {
	t.Parallel()

	slow := &fakeRule{
		id:       "slow",
		priority: 1,
		maxTime:  10 * time.Millisecond,
		applyFn: func(ctx context.Context, _ *rule.Context) (rule.ApplyResult, error) {
			<-ctx.Done()
			time.Sleep(50 * time.Millisecond) // keep "running" past the deadline

			return rule.ApplyResult{}, nil
		},
	}

	eng := rule.NewEngine([]rule.Rule{slow})
	res, err := eng.Run(context.Background(), newContext("abc"), rule.ModeFormat)
	require.NoError(t, err)
	require.Len(t, res.Violations, 1)
	assert.Contains(t, res.Violations[0].Message, "rule: execution deadline exceeded")
}
