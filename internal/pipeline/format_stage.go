package pipeline

import (
	"context"
	"errors"

	"github.com/Sumatoshi-tech/javafmt/internal/rule"
	"github.com/Sumatoshi-tech/javafmt/internal/sourcemap"
)

// Mode mirrors rule.Mode at the pipeline boundary so callers of this
// package never need to import internal/rule directly.
type Mode = rule.Mode

const (
	ModeFormat = rule.ModeFormat
	ModeCheck  = rule.ModeCheck
)

// FormatStage runs the rule engine (spec.md 4.3) over a completed parse
// and releases the arena once the engine is done with it — the arena's
// lifetime is scoped to exactly this stage.
type FormatStage struct {
	Engine         *rule.Engine
	Mode           Mode
	EnabledRuleIDs map[string]bool
	RuleParams     map[string]map[string]any
}

// Name implements Stage.
func (s *FormatStage) Name() string { return "format" }

// Execute implements Stage[*ParsedFile, *FormattedOutput].
func (s *FormatStage) Execute(ctx context.Context, input *ParsedFile) StageResult[*FormattedOutput] {
	rctx := &rule.Context{
		SourcePath:     input.SourcePath,
		SourceText:     input.SourceText,
		Arena:          input.Result.Arena,
		Root:           input.Result.Root,
		Comments:       input.Result.Comments,
		Positions:      sourcemap.Build(input.SourceText),
		EnabledRuleIDs: s.EnabledRuleIDs,
		Params:         s.RuleParams,
	}
	defer rctx.Arena.Release()

	res, err := s.Engine.Run(ctx, rctx, s.Mode)
	if err != nil {
		kind := ErrorKindRuleFailure
		if errors.Is(err, context.DeadlineExceeded) {
			kind = ErrorKindTimeout
		}

		return Failure[*FormattedOutput](&PipelineError{
			Kind: kind, StageName: s.Name(), SourcePath: input.SourcePath,
			Message: "rule engine failed", Cause: err,
		})
	}

	return Success(&FormattedOutput{
		SourcePath: input.SourcePath,
		Text:       res.FinalText,
		Changed:    res.EditsApplied > 0,
		Violations: res.Violations,
	})
}
