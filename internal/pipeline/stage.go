package pipeline

import "context"

// Stage is one link in the per-file chain of responsibility. Each stage
// takes the previous stage's output and either produces its own output
// or short-circuits the chain with a PipelineError (spec.md 4.2).
type Stage[I, O any] interface {
	Name() string
	Execute(ctx context.Context, input I) StageResult[O]
}
