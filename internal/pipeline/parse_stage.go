package pipeline

import (
	"context"
	"errors"
	"os"

	"github.com/Sumatoshi-tech/javafmt/internal/parser"
	"github.com/Sumatoshi-tech/javafmt/internal/security"
)

// ParsedFile is the parse stage's output: the completed parse plus the
// raw source text the rule engine and writer both need downstream.
type ParsedFile struct {
	SourcePath string
	SourceText []byte
	Result     *parser.Result
}

// ParseStage reads a file from disk, enforces the security guards
// (spec.md 7: extension allowlist, size cap, path sanitization), and
// runs the recursive-descent parser over it.
type ParseStage struct {
	Guards        *security.Guards
	TargetVersion string
}

// Name implements Stage.
func (s *ParseStage) Name() string { return "parse" }

// Execute implements Stage[string, *ParsedFile].
func (s *ParseStage) Execute(ctx context.Context, path string) StageResult[*ParsedFile] {
	if err := ctx.Err(); err != nil {
		return Failure[*ParsedFile](&PipelineError{
			Kind: ErrorKindTimeout, StageName: s.Name(), SourcePath: path,
			Message: "context cancelled before parse", Cause: err,
		})
	}

	clean, err := s.Guards.SanitizePath(path)
	if err != nil {
		return Failure[*ParsedFile](&PipelineError{
			Kind: ErrorKindSecurityViolation, StageName: s.Name(), SourcePath: path,
			Message: "path rejected", Cause: err,
		})
	}

	if err := s.Guards.CheckExtension(clean); err != nil {
		return Failure[*ParsedFile](&PipelineError{
			Kind: ErrorKindSecurityViolation, StageName: s.Name(), SourcePath: path,
			Message: "extension rejected", Cause: err,
		})
	}

	info, err := os.Stat(clean)
	if err != nil {
		return Failure[*ParsedFile](&PipelineError{
			Kind: ErrorKindIO, StageName: s.Name(), SourcePath: path,
			Message: "cannot stat file", Cause: err,
		})
	}

	if err := s.Guards.CheckSize(info.Size()); err != nil {
		return Failure[*ParsedFile](&PipelineError{
			Kind: ErrorKindSecurityViolation, StageName: s.Name(), SourcePath: path,
			Message: "file too large", Cause: err,
		})
	}

	source, err := os.ReadFile(clean)
	if err != nil {
		return Failure[*ParsedFile](&PipelineError{
			Kind: ErrorKindIO, StageName: s.Name(), SourcePath: path,
			Message: "cannot read file", Cause: err,
		})
	}

	res, err := parser.Parse(source, s.TargetVersion)
	if err != nil {
		var secErr *parser.SecurityError
		if errors.As(err, &secErr) {
			return Failure[*ParsedFile](&PipelineError{
				Kind: ErrorKindSecurityViolation, StageName: s.Name(), SourcePath: path,
				Message: "parser security limit exceeded", Cause: err,
			})
		}

		return Failure[*ParsedFile](&PipelineError{
			Kind: ErrorKindParse, StageName: s.Name(), SourcePath: path,
			Message: "parse failed", Cause: err,
		})
	}

	if fe := res.FirstError(); fe != nil {
		return Failure[*ParsedFile](&PipelineError{
			Kind: ErrorKindParse, StageName: s.Name(), SourcePath: path,
			Message: "syntax error", Cause: fe,
		})
	}

	return Success(&ParsedFile{SourcePath: clean, SourceText: source, Result: res})
}
