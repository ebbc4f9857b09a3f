package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// WriteStage persists a FormattedOutput back to disk (format mode) or
// passes it through unchanged (check mode, where nothing is written).
// Writes are atomic: the new content lands in a sibling temp file, is
// fsynced, then renamed over the original (spec.md 7's crash-safety
// requirement — a process kill mid-write must never leave a truncated
// source file).
type WriteStage struct {
	// DryRun disables the write entirely (check mode) — the stage just
	// forwards its input.
	DryRun bool
}

// Name implements Stage.
func (s *WriteStage) Name() string { return "write" }

// Execute implements Stage[*FormattedOutput, *FormattedOutput].
func (s *WriteStage) Execute(_ context.Context, input *FormattedOutput) StageResult[*FormattedOutput] {
	if s.DryRun || !input.Changed {
		return Success(input)
	}

	dir := filepath.Dir(input.SourcePath)
	tmpName := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(input.SourcePath), uuid.NewString()))

	info, err := os.Stat(input.SourcePath)
	mode := os.FileMode(0o644)
	if err == nil {
		mode = info.Mode()
	}

	f, err := os.OpenFile(tmpName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return Failure[*FormattedOutput](&PipelineError{
			Kind: ErrorKindIO, StageName: s.Name(), SourcePath: input.SourcePath,
			Message: "cannot create temp file", Cause: err,
		})
	}

	if _, err := f.WriteString(input.Text); err != nil {
		f.Close()
		os.Remove(tmpName)

		return Failure[*FormattedOutput](&PipelineError{
			Kind: ErrorKindIO, StageName: s.Name(), SourcePath: input.SourcePath,
			Message: "write failed", Cause: err,
		})
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpName)

		return Failure[*FormattedOutput](&PipelineError{
			Kind: ErrorKindIO, StageName: s.Name(), SourcePath: input.SourcePath,
			Message: "fsync failed", Cause: err,
		})
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpName)

		return Failure[*FormattedOutput](&PipelineError{
			Kind: ErrorKindIO, StageName: s.Name(), SourcePath: input.SourcePath,
			Message: "close failed", Cause: err,
		})
	}

	if err := os.Rename(tmpName, input.SourcePath); err != nil {
		os.Remove(tmpName)

		return Failure[*FormattedOutput](&PipelineError{
			Kind: ErrorKindIO, StageName: s.Name(), SourcePath: input.SourcePath,
			Message: "rename failed", Cause: err,
		})
	}

	return Success(input)
}
