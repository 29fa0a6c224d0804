package wave

import (
	"errors"
	"fmt"
)

var (
	// ErrCapabilityUnavailable reports a surface without an acceleration context.
	ErrCapabilityUnavailable = errors.New("wave: graphics capability unavailable")
	// ErrPipelineBuildFailed reports a stage compile or program link failure.
	ErrPipelineBuildFailed = errors.New("wave: pipeline build failed")
)

// PipelineError describes a failed pipeline build step.
type PipelineError struct {
	Stage Stage  // zero for link failures
	Log   string // compiler or linker diagnostics
}

func (e *PipelineError) Error() string {
	if e.Stage == 0 {
		return fmt.Sprintf("wave: link program: %s", e.Log)
	}
	return fmt.Sprintf("wave: compile %s stage: %s", e.Stage, e.Log)
}

func (e *PipelineError) Unwrap() error {
	return ErrPipelineBuildFailed
}
