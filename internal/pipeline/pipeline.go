// Package pipeline runs ordered sequences of fallible steps and defines the
// error kinds surfaced by the indexing and query paths.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Step is one named stage operating on shared state S.
type Step[S any] struct {
	Name string
	Run  func(ctx context.Context, state *S) error
}

// StepError reports which step stopped a pipeline.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Run executes steps in order and stops at the first failure, which is
// returned as a *StepError. Cancellation is checked between steps.
func Run[S any](ctx context.Context, state *S, steps ...Step[S]) error {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return &StepError{Step: step.Name, Err: err}
		}

		start := time.Now()
		if err := step.Run(ctx, state); err != nil {
			slog.Debug("pipeline step failed", "step", step.Name, "error", err)
			return &StepError{Step: step.Name, Err: err}
		}
		slog.Debug("pipeline step done", "step", step.Name, "duration", time.Since(start))
	}
	return nil
}
