// internal/runctx/runctx.go
package runctx

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type key int

const runKey key = 0

// Run identifies one scrape run in logs and errors
type Run struct {
	ID        string
	StartTime time.Time
}

// WithRun attaches a new Run to ctx unless one is already present
func WithRun(ctx context.Context) context.Context {
	if _, ok := ctx.Value(runKey).(*Run); ok {
		return ctx
	}
	return context.WithValue(ctx, runKey, &Run{
		ID:        uuid.NewString(),
		StartTime: time.Now(),
	})
}

// FromContext returns the Run stored in ctx, or a placeholder
func FromContext(ctx context.Context) *Run {
	if r, ok := ctx.Value(runKey).(*Run); ok {
		return r
	}
	return &Run{
		ID:        "unknown",
		StartTime: time.Now(),
	}
}

// RunError wraps an error with the run id
type RunError struct {
	RunID string
	Err   error
}

// Error implements the error interface
func (e *RunError) Error() string {
	return fmt.Sprintf("[%s] %v", e.RunID, e.Err)
}

// Unwrap returns the underlying error
func (e *RunError) Unwrap() error {
	return e.Err
}

// NewRunError wraps err with the run id from ctx. A nil err stays nil.
func NewRunError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	return &RunError{
		RunID: FromContext(ctx).ID,
		Err:   err,
	}
}
