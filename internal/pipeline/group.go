package pipeline

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/harvey/internal/model"
)

// ParallelStep runs its steps concurrently and waits for all of them.
// The steps must write disjoint fields of the investigation.
type ParallelStep struct {
	name  string
	steps []Step
}

// Parallel groups steps that have no data dependency on each other.
func Parallel(name string, steps ...Step) *ParallelStep {
	return &ParallelStep{name: name, steps: steps}
}

// Name returns the group name.
func (s *ParallelStep) Name() string {
	return s.name
}

// Steps returns the grouped steps.
func (s *ParallelStep) Steps() []Step {
	return s.steps
}

// Do runs every step to completion, even when a sibling fails, and
// returns all errors joined.
func (s *ParallelStep) Do(ctx context.Context, inv *model.Investigation) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)

	for _, step := range s.steps {
		g.Go(func() error {
			if err := step.Do(ctx, inv); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // errors are collected above

	return errors.Join(errs...)
}

// SequenceStep runs its steps in order and stops at the first error.
type SequenceStep struct {
	name  string
	steps []Step
}

// Sequence groups dependent steps so that they can run as one branch of a
// Parallel group.
func Sequence(name string, steps ...Step) *SequenceStep {
	return &SequenceStep{name: name, steps: steps}
}

// Name returns the group name.
func (s *SequenceStep) Name() string {
	return s.name
}

// Steps returns the grouped steps.
func (s *SequenceStep) Steps() []Step {
	return s.steps
}

// Do runs the steps in order.
func (s *SequenceStep) Do(ctx context.Context, inv *model.Investigation) error {
	for _, step := range s.steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step.Do(ctx, inv); err != nil {
			return err
		}
	}
	return nil
}
