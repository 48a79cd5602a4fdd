package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/harvey/internal/model"
)

// Step is one stage of an investigation.
type Step interface {
	// Do runs the step. Failed lookups are recorded on the investigation
	// and do not produce an error; an error means the step could not run
	// at all, usually because ctx was cancelled.
	Do(ctx context.Context, inv *model.Investigation) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// group is a Step made of other steps.
type group interface {
	Step
	Steps() []Step
}

// Pipeline runs steps in order.
type Pipeline struct {
	steps []Step

	logger *slog.Logger

	// continueOnError keeps running later steps after one fails.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue after a step
// fails. The failure is still recorded on the investigation.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in order. Cancellation is checked before each
// step; a cancelled run marks the investigation as timed out.
//
// It returns the first step error unless continueOnError is set.
func (p *Pipeline) Execute(ctx context.Context, inv *model.Investigation) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			inv.TimedOut = true
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"target", inv.Target,
		)

		if err := step.Do(ctx, inv); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"target", inv.Target,
				"error", err,
			)
			inv.Errors = append(inv.Errors, step.Name()+": "+err.Error())

			if !p.continueOnError {
				inv.PerformedSteps = append(inv.PerformedSteps, leafNames(step)...)
				return err
			}
		} else {
			p.logger.Debug("step completed",
				"step", step.Name(),
				"target", inv.Target,
			)
		}

		inv.PerformedSteps = append(inv.PerformedSteps, leafNames(step)...)
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// Run executes p for inv and finalizes it: the finish time is set and a
// Snapshot is guaranteed to exist even when the run was cancelled before
// reconciliation.
func Run(ctx context.Context, p *Pipeline, inv *model.Investigation) error {
	err := p.Execute(ctx, inv)

	if inv.Snapshot == nil {
		snap := inv.EnsureSnapshot()
		if inv.TimedOut {
			snap.Notes = append(snap.Notes, "investigation cancelled before reconciliation")
		}
	}
	inv.FinishedAt = time.Now()

	return err
}

// leafNames returns the names of the plain steps inside step.
func leafNames(step Step) []string {
	g, ok := step.(group)
	if !ok {
		return []string{step.Name()}
	}
	names := make([]string, 0)
	for _, s := range g.Steps() {
		names = append(names, leafNames(s)...)
	}
	return names
}
