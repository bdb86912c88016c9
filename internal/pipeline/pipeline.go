package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/sectxt/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the run the
// previous steps filled in.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state (fetcher, key, store)
// 2. It provides a Name() method for logging and the run record
type Step interface {
	// Do executes the pipeline step.
	// Returns an error if the step fails critically; outcomes such as a
	// document without Contact are recorded in the run and return nil.
	Do(ctx context.Context, run *model.Run) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps in order.
type Pipeline struct {
	steps           []Step
	logger          *slog.Logger
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

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails. The last error is kept in the run.
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

// Execute runs all pipeline steps in sequence.
//
// Design decision: We check the context before each step rather than
// during, because steps handle their own timeouts (fetches carry the
// client timeout).
//
// Returns the first error encountered if continueOnError is false,
// or nil if all steps complete. Step errors are recorded in the run.
func (p *Pipeline) Execute(ctx context.Context, run *model.Run) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"source", run.Source,
				"reason", err,
			)
			recordError(run, err)
			return err
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"source", run.Source,
		)

		if err := step.Do(ctx, run); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"source", run.Source,
				"error", err,
			)
			recordError(run, err)
			if !p.continueOnError {
				return err
			}
		}

		run.PerformedSteps = append(run.PerformedSteps, step.Name())
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

func recordError(run *model.Run, err error) {
	run.Error = err
	run.ErrorMessage = err.Error()
}
