package workflow

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Step is one stage of the pipeline. Steps mutate the state they are given
// and return an error only for fatal conditions (oracle faults); candidate
// execution failures are recorded in the state, not returned.
type Step interface {
	Name() string
	Run(ctx context.Context, state *State) error
}

// Engine drives the pipeline: REQUIREMENTS → GENERATE → TEST → ROUTE,
// looping back to GENERATE on a retry decision.
type Engine struct {
	requirements Step
	generate     Step
	test         Step
	logger       *zap.Logger
}

// NewEngine wires the three pipeline steps. A nil logger disables logging.
func NewEngine(requirements, generate, test Step, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		requirements: requirements,
		generate:     generate,
		test:         test,
		logger:       logger,
	}
}

// Run executes the workflow for a single request. The returned state is
// terminal (passed or failed) unless an oracle fault aborted the run, in
// which case the error carries the fault and the state holds whatever
// progress was made.
func (e *Engine) Run(ctx context.Context, userRequest string, maxIterations int) (*State, error) {
	if maxIterations < 1 {
		return nil, fmt.Errorf("max iterations must be at least 1, got %d", maxIterations)
	}

	state := NewState(userRequest, maxIterations)
	e.logger.Info("workflow started",
		zap.String("run_id", state.RunID),
		zap.Int("max_iterations", maxIterations))

	if err := e.runStep(ctx, e.requirements, state); err != nil {
		return state, err
	}

	for {
		if err := e.runStep(ctx, e.generate, state); err != nil {
			return state, err
		}
		if err := e.runStep(ctx, e.test, state); err != nil {
			return state, err
		}

		passed := state.Status == StatusPassed
		state.Records = append(state.Records, IterationRecord{
			Iteration: state.Iteration,
			Code:      state.Code,
			Report:    state.TestReport,
			Passed:    passed,
		})

		decision := Route(passed, state.Iteration, state.MaxIterations)
		e.logger.Info("route decision",
			zap.String("run_id", state.RunID),
			zap.Int("iteration", state.Iteration),
			zap.Bool("passed", passed),
			zap.Stringer("decision", decision))

		switch decision {
		case StopSuccess:
			state.Status = StatusPassed
			state.FinishedAt = time.Now()
			return state, nil
		case StopExhausted:
			state.Status = StatusFailed
			state.FinishedAt = time.Now()
			return state, nil
		case Retry:
			state.Iteration++
		}
	}
}

func (e *Engine) runStep(ctx context.Context, step Step, state *State) error {
	start := time.Now()
	if err := step.Run(ctx, state); err != nil {
		e.logger.Error("step failed",
			zap.String("run_id", state.RunID),
			zap.String("step", step.Name()),
			zap.Error(err))
		return fmt.Errorf("%s step: %w", step.Name(), err)
	}
	e.logger.Debug("step finished",
		zap.String("run_id", state.RunID),
		zap.String("step", step.Name()),
		zap.Duration("duration", time.Since(start)))
	return nil
}
