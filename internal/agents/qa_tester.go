package agents

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"codeforge/internal/sandbox"
	"codeforge/internal/workflow"
)

// QATester executes the current candidate in the sandbox and turns the
// result into a report for the next generation step. It never returns an
// error for candidate faults: those are expected and feed the fix loop.
type QATester struct {
	runner *sandbox.Runner
	logger *zap.Logger
}

// NewQATester creates the test step.
func NewQATester(runner *sandbox.Runner, logger *zap.Logger) *QATester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QATester{runner: runner, logger: logger}
}

// Name implements workflow.Step.
func (a *QATester) Name() string { return "test" }

// Run executes state.Code and sets state.TestReport and state.Status.
func (a *QATester) Run(ctx context.Context, state *workflow.State) error {
	a.logger.Info("testing candidate",
		zap.String("run_id", state.RunID),
		zap.Int("iteration", state.Iteration))

	result := a.runner.Execute(ctx, state.Code)

	state.TestReport = buildReport(result, state.Requirements)
	if result.Success {
		state.Status = workflow.StatusPassed
		a.logger.Info("candidate passed", zap.String("run_id", state.RunID))
	} else {
		state.Status = workflow.StatusInProgress
		a.logger.Info("candidate failed",
			zap.String("run_id", state.RunID),
			zap.String("error", result.Error))
	}
	return nil
}

// buildReport formats the execution result as feedback for the model.
func buildReport(result *sandbox.Result, requirements string) string {
	if result.Success {
		return fmt.Sprintf(`TEST PASSED

The code executed successfully without errors.

Output:
%s

All requirements have been satisfied.`, result.Output())
	}

	report := fmt.Sprintf(`TEST FAILED

Error Details:
%s
`, result.Error)
	if out := result.Output(); out != "" {
		report += fmt.Sprintf(`
Partial Output:
%s
`, out)
	}
	report += fmt.Sprintf(`
The code needs to be fixed to address this error.

Requirements to satisfy:
%s`, requirements)
	return report
}
