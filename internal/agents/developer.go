package agents

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"codeforge/internal/llm"
	"codeforge/internal/sandbox"
	"codeforge/internal/workflow"
)

// Developer generates candidate code. On the first iteration it writes
// from the requirements alone; on later iterations it also sees the prior
// candidate and its failure report.
type Developer struct {
	client llm.Client
	logger *zap.Logger
}

// NewDeveloper creates the generation step.
func NewDeveloper(client llm.Client, logger *zap.Logger) *Developer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Developer{client: client, logger: logger}
}

// Name implements workflow.Step.
func (a *Developer) Name() string { return "generate" }

// Run populates state.Code with a fence-stripped candidate.
func (a *Developer) Run(ctx context.Context, state *workflow.State) error {
	a.logger.Info("generating code",
		zap.String("run_id", state.RunID),
		zap.Int("iteration", state.Iteration))

	prompt := initialCodePrompt(state.Requirements)
	if state.Iteration > 1 {
		prompt = fixCodePrompt(state)
	}

	response, err := a.client.Complete(ctx, prompt)
	if err != nil {
		return fmt.Errorf("code generation: %w", err)
	}

	state.Code = sandbox.StripFences(response)
	return nil
}
