// Package agents implements the three pipeline steps: requirements
// analysis, code generation, and execution-based testing. Each step
// mutates the workflow state it receives; oracle faults are returned
// as errors and abort the run.
package agents

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"codeforge/internal/llm"
	"codeforge/internal/workflow"
)

// ProductManager expands the user request into technical requirements.
// It runs exactly once per workflow, before the first generation.
type ProductManager struct {
	client llm.Client
	logger *zap.Logger
}

// NewProductManager creates the requirements step.
func NewProductManager(client llm.Client, logger *zap.Logger) *ProductManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductManager{client: client, logger: logger}
}

// Name implements workflow.Step.
func (a *ProductManager) Name() string { return "requirements" }

// Run populates state.Requirements from the user request.
func (a *ProductManager) Run(ctx context.Context, state *workflow.State) error {
	a.logger.Info("analyzing user request", zap.String("run_id", state.RunID))

	requirements, err := a.client.Complete(ctx, requirementsPrompt(state.UserRequest))
	if err != nil {
		return fmt.Errorf("requirements analysis: %w", err)
	}

	state.Requirements = requirements
	state.Status = workflow.StatusInProgress
	return nil
}
