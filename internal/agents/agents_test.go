package agents

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeforge/internal/sandbox"
	"codeforge/internal/workflow"
)

// scriptedClient returns canned completions in order and records the
// prompts it was asked.
type scriptedClient struct {
	responses []string
	calls     int
	prompts   []string
}

func (c *scriptedClient) Complete(_ context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	if c.calls >= len(c.responses) {
		return "", assert.AnError
	}
	resp := c.responses[c.calls]
	c.calls++
	return resp, nil
}

func (c *scriptedClient) CompleteWithSystem(ctx context.Context, _, userPrompt string) (string, error) {
	return c.Complete(ctx, userPrompt)
}

const addProgram = `package main

import "fmt"

func add(a, b int) int {
	return a + b
}

func main() {
	fmt.Println(add(2, 3))
}
`

const brokenProgram = `package main

func main() {
	fmt.Println(add(2, 3)
}
`

func newTestEngine(client *scriptedClient) *workflow.Engine {
	runner := sandbox.NewRunner(sandbox.Options{}, nil)
	return workflow.NewEngine(
		NewProductManager(client, nil),
		NewDeveloper(client, nil),
		NewQATester(runner, nil),
		nil,
	)
}

func TestWorkflow_FirstCandidatePasses(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"Write add(a, b) returning a+b, demonstrate with print(add(2,3)).",
		"```go\n" + addProgram + "```",
	}}

	state, err := newTestEngine(client).Run(context.Background(), "write a function add(a,b) returning a+b, demo print(add(2,3))", 5)
	require.NoError(t, err)

	assert.Equal(t, workflow.StatusPassed, state.Status)
	assert.Equal(t, 1, state.Iteration)
	assert.Contains(t, state.TestReport, "TEST PASSED")
	assert.Contains(t, state.TestReport, "5")
	// Fences must be stripped before storage.
	assert.False(t, strings.Contains(state.Code, "```"))
}

func TestWorkflow_SyntaxErrorFeedsRetry(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"Write add(a, b) returning a+b.",
		brokenProgram,
		addProgram,
	}}

	state, err := newTestEngine(client).Run(context.Background(), "write add", 5)
	require.NoError(t, err)

	assert.Equal(t, workflow.StatusPassed, state.Status)
	assert.Equal(t, 2, state.Iteration)
	require.Len(t, state.Records, 2)
	assert.False(t, state.Records[0].Passed)
	assert.Contains(t, state.Records[0].Report, "TEST FAILED")

	// The fix prompt must carry the exact failure report.
	require.Len(t, client.prompts, 3)
	assert.Contains(t, client.prompts[2], state.Records[0].Report)
	assert.Contains(t, client.prompts[2], brokenProgram)
}

func TestWorkflow_ExhaustsWithoutExtraGeneration(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"Write add(a, b) returning a+b.",
		brokenProgram,
		brokenProgram,
	}}

	state, err := newTestEngine(client).Run(context.Background(), "write add", 2)
	require.NoError(t, err)

	assert.Equal(t, workflow.StatusFailed, state.Status)
	assert.Equal(t, 2, state.Iteration)
	// Requirements call + exactly two generation calls.
	assert.Equal(t, 3, client.calls)
	assert.Contains(t, state.TestReport, "TEST FAILED")
}

func TestWorkflow_SingleIterationExhaustsImmediately(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"Write add(a, b) returning a+b.",
		brokenProgram,
	}}

	state, err := newTestEngine(client).Run(context.Background(), "write add", 1)
	require.NoError(t, err)

	assert.Equal(t, workflow.StatusFailed, state.Status)
	assert.Equal(t, 1, state.Iteration)
	assert.Equal(t, 2, client.calls)
}

func TestWorkflow_OracleFaultIsFatal(t *testing.T) {
	// Only the requirements response is scripted; the generation call fails.
	client := &scriptedClient{responses: []string{
		"Write add(a, b) returning a+b.",
	}}

	state, err := newTestEngine(client).Run(context.Background(), "write add", 3)
	require.Error(t, err)
	assert.Equal(t, workflow.StatusInProgress, state.Status)
	assert.Empty(t, state.Records)
}

func TestBuildReport_FailureIncludesPartialOutput(t *testing.T) {
	result := &sandbox.Result{
		Success: false,
		Stdout:  "partial",
		Error:   "panic: boom",
	}
	report := buildReport(result, "the requirements")

	assert.Contains(t, report, "TEST FAILED")
	assert.Contains(t, report, "panic: boom")
	assert.Contains(t, report, "partial")
	assert.Contains(t, report, "the requirements")
}
