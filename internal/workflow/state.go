// Package workflow drives the fixed generate → test → route pipeline that
// turns a natural-language request into a working Go snippet. The engine is
// strictly sequential: one candidate and one test in flight at any time.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a workflow run.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusPassed     Status = "passed"
	StatusFailed     Status = "failed"
)

// IterationRecord captures one generate→test cycle for the transcript
// and for run history.
type IterationRecord struct {
	Iteration int    `json:"iteration"`
	Code      string `json:"code"`
	Report    string `json:"report"`
	Passed    bool   `json:"passed"`
}

// State flows through the workflow steps. It is owned and mutated only by
// the engine between steps; steps receive it one at a time.
type State struct {
	RunID         string            `json:"run_id"`
	UserRequest   string            `json:"user_request"`
	Requirements  string            `json:"requirements"`
	Code          string            `json:"code"`
	TestReport    string            `json:"test_report"`
	Iteration     int               `json:"iteration"`
	MaxIterations int               `json:"max_iterations"`
	Status        Status            `json:"status"`
	Records       []IterationRecord `json:"records"`
	StartedAt     time.Time         `json:"started_at"`
	FinishedAt    time.Time         `json:"finished_at"`
}

// NewState creates the initial state for a run.
func NewState(userRequest string, maxIterations int) *State {
	return &State{
		RunID:         uuid.NewString(),
		UserRequest:   userRequest,
		Iteration:     1,
		MaxIterations: maxIterations,
		Status:        StatusInProgress,
		StartedAt:     time.Now(),
	}
}

// Transcript renders a human-readable account of the run: the request, the
// requirements, and every iteration's candidate and report.
func (s *State) Transcript() string {
	var sb strings.Builder
	rule := strings.Repeat("=", 80)

	fmt.Fprintf(&sb, "%s\nRequest: %s\n", rule, s.UserRequest)
	if s.Requirements != "" {
		fmt.Fprintf(&sb, "%s\nRequirements:\n%s\n", rule, s.Requirements)
	}
	for _, rec := range s.Records {
		verdict := "FAILED"
		if rec.Passed {
			verdict = "PASSED"
		}
		fmt.Fprintf(&sb, "%s\nIteration %d — %s\n%s\nCode:\n%s\n\nReport:\n%s\n",
			rule, rec.Iteration, verdict, rule, rec.Code, rec.Report)
	}
	fmt.Fprintf(&sb, "%s\nFinal status: %s after %d iteration(s)\n%s\n",
		rule, s.Status, s.Iteration, rule)
	return sb.String()
}
