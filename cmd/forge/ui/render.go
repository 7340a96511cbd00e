package ui

import (
	"fmt"
	"strings"

	"codeforge/internal/history"
	"codeforge/internal/workflow"
)

// Banner renders the application header.
func Banner() string {
	return titleStyle.Render("codeforge — autonomous code workshop") + "\n"
}

// Section renders a stage header, e.g. "DEVELOPER — iteration 2".
func Section(title string) string {
	return "\n" + sectionStyle.Render(title) + "\n"
}

// Request renders the user's request line.
func Request(text string) string {
	return mutedStyle.Render("Request: ") + text + "\n"
}

// StatusLine renders a pass/fail verdict.
func StatusLine(status workflow.Status) string {
	switch status {
	case workflow.StatusPassed:
		return successStyle.Render("PASSED")
	case workflow.StatusFailed:
		return failureStyle.Render("FAILED — iteration budget exhausted")
	default:
		return mutedStyle.Render(string(status))
	}
}

// FinalResults renders the end-of-run summary: status, iteration count,
// final code and final test report.
func FinalResults(state *workflow.State) string {
	var sb strings.Builder

	sb.WriteString(Section("FINAL RESULTS"))
	fmt.Fprintf(&sb, "Status: %s\n", StatusLine(state.Status))
	fmt.Fprintf(&sb, "Iterations: %d/%d\n", state.Iteration, state.MaxIterations)

	sb.WriteString(Section("Final Code"))
	sb.WriteString(codeStyle.Render(state.Code))
	sb.WriteString("\n")

	sb.WriteString(Section("Final Test Report"))
	sb.WriteString(state.TestReport)
	sb.WriteString("\n")

	return sb.String()
}

// Iteration renders one generate→test cycle as it completes.
func Iteration(rec workflow.IterationRecord) string {
	var sb strings.Builder
	verdict := failureStyle.Render("FAILED")
	if rec.Passed {
		verdict = successStyle.Render("PASSED")
	}
	sb.WriteString(Section(fmt.Sprintf("ITERATION %d — %s", rec.Iteration, verdict)))
	sb.WriteString(codeStyle.Render(rec.Code))
	sb.WriteString("\n\n")
	sb.WriteString(rec.Report)
	sb.WriteString("\n")
	return sb.String()
}

// HistoryTable renders recent runs for the history subcommand.
func HistoryTable(runs []history.RunSummary) string {
	if len(runs) == 0 {
		return mutedStyle.Render("No runs recorded yet.") + "\n"
	}

	var sb strings.Builder
	sb.WriteString(Section("RECENT RUNS"))
	for _, r := range runs {
		status := successStyle.Render(r.Status)
		if r.Status != string(workflow.StatusPassed) {
			status = failureStyle.Render(r.Status)
		}
		request := r.Request
		if len(request) > 60 {
			request = request[:57] + "..."
		}
		fmt.Fprintf(&sb, "%s  %s  %s  %s\n",
			mutedStyle.Render(r.FinishedAt.Format("2006-01-02 15:04")),
			status,
			mutedStyle.Render(fmt.Sprintf("%d iter", r.Iterations)),
			request)
	}
	return sb.String()
}
