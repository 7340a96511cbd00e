package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"codeforge/internal/workflow"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func finishedState(id string) *workflow.State {
	now := time.Now()
	return &workflow.State{
		RunID:         id,
		UserRequest:   "write add",
		Requirements:  "add(a, b) returns a+b",
		Code:          "package main",
		TestReport:    "TEST PASSED",
		Iteration:     2,
		MaxIterations: 5,
		Status:        workflow.StatusPassed,
		Records: []workflow.IterationRecord{
			{Iteration: 1, Code: "broken", Report: "TEST FAILED", Passed: false},
			{Iteration: 2, Code: "package main", Report: "TEST PASSED", Passed: true},
		},
		StartedAt:  now.Add(-time.Minute),
		FinishedAt: now,
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)

	state := finishedState("run-1")
	if err := store.SaveRun(state); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	run, err := store.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}

	if run.Request != "write add" || run.Status != "passed" || run.Iterations != 2 {
		t.Errorf("unexpected run: %+v", run.RunSummary)
	}
	if diff := cmp.Diff(state.Records, run.Records); diff != "" {
		t.Errorf("iteration records mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_GetMissingRun(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.GetRun("nope"); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestStore_ListRunsNewestFirst(t *testing.T) {
	store := newTestStore(t)

	older := finishedState("run-old")
	older.StartedAt = time.Now().Add(-time.Hour)
	older.FinishedAt = older.StartedAt.Add(time.Minute)
	if err := store.SaveRun(older); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if err := store.SaveRun(finishedState("run-new")); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	runs, err := store.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != "run-new" || runs[1].RunID != "run-old" {
		t.Errorf("unexpected order: %s, %s", runs[0].RunID, runs[1].RunID)
	}
}

func TestStore_ListRunsLimit(t *testing.T) {
	store := newTestStore(t)
	for _, id := range []string{"a", "b", "c"} {
		if err := store.SaveRun(finishedState("run-" + id)); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	runs, err := store.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}
