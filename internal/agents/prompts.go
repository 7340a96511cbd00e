package agents

import (
	"fmt"

	"codeforge/internal/workflow"
)

func requirementsPrompt(userRequest string) string {
	return fmt.Sprintf(`You are a Product Manager in an autonomous software workshop.

User Request: %s

Your task is to analyze this request and create clear, detailed technical requirements.
Include:
1. What the code should do (functional requirements)
2. Expected inputs and outputs
3. Edge cases to consider
4. Success criteria

Provide concise but complete requirements.`, userRequest)
}

func initialCodePrompt(requirements string) string {
	return fmt.Sprintf(`You are a Go developer in an autonomous software workshop.

Requirements: %s

Your task is to write clean, working Go code that satisfies these requirements.

IMPORTANT:
- Include ONLY the Go code, no markdown formatting or code fences
- Write a complete runnable program: package main with a main function
- Use only the Go standard library
- The main function must demonstrate the functionality by printing results
- Add clear comments explaining the logic

Write the complete Go program now:`, requirements)
}

func fixCodePrompt(state *workflow.State) string {
	return fmt.Sprintf(`You are a Go developer fixing code based on test feedback.

Original Requirements: %s

Previous Code:
%s

Test Report:
%s

Your task is to fix the code based on the test feedback.

IMPORTANT:
- Include ONLY the Go code, no markdown formatting or code fences
- Fix all issues mentioned in the test report
- Write a complete runnable program: package main with a main function
- Use only the Go standard library
- Keep the demonstration output in main

Write the fixed Go program now:`, state.Requirements, state.Code, state.TestReport)
}
