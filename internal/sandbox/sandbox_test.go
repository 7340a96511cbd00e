package sandbox

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func newTestRunner() *Runner {
	return NewRunner(Options{}, nil)
}

func TestExecute_Success(t *testing.T) {
	r := newTestRunner()

	res := r.Execute(context.Background(), `package main

import "fmt"

func add(a, b int) int {
	return a + b
}

func main() {
	fmt.Println(add(2, 3))
}
`)

	if !res.Success {
		t.Fatalf("expected success, got error: %s", res.Error)
	}
	if got := strings.TrimSpace(res.Stdout); got != "5" {
		t.Errorf("expected stdout 5, got %q", got)
	}
	if res.Error != "" {
		t.Errorf("expected empty error, got %q", res.Error)
	}
}

func TestExecute_WrapsBareSource(t *testing.T) {
	r := newTestRunner()

	res := r.Execute(context.Background(), `import "fmt"

func main() {
	fmt.Println("wrapped")
}
`)

	if !res.Success {
		t.Fatalf("expected success, got error: %s", res.Error)
	}
	if got := strings.TrimSpace(res.Stdout); got != "wrapped" {
		t.Errorf("expected stdout wrapped, got %q", got)
	}
}

func TestExecute_SyntaxError(t *testing.T) {
	r := newTestRunner()

	res := r.Execute(context.Background(), `package main

func main() {
	fmt.Println("missing import"
}
`)

	if res.Success {
		t.Fatal("expected failure for invalid source")
	}
	if res.Error == "" {
		t.Error("expected a fault description")
	}
}

func TestExecute_RuntimePanic(t *testing.T) {
	r := newTestRunner()

	res := r.Execute(context.Background(), `package main

import "fmt"

func main() {
	fmt.Println("before fault")
	var xs []int
	fmt.Println(xs[3])
}
`)

	if res.Success {
		t.Fatal("expected failure for out-of-range index")
	}
	if res.Error == "" {
		t.Error("expected a fault description")
	}
	// Output produced before the fault must be preserved.
	if !strings.Contains(res.Stdout, "before fault") {
		t.Errorf("expected partial output, got %q", res.Stdout)
	}
}

func TestExecute_IsolationBetweenCalls(t *testing.T) {
	r := newTestRunner()

	first := r.Execute(context.Background(), `package main

import "fmt"

var x = 1

func main() {
	fmt.Println(x)
}
`)
	if !first.Success {
		t.Fatalf("first execution failed: %s", first.Error)
	}

	// x must not be visible in a later execution.
	second := r.Execute(context.Background(), `package main

import "fmt"

func main() {
	fmt.Println(x)
}
`)
	if second.Success {
		t.Fatal("second execution saw a binding from the first")
	}
}

func TestExecute_HostStdoutUntouched(t *testing.T) {
	before := os.Stdout

	r := newTestRunner()
	r.Execute(context.Background(), `package main

import "fmt"

func main() {
	fmt.Println("captured")
}
`)
	r.Execute(context.Background(), `package main

func main() {
	panic("fault path")
}
`)

	if os.Stdout != before {
		t.Fatal("host stdout was replaced by sandbox execution")
	}
}

func TestExecute_Timeout(t *testing.T) {
	r := NewRunner(Options{Timeout: 200 * time.Millisecond}, nil)

	res := r.Execute(context.Background(), `package main

import "time"

func main() {
	for {
		time.Sleep(10 * time.Millisecond)
	}
}
`)

	if res.Success {
		t.Fatal("expected timeout failure")
	}
	if !res.TimedOut {
		t.Errorf("expected TimedOut, got error %q", res.Error)
	}
}

func TestExecute_OutputCap(t *testing.T) {
	r := NewRunner(Options{MaxOutputBytes: 64}, nil)

	res := r.Execute(context.Background(), `package main

import "fmt"

func main() {
	for i := 0; i < 100; i++ {
		fmt.Println("overflow line")
	}
}
`)

	if !res.Success {
		t.Fatalf("expected success, got error: %s", res.Error)
	}
	if !res.Truncated {
		t.Error("expected truncation flag")
	}
	if int64(len(res.Stdout)) > 64 {
		t.Errorf("stdout exceeds cap: %d bytes", len(res.Stdout))
	}
	if res.TruncatedBytes == 0 {
		t.Error("expected discarded byte count")
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", "func main() {}", "func main() {}"},
		{"fence with tag", "```go\nfunc main() {}\n```", "func main() {}"},
		{"fence without tag", "```\nfunc main() {}\n```", "func main() {}"},
		{"surrounding whitespace", "\n\n  ```go\nfunc main() {}\n```  \n", "func main() {}"},
		{"closing fence same line", "```go\nfunc main() {}```", "func main() {}"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripFences_Idempotent(t *testing.T) {
	inputs := []string{
		"```go\nfunc main() {}\n```",
		"```\nx := 1\n```",
		"plain text",
		"",
	}
	for _, in := range inputs {
		once := StripFences(in)
		twice := StripFences(once)
		if once != twice {
			t.Errorf("StripFences not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
