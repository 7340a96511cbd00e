// Package sandbox executes candidate Go source in an isolated yaegi
// interpreter. Each Execute call gets a fresh interpreter with its own
// namespace, so nothing defined by one candidate is visible to the next.
// The host process's stdout is never redirected: the interpreter writes
// into capped in-memory buffers instead.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"go.uber.org/zap"
)

// DefaultMaxOutputBytes caps captured stdout+stderr per execution.
const DefaultMaxOutputBytes int64 = 1 << 20 // 1 MiB

// Result is the outcome of a single candidate execution.
// It is immutable once returned.
type Result struct {
	// Success is true when the candidate evaluated and ran to completion.
	Success bool `json:"success"`

	// Stdout is everything the candidate wrote to standard output
	// (including output produced before a fault).
	Stdout string `json:"stdout"`

	// Stderr is everything the candidate wrote to standard error.
	Stderr string `json:"stderr"`

	// Error describes the fault when Success is false.
	Error string `json:"error,omitempty"`

	// TimedOut indicates the candidate was stopped by the wall-clock limit.
	TimedOut bool `json:"timed_out,omitempty"`

	// Truncated indicates output exceeded the size cap and was cut.
	Truncated bool `json:"truncated,omitempty"`

	// TruncatedBytes is how many output bytes were discarded.
	TruncatedBytes int64 `json:"truncated_bytes,omitempty"`

	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`
}

// Output returns stdout and stderr joined for display.
func (r *Result) Output() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// Options configures a Runner.
type Options struct {
	// Timeout is the wall-clock limit per execution. Zero means no limit:
	// an infinite-loop candidate then blocks the caller, matching the
	// behavior of running the code directly.
	Timeout time.Duration

	// MaxOutputBytes caps captured output. Zero uses DefaultMaxOutputBytes.
	MaxOutputBytes int64
}

// Runner executes candidate source text. Execute must not be called from
// more than one goroutine at a time; the workflow engine is strictly
// sequential so this holds without locking.
type Runner struct {
	opts   Options
	logger *zap.Logger
}

// NewRunner creates a Runner. A nil logger disables logging.
func NewRunner(opts Options, logger *zap.Logger) *Runner {
	if opts.MaxOutputBytes <= 0 {
		opts.MaxOutputBytes = DefaultMaxOutputBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{opts: opts, logger: logger}
}

// Execute evaluates source in a fresh interpreter and returns a Result.
// It never panics and never propagates a candidate fault to the caller:
// evaluation errors and runtime panics inside the candidate are reported
// through Result.Error.
func (r *Runner) Execute(ctx context.Context, source string) *Result {
	res := &Result{StartedAt: time.Now()}
	defer func() {
		res.FinishedAt = time.Now()
		res.Duration = res.FinishedAt.Sub(res.StartedAt)
	}()

	stdout := newCappedBuffer(r.opts.MaxOutputBytes)
	stderr := newCappedBuffer(r.opts.MaxOutputBytes)

	run := func(ctx context.Context) (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("panic: %v", rec)
			}
		}()

		i := interp.New(interp.Options{Stdout: stdout, Stderr: stderr})
		if err := i.Use(stdlib.Symbols); err != nil {
			return fmt.Errorf("failed to load stdlib symbols: %w", err)
		}
		_, err = i.EvalWithContext(ctx, wrapSource(source))
		return err
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	err := run(ctx)

	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	res.Truncated = stdout.Truncated() || stderr.Truncated()
	res.TruncatedBytes = stdout.TruncatedBytes() + stderr.TruncatedBytes()

	if err != nil {
		res.Error = describeFault(err)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			res.TimedOut = true
			res.Error = fmt.Sprintf("execution timed out after %s", r.opts.Timeout)
		}
		r.logger.Debug("candidate execution failed",
			zap.String("error", res.Error),
			zap.Bool("timed_out", res.TimedOut))
		return res
	}

	res.Success = true
	r.logger.Debug("candidate execution succeeded",
		zap.Int("stdout_bytes", len(res.Stdout)),
		zap.Duration("duration", time.Since(res.StartedAt)))
	return res
}

// describeFault renders an evaluation error as "kind: message" text that a
// model can act on in the next fix iteration.
func describeFault(err error) string {
	var p interp.Panic
	if errors.As(err, &p) {
		return fmt.Sprintf("panic: %v", p.Value)
	}
	return err.Error()
}

// wrapSource ensures the candidate is a complete file-mode program so the
// interpreter runs its main function. Candidates without a package clause
// get one prepended.
func wrapSource(source string) string {
	trimmed := strings.TrimSpace(source)
	if strings.HasPrefix(trimmed, "package ") {
		return source
	}
	return "package main\n\n" + source
}

// cappedBuffer collects interpreter output up to a byte limit. Writes past
// the limit are counted but dropped. The mutex guards against the eval
// goroutine still flushing output while a timed-out Execute reads back.
type cappedBuffer struct {
	mu        sync.Mutex
	buf       strings.Builder
	limit     int64
	discarded int64
}

func newCappedBuffer(limit int64) *cappedBuffer {
	return &cappedBuffer{limit: limit}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	remaining := b.limit - int64(b.buf.Len())
	if remaining <= 0 {
		b.discarded += int64(len(p))
		return len(p), nil
	}
	if int64(len(p)) > remaining {
		b.buf.Write(p[:remaining])
		b.discarded += int64(len(p)) - remaining
		return len(p), nil
	}
	b.buf.Write(p)
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *cappedBuffer) Truncated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.discarded > 0
}

func (b *cappedBuffer) TruncatedBytes() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.discarded
}
