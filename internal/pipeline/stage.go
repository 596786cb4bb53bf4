// Package pipeline coordinates the run: stages execute strictly in order,
// each under a hard wall-clock timeout, with fail-stop short-circuiting and
// a complete execution trace. The coordinator is a linear state machine;
// the only transitions are advance and fail-stop. There is no retry,
// rollback, or skip.
package pipeline

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

// Stage is one ordered unit of pipeline work. Whether an implementation is
// an in-process call or a spawned process is orthogonal to the coordinator.
type Stage interface {
	// Name labels the stage in the trace.
	Name() string

	// Command is the stage's command line or in-process identity.
	Command() string

	// Timeout is the stage's hard wall-clock limit.
	Timeout() time.Duration

	// Run executes the stage. Progress goes to stdout, diagnostics to
	// stderr; both are captured into the trace. A non-nil error fails the
	// whole run.
	Run(ctx context.Context, query string, stdout, stderr io.Writer) error
}

// funcStage adapts a function into a Stage for in-process execution.
type funcStage struct {
	name    string
	timeout time.Duration
	fn      func(ctx context.Context, query string, stdout, stderr io.Writer) error
}

// NewStage wraps fn as an in-process stage.
func NewStage(name string, timeout time.Duration, fn func(ctx context.Context, query string, stdout, stderr io.Writer) error) Stage {
	return &funcStage{name: name, timeout: timeout, fn: fn}
}

func (s *funcStage) Name() string           { return s.name }
func (s *funcStage) Command() string        { return "in-process:" + s.name }
func (s *funcStage) Timeout() time.Duration { return s.timeout }

func (s *funcStage) Run(ctx context.Context, query string, stdout, stderr io.Writer) error {
	return s.fn(ctx, query, stdout, stderr)
}

// syncBuffer is a write-locked buffer. A timed-out stage goroutine may still
// be writing while the coordinator snapshots what was buffered so far.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
