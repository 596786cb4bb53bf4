package model

import (
	"fmt"
	"strings"
	"time"
)

// StageStatus is the terminal state of a single stage execution.
type StageStatus string

const (
	StageOK      StageStatus = "ok"
	StageFailed  StageStatus = "failed"
	StageTimeout StageStatus = "timeout"
)

// StageRun captures one stage execution for the run trace. It is ephemeral:
// held only inside the coordinator's ExecutionTrace for the current run and
// never persisted to the record store.
type StageRun struct {
	Label      string
	Command    string // Command line or in-process identity of the stage
	StartedAt  time.Time
	FinishedAt time.Time
	Status     StageStatus
	Stdout     string
	Stderr     string
	Err        string // Error text for failed or timed-out stages
}

// ExecutionTrace is the append-only audit artifact of a pipeline run. It is
// preserved verbatim on failure so a crashed run can be diagnosed without
// re-running.
type ExecutionTrace struct {
	Runs      []StageRun
	Completed bool
}

// Append adds a stage run to the trace.
func (t *ExecutionTrace) Append(run StageRun) {
	t.Runs = append(t.Runs, run)
}

const traceRule = "=================================================="

// String renders the full trace: every stage's stdout/stderr in execution
// order, each block delimited and labeled, plus the completion marker on
// success.
func (t *ExecutionTrace) String() string {
	var b strings.Builder

	for _, run := range t.Runs {
		fmt.Fprintf(&b, "\n%s\n", traceRule)
		fmt.Fprintf(&b, "> Running: %s\n", run.Label)
		fmt.Fprintf(&b, "  Command: %s\n", run.Command)
		fmt.Fprintf(&b, "%s\n", traceRule)

		if out := strings.TrimSpace(run.Stdout); out != "" {
			fmt.Fprintf(&b, "[stdout]\n%s\n", out)
		}

		switch run.Status {
		case StageTimeout:
			fmt.Fprintf(&b, "TIMEOUT: %s exceeded %s limit\n", run.Label, run.Err)
		case StageFailed:
			fmt.Fprintf(&b, "%s FAILED (%s)\n", run.Label, run.Err)
			if errOut := strings.TrimSpace(run.Stderr); errOut != "" {
				fmt.Fprintf(&b, "[stderr]\n%s\n", errOut)
			} else {
				b.WriteString("[stderr] (empty - likely a silent crash)\n")
			}
		default:
			fmt.Fprintf(&b, "%s completed (exit code 0)\n", run.Label)
		}
	}

	if t.Completed {
		fmt.Fprintf(&b, "\n%s\n", traceRule)
		b.WriteString("Full pipeline completed successfully.\n")
		fmt.Fprintf(&b, "%s\n", traceRule)
	}

	return b.String()
}
