package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/sameerk147/repurpose/internal/eventlog"
	"github.com/sameerk147/repurpose/internal/model"
	"github.com/sameerk147/repurpose/internal/store"
)

// Coordinator runs the ordered stage list with fail-stop semantics and
// collects the execution trace.
type Coordinator struct {
	store  *store.Store
	stages []Stage
	log    *eventlog.Logger
}

// NewCoordinator creates a coordinator over the given artifact store and
// stage list. Stage order is execution order.
func NewCoordinator(st *store.Store, stages []Stage, log *eventlog.Logger) *Coordinator {
	return &Coordinator{store: st, stages: stages, log: log.With("Pipeline")}
}

// Run executes the pipeline for the query. Artifacts from the previous run
// are wiped first, unconditionally. Stages run strictly in order; the first
// timeout or failure stops the run with every later stage untouched. The
// returned trace always covers exactly the stages that started.
func (c *Coordinator) Run(ctx context.Context, query string) (bool, *model.ExecutionTrace) {
	trace := &model.ExecutionTrace{}

	c.log.Infof("Starting pipeline run | query=%q | stages=%d", query, len(c.stages))
	if err := c.store.Reset(); err != nil {
		c.log.Errorf("Workspace reset failed: %v", err)
		trace.Append(model.StageRun{
			Label:      "Workspace Reset",
			Command:    "in-process:reset",
			StartedAt:  time.Now(),
			FinishedAt: time.Now(),
			Status:     model.StageFailed,
			Err:        err.Error(),
		})
		return false, trace
	}

	for _, stage := range c.stages {
		run := c.runStage(ctx, stage, query)
		trace.Append(run)

		switch run.Status {
		case model.StageTimeout:
			c.log.Errorf("TIMEOUT: %s exceeded %s limit, aborting run", run.Label, stage.Timeout())
			return false, trace
		case model.StageFailed:
			c.log.Errorf("%s failed, aborting run: %s", run.Label, run.Err)
			return false, trace
		}
		c.log.Infof("%s completed", run.Label)
	}

	trace.Completed = true
	c.log.Infof("Full pipeline completed successfully.")
	return true, trace
}

// runStage executes one stage under its wall-clock limit. The stage runs in
// its own goroutine so a non-cooperative stage cannot hold the pipeline past
// the deadline; whatever it buffered before the cutoff is kept in the trace.
func (c *Coordinator) runStage(ctx context.Context, stage Stage, query string) model.StageRun {
	run := model.StageRun{
		Label:     stage.Name(),
		Command:   stage.Command(),
		StartedAt: time.Now(),
	}
	c.log.Infof("> Running: %s", run.Label)

	stageCtx, cancel := context.WithTimeout(ctx, stage.Timeout())
	defer cancel()

	var stdout, stderr syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- stage.Run(stageCtx, query, &stdout, &stderr)
	}()

	var err error
	select {
	case err = <-done:
	case <-stageCtx.Done():
		err = stageCtx.Err()
	}

	run.FinishedAt = time.Now()
	run.Stdout = stdout.String()
	run.Stderr = stderr.String()

	switch {
	case err == nil:
		run.Status = model.StageOK
	case errors.Is(err, context.DeadlineExceeded):
		run.Status = model.StageTimeout
		run.Err = stage.Timeout().String()
	default:
		run.Status = model.StageFailed
		run.Err = err.Error()
	}
	return run
}
