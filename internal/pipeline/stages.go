package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sameerk147/repurpose/internal/eventlog"
	"github.com/sameerk147/repurpose/internal/index"
	"github.com/sameerk147/repurpose/internal/mine"
	"github.com/sameerk147/repurpose/internal/model"
	"github.com/sameerk147/repurpose/internal/reason"
	"github.com/sameerk147/repurpose/internal/store"
	"github.com/sameerk147/repurpose/internal/validate"
)

// Stage labels as they appear in the trace.
const (
	StageMine     = "Literature Miner"
	StageIndex    = "Index Builder"
	StageReason   = "Hypothesis Generator"
	StageValidate = "Evidence Validator"
)

// Components holds the stage implementations the default pipeline wires
// together.
type Components struct {
	Store     *store.Store
	Miner     *mine.Miner
	IndexCfg  model.IndexConfig
	Generator *reason.Generator
	Validator *validate.Validator
	Log       *eventlog.Logger
}

// DefaultStages builds the standard four-stage pipeline over in-process
// components, all sharing one wall-clock limit.
func DefaultStages(c Components, timeout time.Duration) []Stage {
	return []Stage{
		NewStage(StageMine, timeout, c.mineStage),
		NewStage(StageIndex, timeout, c.indexStage),
		NewStage(StageReason, timeout, c.reasonStage),
		NewStage(StageValidate, timeout, c.validateStage),
	}
}

func (c Components) mineStage(ctx context.Context, query string, stdout, stderr io.Writer) error {
	if err := c.Miner.Run(ctx, query); err != nil {
		fmt.Fprintf(stderr, "mining failed: %v\n", err)
		return err
	}

	records, err := c.Store.ReadLiterature()
	if err != nil {
		fmt.Fprintf(stderr, "literature artifact unreadable: %v\n", err)
		return err
	}
	fmt.Fprintf(stdout, "Collected %d literature records\n", len(records))
	return nil
}

func (c Components) indexStage(ctx context.Context, query string, stdout, stderr io.Writer) error {
	records, err := c.Store.ReadLiterature()
	if err != nil {
		fmt.Fprintf(stderr, "missing mining handoff: %v\n", err)
		return err
	}

	ix, err := index.Build(records, c.IndexCfg, c.Log)
	if err != nil {
		fmt.Fprintf(stderr, "index build failed: %v\n", err)
		return err
	}
	if err := ix.Save(c.Store.IndexDir()); err != nil {
		fmt.Fprintf(stderr, "index save failed: %v\n", err)
		return err
	}

	fmt.Fprintf(stdout, "Indexed %d chunks from %d records\n", ix.Len(), len(records))
	return nil
}

func (c Components) reasonStage(ctx context.Context, query string, stdout, stderr io.Writer) error {
	ix, err := index.Load(c.Store.IndexDir())
	if err != nil {
		fmt.Fprintf(stderr, "missing index handoff: %v\n", err)
		return err
	}

	drug, disease := reason.SplitQuery(query)
	topK := c.IndexCfg.TopK
	if topK <= 0 {
		topK = 10
	}
	chunks := ix.Search(drug+" "+disease+" repurposing mechanism pathway", topK)

	candidates, err := c.Generator.Generate(ctx, drug, disease, chunks)
	if err != nil {
		fmt.Fprintf(stderr, "generation aborted: %v\n", err)
		return err
	}
	if err := c.Store.WriteHypotheses(candidates); err != nil {
		fmt.Fprintf(stderr, "hypotheses write failed: %v\n", err)
		return err
	}

	fmt.Fprintf(stdout, "Generated %d candidate hypotheses for %s -> %s\n", len(candidates), drug, disease)
	return nil
}

func (c Components) validateStage(ctx context.Context, query string, stdout, stderr io.Writer) error {
	candidates, err := c.Store.ReadHypotheses()
	if err != nil {
		fmt.Fprintf(stderr, "missing hypotheses handoff: %v\n", err)
		return err
	}

	results := c.Validator.Validate(ctx, candidates)
	if err := c.Store.WriteResults(results); err != nil {
		fmt.Fprintf(stderr, "results write failed: %v\n", err)
		return err
	}

	confirmed := 0
	for _, r := range results {
		if r.Validation.Confirmed {
			confirmed++
		}
	}
	fmt.Fprintf(stdout, "Validated %d hypotheses, %d confirmed\n", len(results), confirmed)
	return nil
}

// StagesFromCommands builds exec stages from configured command lines,
// preserving the subprocess isolation model.
func StagesFromCommands(commands []string, timeout time.Duration) ([]Stage, error) {
	stages := make([]Stage, 0, len(commands))
	for i, line := range commands {
		stage, err := NewExecStage(fmt.Sprintf("Stage %d", i+1), line, timeout)
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}
	return stages, nil
}
