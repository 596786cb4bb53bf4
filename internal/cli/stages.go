package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sameerk147/repurpose/internal/index"
	"github.com/sameerk147/repurpose/internal/reason"
)

// Standalone stage commands. Each runs a single stage against the workspace
// artifacts, so a failed run can be resumed or debugged stage by stage.

var mineCmd = &cobra.Command{
	Use:   "mine [query]",
	Short: "Collect literature abstracts into data/raw_literature.json",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, cancel := stageContext(a)
		defer cancel()

		if err := a.miner().Run(ctx, strings.Join(args, " ")); err != nil {
			return err
		}

		records, err := a.store.ReadLiterature()
		if err != nil {
			return err
		}
		fmt.Printf("Collected %d literature records -> %s\n", len(records), a.store.LiteraturePath())
		return nil
	},
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the retrieval index from mined literature",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		records, err := a.store.ReadLiterature()
		if err != nil {
			return err
		}

		ix, err := index.Build(records, a.cfg.Index, a.log)
		if err != nil {
			return err
		}
		if err := ix.Save(a.store.IndexDir()); err != nil {
			return err
		}

		fmt.Printf("Indexed %d chunks from %d records -> %s\n", ix.Len(), len(records), a.store.IndexDir())
		return nil
	},
}

var reasonCmd = &cobra.Command{
	Use:   "reason [query]",
	Short: "Generate candidate hypotheses into data/hypotheses.json",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ix, err := index.Load(a.store.IndexDir())
		if err != nil {
			return err
		}

		gen, err := a.generator()
		if err != nil {
			return err
		}

		ctx, cancel := stageContext(a)
		defer cancel()

		drug, disease := reason.SplitQuery(strings.Join(args, " "))
		chunks := ix.Search(drug+" "+disease+" repurposing mechanism pathway", a.cfg.Index.TopK)

		candidates, err := gen.Generate(ctx, drug, disease, chunks)
		if err != nil {
			return err
		}
		if err := a.store.WriteHypotheses(candidates); err != nil {
			return err
		}

		fmt.Printf("Generated %d candidate hypotheses for %s -> %s\n", len(candidates), drug, disease)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Cross-check and score generated hypotheses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		candidates, err := a.store.ReadHypotheses()
		if err != nil {
			return err
		}

		ctx, cancel := stageContext(a)
		defer cancel()

		results := a.validator().Validate(ctx, candidates)
		if err := a.store.WriteResults(results); err != nil {
			return err
		}

		confirmed := 0
		for _, r := range results {
			if r.Validation.Confirmed {
				confirmed++
			}
		}
		fmt.Printf("Validated %d hypotheses, %d confirmed -> %s\n", len(results), confirmed, a.store.ResultsPath())
		return nil
	},
}

func stageContext(a *app) (context.Context, context.CancelFunc) {
	timeout := a.cfg.Pipeline.StageTimeout
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

func init() {
	rootCmd.AddCommand(mineCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(reasonCmd)
	rootCmd.AddCommand(validateCmd)
}
