package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sameerk147/repurpose/internal/model"
)

var (
	minScore float64
	logLines int
)

// resultsCmd represents the results command. It is the read-only
// presentation boundary: it reads validated_results.json and the log tail
// and never mutates pipeline state.
var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show validated hypotheses from the last run",
	Long: `Results renders the validated hypotheses of the most recent pipeline run
as a table, with summary counts and an optional rolling log view.

Example:
  repurpose results
  repurpose results --min-score 0.5
  repurpose results --logs 20`,
	Args: cobra.NoArgs,
	RunE: showResults,
}

func init() {
	rootCmd.AddCommand(resultsCmd)

	resultsCmd.Flags().Float64Var(&minScore, "min-score", 0, "only show hypotheses at or above this evidence score")
	resultsCmd.Flags().IntVar(&logLines, "logs", 0, "also print the last n system log lines")
}

func showResults(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	results, err := a.store.ReadResults()
	if err != nil {
		return err
	}

	records, err := a.store.ReadLiterature()
	if err != nil {
		records = nil // summary counts degrade, the table still renders
	}

	shown := make([]model.ValidatedResult, 0, len(results))
	confirmed := 0
	for _, r := range results {
		if r.Validation.Confirmed {
			confirmed++
		}
		if r.FinalEvidenceScore >= minScore {
			shown = append(shown, r)
		}
	}

	fmt.Printf("Abstracts mined: %d | Verified targets: %d | Hypotheses: %d\n\n",
		len(records), confirmed, len(results))

	if len(shown) == 0 {
		fmt.Println("No hypotheses at or above the score threshold.")
	} else {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DRUG\tDISEASE\tPATHWAYS\tSTATUS\tSCORE")
		for _, r := range shown {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\n",
				r.Drug,
				r.TargetDisease,
				strings.Join(r.SharedPathways, ", "),
				r.Validation.Status,
				r.FinalEvidenceScore,
			)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if logLines > 0 {
		fmt.Printf("\n--- last %d log lines ---\n%s\n", logLines, a.log.Tail(logLines))
	}
	return nil
}
