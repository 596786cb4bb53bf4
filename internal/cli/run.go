package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// errPipelineFailed keeps the exit code non-zero without repeating the trace
// that was already printed.
var errPipelineFailed = errors.New("pipeline failed")

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [query]",
	Short: "Run the full four-stage pipeline for a query",
	Long: `Run executes mine -> index -> reason -> validate in order for the given
free-text query. Previous run artifacts are wiped first, unconditionally.

The execution trace of every started stage is printed when the run ends,
whether it succeeded or not.

Example:
  repurpose run "Metformin Leukemia"
  repurpose run                          # uses the configured default terms`,
	Args: cobra.ArbitraryArgs,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	coord, err := a.coordinator()
	if err != nil {
		return err
	}

	ok, trace := coord.Run(context.Background(), query)
	fmt.Print(trace.String())

	if !ok {
		return errPipelineFailed
	}
	return nil
}
