package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/launch-table-crawler/internal/runner"
)

// newCrawlCmd creates the 'crawl' subcommand, which scrapes one target or
// every configured target and composite.
func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl <target>|all",
		Short: "Scrape one target, or all targets and composites",
		Long: `Fetches the target's page, extracts launch rows and saves the dataset.
"all" runs every target in name order and then every composite; failures
are reported at the end without stopping the remaining targets.`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(runCrawlCommand),
	}
}

func runCrawlCommand(cmd *cobra.Command, args []string, appInstance App) error {
	results, err := appInstance.Runner().Crawl(cmd.Context(), args[0])
	printResults(cmd.OutOrStdout(), results)
	if err != nil {
		logRunError(appInstance.Logger(), args[0], err)
		return fmt.Errorf("crawl %s: %w", args[0], err)
	}
	appInstance.Logger().Info("crawl command finished", zap.Int("datasets", len(results)))
	return nil
}

// newMergeCmd creates the 'merge' subcommand.
func newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <composite>",
		Short: "Scrape every window of a composite and save them merged",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, appInstance App) error {
			res, err := appInstance.Runner().RunComposite(cmd.Context(), args[0])
			if err != nil {
				logRunError(appInstance.Logger(), args[0], err)
				return fmt.Errorf("merge %s: %w", args[0], err)
			}
			printResults(cmd.OutOrStdout(), []runner.Result{res})
			return nil
		}),
	}
}

// newAppendCmd creates the 'append' subcommand for incremental merges.
func newAppendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "append <composite> <window>",
		Short: "Append a freshly scraped window to a saved composite",
		Long: `Reads the composite's saved dataset, scrapes the window and appends its
records after the existing ones, renumbering from 1. The saved dataset must
already exist; run 'merge' first.`,
		Args: cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, appInstance App) error {
			res, err := appInstance.Runner().Append(cmd.Context(), args[0], args[1])
			if err != nil {
				logRunError(appInstance.Logger(), args[0], err)
				return fmt.Errorf("append %s to %s: %w", args[1], args[0], err)
			}
			printResults(cmd.OutOrStdout(), []runner.Result{res})
			return nil
		}),
	}
}

func logRunError(logger *zap.Logger, name string, err error) {
	var inputErr *runner.MergeInputError
	switch {
	case errors.Is(err, runner.ErrNoRecords):
		logger.Warn("no data extracted", zap.String("name", name))
	case errors.As(err, &inputErr):
		logger.Error("merge input unavailable", zap.String("dataset", inputErr.Dataset), zap.Error(inputErr.Err))
	default:
		logger.Error("run failed", zap.String("name", name), zap.Error(err))
	}
}

func printResults(w io.Writer, results []runner.Result) {
	for _, r := range results {
		_, _ = fmt.Fprintf(w, "%s: %d launches saved to %s", r.Name, r.Saved.Records, r.Saved.URI)
		if r.Warnings > 0 {
			_, _ = fmt.Fprintf(w, " (%d warnings)", r.Warnings)
		}
		_, _ = fmt.Fprintln(w)
	}
}
