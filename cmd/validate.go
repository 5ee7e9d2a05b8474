package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/launch-table-crawler/internal/config"
	"github.com/JakeFAU/launch-table-crawler/internal/dataset"
	"github.com/JakeFAU/launch-table-crawler/internal/launch"
	"github.com/JakeFAU/launch-table-crawler/internal/storage"
)

// newValidateCmd creates the 'validate' subcommand, which reports warnings
// for a saved dataset without modifying it.
func newValidateCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "validate <dataset-file>",
		Short: "Print validation warnings for a saved dataset",
		Long: `Loads a dataset from the configured store and prints one line per missing
or suspicious field. The record schema is taken from --kind, or from the
target or composite that writes the file.`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, appInstance App) error {
			k := launch.Kind(kind)
			if k == "" {
				k = kindOf(appInstance.Config(), args[0])
			}
			return runValidate(cmd.Context(), cmd.OutOrStdout(), appInstance.Store(), args[0], k)
		}),
	}
	cmd.Flags().StringVar(&kind, "kind", "", "record schema: falcon or world")
	return cmd
}

func runValidate(ctx context.Context, w io.Writer, store storage.BlobStore, file string, kind launch.Kind) error {
	switch kind {
	case launch.KindFalcon:
		return validateDataset[launch.Launch](ctx, w, store, file)
	case launch.KindWorld:
		return validateDataset[launch.WorldLaunch](ctx, w, store, file)
	case "":
		return fmt.Errorf("cannot infer the schema of %s; pass --kind", file)
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
}

func validateDataset[R launch.Entry[R]](ctx context.Context, w io.Writer, store storage.BlobStore, file string) error {
	records, err := dataset.Load[R](ctx, store, file)
	if err != nil {
		return err
	}
	warnings := launch.Validate(records)
	for _, warning := range warnings {
		_, _ = fmt.Fprintln(w, warning)
	}
	_, _ = fmt.Fprintf(w, "%s: %d records, %d warnings\n", file, len(records), len(warnings))
	return nil
}

// kindOf returns the schema of the target or composite writing file.
func kindOf(cfg config.Config, file string) launch.Kind {
	for _, t := range cfg.Targets {
		if t.Output == file {
			return t.Kind
		}
	}
	for _, c := range cfg.Composites {
		if c.Output == file {
			return c.Kind
		}
	}
	return ""
}
