package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/petclinic-export/internal/application"
	"github.com/JonMunkholm/petclinic-export/internal/config"
	"github.com/JonMunkholm/petclinic-export/internal/export"
)

type exportFlags struct {
	strategy    string
	output      string
	pageSize    int
	rowDelay    time.Duration
	noTimestamp bool
}

func newExportCmd(root *rootFlags) *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the owner and pet CSV",
		Long: `Run one export strategy and write the CSV to a file or stdout.

The file is written only when the export succeeds; a failed run leaves no
partial output behind.

Examples:
  petexport export --strategy full -o pets.csv
  petexport export --strategy paginated --page-size 5 --row-delay 0
  petexport export --no-timestamp`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, root, &flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.strategy, "strategy", "s", string(export.StrategyStream), "full, paginated, stream or broken")
	f.StringVarP(&flags.output, "output", "o", "-", `output file, "-" for stdout`)
	f.IntVar(&flags.pageSize, "page-size", 0, "rows per query for paginated (overrides EXPORT_PAGE_SIZE)")
	f.DurationVar(&flags.rowDelay, "row-delay", 0, "delay before each row (overrides EXPORT_ROW_DELAY)")
	f.BoolVar(&flags.noTimestamp, "no-timestamp", false, `omit the "Export date" column`)
	return cmd
}

// applyExportFlags overrides cfg with the flags the user set.
func applyExportFlags(cmd *cobra.Command, cfg *config.Config, flags *exportFlags) error {
	f := cmd.Flags()
	if f.Changed("page-size") {
		cfg.Export.PageSize = flags.pageSize
	}
	if f.Changed("row-delay") {
		cfg.Export.RowDelay = flags.rowDelay
	}
	if flags.noTimestamp {
		cfg.Export.Timestamp = false
	}
	return cfg.Validate()
}

func runExport(cmd *cobra.Command, root *rootFlags, flags *exportFlags) error {
	strategy, err := export.ParseStrategy(flags.strategy)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return err
	}
	if err := applyExportFlags(cmd, cfg, flags); err != nil {
		return err
	}

	ctx := export.ContextWithExportID(cmd.Context(), uuid.NewString())
	app, err := application.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	var sum export.Summary
	if flags.output == "-" {
		sum, err = app.Exporter.Export(ctx, strategy, cmd.OutOrStdout())
	} else {
		sum, err = exportToFile(flags.output, func(w io.Writer) (export.Summary, error) {
			return app.Exporter.Export(ctx, strategy, w)
		})
	}
	if err != nil {
		return fmt.Errorf("%s export: %s: %w", strategy, export.FormatUserError(err), err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "exported %d rows (%d bytes, %d queries) in %s\n",
		sum.Rows, sum.Bytes, sum.Queries, sum.Duration.Round(time.Millisecond))
	return nil
}

// exportToFile writes into a temporary file next to path and renames it
// into place once run succeeds.
func exportToFile(path string, run func(io.Writer) (export.Summary, error)) (sum export.Summary, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return sum, err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if sum, err = run(tmp); err != nil {
		return sum, err
	}
	if err = tmp.Close(); err != nil {
		return sum, err
	}
	return sum, os.Rename(tmp.Name(), path)
}
