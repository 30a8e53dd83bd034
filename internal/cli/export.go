package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/mangashelf/internal/config"
	"github.com/mrlokans/mangashelf/internal/entrypoint"
	"github.com/mrlokans/mangashelf/internal/exporters"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var userID uint
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a user's shelf as Markdown, one file per series",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *entrypoint.Services) error {
				exporter := exporters.NewMarkdownExporter(dir, svc.Logger)
				result, err := exporter.Export(cmd.Context(), svc.Catalog, svc.Loans, userID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d series (%d volume(s)) to %s\n",
					result.SeriesProcessed, result.VolumesProcessed, dir)
				if result.SeriesFailed > 0 {
					return fmt.Errorf("%d series could not be written", result.SeriesFailed)
				}
				return nil
			})
		},
	}

	cmd.Flags().UintVar(&userID, "user", config.DefaultUserID, "Owner of the shelf")
	cmd.Flags().StringVar(&dir, "dir", "./export", "Output directory")

	return cmd
}
