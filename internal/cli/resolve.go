package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/mangashelf/internal/catalog"
	"github.com/mrlokans/mangashelf/internal/entities"
	"github.com/mrlokans/mangashelf/internal/entrypoint"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var key catalog.VolumeKey

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a volume by ISBN or API id, creating its series and edition if needed",
		Example: `  mangashelf resolve --isbn 9782505000011
  mangashelf resolve --api-id OL7353617M`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(key.ISBN) == "" && strings.TrimSpace(key.APIID) == "" {
				return errors.New("one of --isbn or --api-id is required")
			}
			return ctx.withServices(func(svc *entrypoint.Services) error {
				volume, err := svc.Catalog.Resolve(cmd.Context(), key)
				if err != nil {
					return err
				}
				// Reload to include edition and series.
				volume, err = svc.Catalog.Volume(cmd.Context(), volume.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderVolume(volume))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&key.ISBN, "isbn", "", "ISBN-10 or ISBN-13 barcode")
	cmd.Flags().StringVar(&key.APIID, "api-id", "", "External catalogue id")
	cmd.MarkFlagsMutuallyExclusive("isbn", "api-id")

	return cmd
}

func renderVolume(v *entities.Volume) string {
	rows := [][]string{
		{"ID", strconv.FormatUint(uint64(v.ID), 10)},
		{"Title", v.Title},
	}
	if v.Edition != nil {
		if v.Edition.Series != nil {
			rows = append(rows, []string{"Series", v.Edition.Series.Title})
		}
		rows = append(rows, []string{"Edition", v.Edition.Name})
	}
	if v.Number != nil {
		rows = append(rows, []string{"Number", strconv.Itoa(*v.Number)})
	}
	if v.ISBN != nil {
		rows = append(rows, []string{"ISBN", *v.ISBN})
	}
	if v.APIID != nil {
		rows = append(rows, []string{"API id", *v.APIID})
	}
	if len(v.Authors) > 0 {
		rows = append(rows, []string{"Authors", strings.Join(v.Authors, ", ")})
	}
	return renderTable([]string{"Field", "Value"}, rows, nil)
}
