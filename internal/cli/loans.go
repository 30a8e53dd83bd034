package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrlokans/mangashelf/internal/config"
	"github.com/mrlokans/mangashelf/internal/entities"
	"github.com/mrlokans/mangashelf/internal/entrypoint"
	"github.com/mrlokans/mangashelf/internal/loans"
)

func newLoansCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loans",
		Short: "Inspect lent volumes",
	}
	cmd.AddCommand(newLoansListCommand(ctx))
	return cmd
}

func newLoansListCommand(ctx *commandContext) *cobra.Command {
	var userID uint
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's loans",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *entrypoint.Services) error {
				result, err := svc.Loans.List(cmd.Context(), userID, loans.ParseFilter(status))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(result) == 0 {
					fmt.Fprintln(out, "No loans")
					return nil
				}
				fmt.Fprintln(out, renderLoans(result))
				return nil
			})
		},
	}

	cmd.Flags().UintVar(&userID, "user", config.DefaultUserID, "Lender whose loans to list")
	cmd.Flags().StringVar(&status, "status", "all", "active, returned or all")

	return cmd
}

func renderLoans(list []entities.Loan) string {
	rows := make([][]string, 0, len(list))
	for _, l := range list {
		title := ""
		if l.Volume != nil {
			title = l.Volume.Title
		}
		returned := "-"
		if l.ReturnedAt != nil {
			returned = l.ReturnedAt.Format(time.DateOnly)
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(l.ID), 10),
			strconv.FormatUint(uint64(l.VolumeID), 10),
			title,
			l.BorrowerName,
			l.LoanedAt.Format(time.DateOnly),
			returned,
		})
	}
	return renderTable(
		[]string{"Loan", "Volume", "Title", "Borrower", "Loaned", "Returned"},
		rows,
		[]columnAlignment{alignRight, alignRight},
	)
}
