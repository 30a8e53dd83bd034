package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree. With no subcommand it serves HTTP.
func NewRootCommand(version string) *cobra.Command {
	ctx := newCommandContext(version)

	rootCmd := &cobra.Command{
		Use:           "mangashelf",
		Short:         "Manga collection tracker",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, ctx)
		},
	}

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newResolveCommand(ctx))
	rootCmd.AddCommand(newScanImportCommand(ctx))
	rootCmd.AddCommand(newLoansCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newUsersCommand(ctx))

	return rootCmd
}
