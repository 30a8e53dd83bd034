package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/mangashelf/internal/entrypoint"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with task workers and the audit cleanup schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, ctx)
		},
	}
}

func runServe(cmd *cobra.Command, ctx *commandContext) error {
	cfg, logger, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	return entrypoint.Run(cmd.Context(), cfg, logger, ctx.version)
}
