package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/mrlokans/mangashelf/internal/entrypoint"
)

func newUsersCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage API users",
	}
	cmd.AddCommand(newUsersCreateCommand(ctx))
	cmd.AddCommand(newUsersRotateTokenCommand(ctx))
	return cmd
}

func newUsersCreateCommand(ctx *commandContext) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user and print their API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			username = strings.TrimSpace(username)
			if username == "" {
				return errors.New("required flag --username not provided")
			}
			return ctx.withServices(func(svc *entrypoint.Services) error {
				user, err := svc.Users.CreateUser(cmd.Context(), username)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Created user %q (id %d)\n", user.Username, user.ID)
				fmt.Fprintf(out, "API token: %s\n", user.Token)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Login name (required)")

	return cmd
}

func newUsersRotateTokenCommand(ctx *commandContext) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "rotate-token",
		Short: "Issue a new API token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			username = strings.TrimSpace(username)
			if username == "" {
				return errors.New("required flag --username not provided")
			}
			return ctx.withServices(func(svc *entrypoint.Services) error {
				user, err := svc.Users.RotateToken(cmd.Context(), username)
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("no user named %q", username)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "API token: %s\n", user.Token)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Login name (required)")

	return cmd
}
