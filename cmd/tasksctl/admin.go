package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"eisenhower-tasks-backend/internal/auth"
)

func newAdminCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Grant or revoke the admin role",
	}
	cmd.AddCommand(
		newSetRoleCmd(open, "promote", "Make a user an admin", auth.RoleAdmin),
		newSetRoleCmd(open, "demote", "Turn an admin back into a regular user", auth.RoleUser),
	)
	return cmd
}

func newSetRoleCmd(open opener, use, short string, role auth.Role) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.TrimSpace(email)
			if email == "" {
				return errors.New("--email is required")
			}

			database, _, err := open()
			if err != nil {
				return err
			}
			defer database.Close()

			users := auth.NewUsers(database)
			if err := users.SetRole(cmd.Context(), email, role); err != nil {
				if errors.Is(err, auth.ErrUserNotFound) {
					return fmt.Errorf("no user with email %s", email)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", email, role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the user")
	return cmd
}
