package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"eisenhower-tasks-backend/internal/auth"
)

func newUsersCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect user accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List users with their roles and task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, _, err := open()
			if err != nil {
				return err
			}
			defer database.Close()

			list, err := auth.NewUsers(database).ListWithTaskCounts(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tEMAIL\tNICKNAME\tROLE\tTASKS")
			for _, u := range list {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", u.ID, u.Email, u.Nickname, u.Role, u.TaskCount)
			}
			return tw.Flush()
		},
	})
	return cmd
}
