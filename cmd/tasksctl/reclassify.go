package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"eisenhower-tasks-backend/internal/auth"
	"eisenhower-tasks-backend/internal/matrix"
	"eisenhower-tasks-backend/internal/tasks"
)

func newReclassifyCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "reclassify",
		Short: "Re-evaluate urgency of open tasks and store moved quadrants",
		Long: `Stored quadrants only change when a task is mutated. reclassify
re-runs the urgency check for every open task against the current time
and saves the ones whose quadrant moved. Completed tasks are left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, log, err := open()
			if err != nil {
				return err
			}
			defer database.Close()

			svc := tasks.NewService(
				tasks.NewSQLRepository(database),
				tasks.NewCoordinator(clockFrom(cmd)),
				auth.NewUsers(database),
				nil,
				log,
			)
			res, err := svc.Reclassify(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scanned %d open tasks, %d reclassified, %d failed\n",
				res.Scanned, res.Changed, res.Failed)
			if res.Failed > 0 {
				return fmt.Errorf("%d tasks could not be saved", res.Failed)
			}
			return nil
		},
	}
}

type clockKey struct{}

// clockFrom lets tests pin the sweep to a fixed time through the command context.
func clockFrom(cmd *cobra.Command) matrix.Clock {
	if c, ok := cmd.Context().Value(clockKey{}).(matrix.Clock); ok {
		return c
	}
	return matrix.SystemClock
}
