package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"eisenhower-tasks-backend/internal/config"
	"eisenhower-tasks-backend/internal/db"
)

// opener connects to the database the command should act on.
type opener func() (*db.DB, *slog.Logger, error)

func openFromConfig() (*db.DB, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := cfg.Logger(os.Stderr)
	database, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, nil, err
	}
	return database, log, nil
}

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:   "tasksctl",
		Short: "Maintenance commands for the Eisenhower task API.",
		Long: `tasksctl works directly on the database configured through the
environment (or a .env file): it creates the schema, manages admin
accounts and re-evaluates the quadrants of open tasks.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newMigrateCmd(open),
		newAdminCmd(open),
		newUsersCmd(open),
		newReclassifyCmd(open),
	)
	return root
}
