package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/gramoorja/landedcost/internal/migrate"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
	}
	step := func(use, short string, fn func(ctx context.Context, driver, dsn string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, args []string) error {
				return fn(cmd.Context(), a.cfg.DB.Driver, a.cfg.DB.DSN)
			},
		}
	}
	cmd.AddCommand(
		step("up", "Apply all pending migrations", migrate.Up),
		step("down", "Roll back the last migration", migrate.Down),
		step("status", "Print migration status", migrate.Status),
	)
	return cmd
}
