package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"rentpay-backend/internal/config"
	"rentpay-backend/internal/database"
	"rentpay-backend/internal/db"
	"rentpay-backend/internal/logging"
	"rentpay-backend/migrations"
)

func migrateCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Setup(cfg.Log.Level, cfg.Log.Format)

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			pool, err := db.Connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := database.NewMigrator(pool, migrations.FS)
			if dryRun {
				pending, err := migrator.Pending(ctx)
				if err != nil {
					return err
				}
				for _, name := range pending {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d pending migration(s)\n", len(pending))
				return nil
			}

			_, err = migrator.RunMigrations(ctx)
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list pending migrations without applying them")
	return cmd
}
