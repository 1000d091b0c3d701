package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"rentpay-backend/internal/config"
	"rentpay-backend/internal/database"
	"rentpay-backend/internal/db"
	"rentpay-backend/internal/logging"
)

func resetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all profiles, properties, tenancies and payments",
		Long: `Empties the application tables for local testing.

Identity-service users are kept, so existing accounts can sign in again and
get a fresh profile on their first request.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "This deletes all rows in %s.\nType 'yes' to confirm: ", strings.Join(database.ResetTables, ", "))
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if strings.TrimSpace(answer) != "yes" {
					return errors.New("reset cancelled")
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Setup(cfg.Log.Level, cfg.Log.Format)

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			pool, err := db.Connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			return database.Reset(ctx, pool)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
