package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// ResetTables are cleared by Reset, children first. auth.users belongs to the
// identity service and is left alone.
var ResetTables = []string{
	"payments",
	"tenant_properties",
	"properties",
	"profiles",
}

// Reset empties the application tables in one transaction. Intended for
// local and test databases only.
func Reset(ctx context.Context, pool *pgxpool.Pool) error {
	log := logrus.WithField("component", "reset")

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for _, table := range ResetTables {
			if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", pgx.Identifier{table}.Sanitize())); err != nil {
				return fmt.Errorf("failed to truncate %s: %w", table, err)
			}
			log.WithField("table", table).Info("cleared")
		}
		return nil
	})
}
