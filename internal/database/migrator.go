package database

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Migrator handles database schema migrations
type Migrator struct {
	pool  *pgxpool.Pool
	files fs.FS
	log   *logrus.Entry
}

// NewMigrator creates a migration runner over the .sql files at the root of files.
func NewMigrator(pool *pgxpool.Pool, files fs.FS) *Migrator {
	return &Migrator{
		pool:  pool,
		files: files,
		log:   logrus.WithField("component", "migrator"),
	}
}

// RunMigrations executes all pending database migrations
//
// This function:
//  1. Creates the schema_migrations tracking table if it doesn't exist
//  2. Lists migration files in lexical order
//  3. Skips migrations that have already been run
//  4. Runs each new migration and records it in one transaction
//
// Returns the number of migrations applied.
func (m *Migrator) RunMigrations(ctx context.Context) (int, error) {
	m.log.Info("starting database migrations")

	if err := m.createMigrationsTable(ctx); err != nil {
		return 0, fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	pending, err := PendingMigrations(m.files, applied)
	if err != nil {
		return 0, err
	}

	for _, filename := range pending {
		content, err := fs.ReadFile(m.files, filename)
		if err != nil {
			return 0, fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		m.log.WithField("file", filename).Info("running migration")
		if err := m.apply(ctx, filename, string(content)); err != nil {
			return 0, err
		}
	}

	if len(pending) > 0 {
		m.log.Infof("successfully ran %d new migration(s)", len(pending))
	} else {
		m.log.Info("all migrations already applied, database is up to date")
	}

	return len(pending), nil
}

// Pending lists the migrations RunMigrations would apply.
func (m *Migrator) Pending(ctx context.Context) ([]string, error) {
	if err := m.createMigrationsTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}
	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	return PendingMigrations(m.files, applied)
}

func (m *Migrator) apply(ctx context.Context, filename, sql string) error {
	return pgx.BeginFunc(ctx, m.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, sql); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", filename, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO schema_migrations (filename)
			VALUES ($1)
			ON CONFLICT (filename) DO NOTHING
		`, filename); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", filename, err)
		}
		return nil
	})
}

// PendingMigrations lists the .sql files in files that are not in applied, sorted.
// Files whose name contains "reset" are never returned.
func PendingMigrations(files fs.FS, applied map[string]bool) ([]string, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var pending []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		if strings.Contains(name, "reset") || applied[name] {
			continue
		}
		pending = append(pending, name)
	}
	sort.Strings(pending)
	return pending, nil
}

// createMigrationsTable creates the schema_migrations table if it doesn't exist
func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			applied_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
	`

	_, err := m.pool.Exec(ctx, query)
	return err
}

func (m *Migrator) getAppliedMigrations(ctx context.Context) (map[string]bool, error) {
	applied := make(map[string]bool)

	rows, err := m.pool.Query(ctx, "SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			return nil, err
		}
		applied[filename] = true
	}

	return applied, rows.Err()
}
