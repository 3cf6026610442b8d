package postgres

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/corpcare/agentbooking/migrations"
)

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version VARCHAR(255) PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL DEFAULT NOW()
)`

// Migrate applies every migration not yet recorded in schema_migrations,
// each in its own transaction. It returns the versions it applied.
func (c *Client) Migrate(ctx context.Context, pending []migrations.Migration) ([]string, error) {
	if _, err := c.db.ExecContext(ctx, createMigrationsTable); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	applied := make([]string, 0, len(pending))
	for _, m := range pending {
		var exists bool
		err := c.db.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)", m.Version,
		).Scan(&exists)
		if err != nil {
			return applied, fmt.Errorf("failed to check migration %s: %w", m.Version, err)
		}
		if exists {
			continue
		}

		err = c.WithinTransaction(ctx, func(ctx context.Context) error {
			exec := c.Executor(ctx)
			if _, err := exec.ExecContext(ctx, m.SQL); err != nil {
				return err
			}
			_, err := exec.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", m.Version)
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("failed to apply migration %s: %w", m.Version, err)
		}

		log.Info().Str("version", m.Version).Msg("Applied migration")
		applied = append(applied, m.Version)
	}

	return applied, nil
}

// AppliedMigrations returns the recorded migration versions in order
func (c *Client) AppliedMigrations(ctx context.Context) ([]string, error) {
	if _, err := c.db.ExecContext(ctx, createMigrationsTable); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	rows, err := c.db.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}
