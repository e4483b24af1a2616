package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// Migration represents a database schema migration.
type Migration struct {
	Up          func(ctx context.Context, tx *sqlx.Tx) error
	Description string
	Version     int
}

// SchemaVersion is the latest schema version the application expects.
const SchemaVersion = 3

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: execAll(
			`CREATE TABLE accounts (
				id VARCHAR(36) PRIMARY KEY,
				user_id VARCHAR(64) NOT NULL,
				name VARCHAR(191) NOT NULL,
				type VARCHAR(16) NOT NULL,
				description VARCHAR(512) NOT NULL DEFAULT '',
				created_at DATETIME NOT NULL,
				UNIQUE (user_id, name)
			)`,

			`CREATE TABLE transactions (
				id VARCHAR(36) PRIMARY KEY,
				user_id VARCHAR(64) NOT NULL,
				date DATETIME NOT NULL,
				description VARCHAR(512) NOT NULL DEFAULT '',
				created_at DATETIME NOT NULL
			)`,

			`CREATE TABLE postings (
				id VARCHAR(36) PRIMARY KEY,
				transaction_id VARCHAR(36) NOT NULL,
				account_id VARCHAR(36) NOT NULL,
				amount BIGINT NOT NULL,
				is_debit BOOLEAN NOT NULL,
				line_no INTEGER NOT NULL,
				FOREIGN KEY (transaction_id) REFERENCES transactions(id) ON DELETE CASCADE,
				FOREIGN KEY (account_id) REFERENCES accounts(id)
			)`,
			`CREATE INDEX idx_postings_transaction ON postings(transaction_id)`,
			`CREATE INDEX idx_postings_account ON postings(account_id)`,

			`CREATE TABLE opening_balances (
				id VARCHAR(36) PRIMARY KEY,
				user_id VARCHAR(64) NOT NULL,
				year INTEGER NOT NULL,
				account_id VARCHAR(36) NOT NULL,
				amount BIGINT NOT NULL,
				is_debit BOOLEAN NOT NULL,
				UNIQUE (user_id, year, account_id),
				FOREIGN KEY (account_id) REFERENCES accounts(id)
			)`,

			`CREATE TABLE fixed_assets (
				id VARCHAR(36) PRIMARY KEY,
				user_id VARCHAR(64) NOT NULL,
				name VARCHAR(191) NOT NULL,
				acquisition_date DATETIME NOT NULL,
				acquisition_cost BIGINT NOT NULL,
				useful_life INTEGER NOT NULL,
				depreciation_type VARCHAR(32) NOT NULL,
				created_at DATETIME NOT NULL
			)`,
			`CREATE INDEX idx_fixed_assets_user ON fixed_assets(user_id)`,
		),
	},
	{
		Version:     2,
		Description: "Mark engine-generated transactions",
		Up: execAll(
			`ALTER TABLE transactions ADD COLUMN system_kind VARCHAR(32) NULL`,
			`ALTER TABLE transactions ADD COLUMN system_year INTEGER NULL`,
			`CREATE UNIQUE INDEX idx_transactions_system ON transactions(user_id, system_kind, system_year)`,
		),
	},
	{
		Version:     3,
		Description: "Index transactions by user and date",
		Up: execAll(
			`CREATE INDEX idx_transactions_user_date ON transactions(user_id, date)`,
		),
	},
}

func execAll(statements ...string) func(context.Context, *sqlx.Tx) error {
	return func(ctx context.Context, tx *sqlx.Tx) error {
		for _, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("executing %q: %w", firstLine(stmt), err)
			}
		}
		return nil
	}
}

// Migrate applies all pending database migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description VARCHAR(255) NOT NULL,
		applied_at DATETIME NOT NULL
	)`); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	current, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", m.Version, err)
		}
		if err := m.Up(ctx, tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
			m.Version, m.Description, time.Now().UTC()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", m.Version, err)
		}

		s.log.WithFields(logrus.Fields{
			"version":     m.Version,
			"description": m.Description,
		}).Info("applied migration")
	}

	final, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}
	if final != SchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", SchemaVersion, final)
	}
	return nil
}

func (s *Store) schemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.GetContext(ctx, &version, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

func firstLine(stmt string) string {
	line, _, _ := strings.Cut(stmt, "\n")
	return line
}
