// Package storage implements service.Storage on top of sqlx with SQLite or MySQL.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/aoiro-dev/aoiro/internal/model"
	"github.com/aoiro-dev/aoiro/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Supported database drivers.
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

// Store is the SQL-backed implementation of service.Storage.
type Store struct {
	*queries
	db  *sqlx.DB
	log logrus.FieldLogger
}

var _ service.Storage = (*Store)(nil)

// Open connects to the database and verifies the connection. Call Migrate
// before first use.
func Open(ctx context.Context, driver, dsn string, log logrus.FieldLogger) (*Store, error) {
	var err error
	switch driver {
	case DriverSQLite:
		dsn, err = sqliteDSN(dsn)
	case DriverMySQL:
		dsn, err = mysqlDSN(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		// A single connection keeps in-memory databases and write locks sane.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	return &Store{
		queries: &queries{ext: db, driver: driver},
		db:      db,
		log:     log,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the name of the database driver in use.
func (s *Store) Driver() string {
	return s.driver
}

// InTx runs fn inside a database transaction.
func (s *Store) InTx(ctx context.Context, fn func(q service.Queries) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&queries{ext: tx, driver: s.driver}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.WithError(rbErr).Warn("rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// CreateTransaction inserts a transaction and its postings atomically.
func (s *Store) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	return s.InTx(ctx, func(q service.Queries) error {
		return q.CreateTransaction(ctx, txn)
	})
}

// ReplaceTransaction rewrites a transaction header and all of its postings atomically.
func (s *Store) ReplaceTransaction(ctx context.Context, txn *model.Transaction) error {
	return s.InTx(ctx, func(q service.Queries) error {
		return q.ReplaceTransaction(ctx, txn)
	})
}

// DeleteTransaction removes a transaction and its postings atomically.
func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) error {
	return s.InTx(ctx, func(q service.Queries) error {
		return q.DeleteTransaction(ctx, userID, id)
	})
}

func sqliteDSN(dsn string) (string, error) {
	if dsn == "" {
		return "", fmt.Errorf("sqlite database path is empty")
	}

	path, _, _ := strings.Cut(dsn, "?")
	memory := strings.Contains(path, ":memory:") || strings.Contains(dsn, "mode=memory")
	if !memory {
		dir := filepath.Dir(strings.TrimPrefix(path, "file:"))
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", fmt.Errorf("creating database directory: %w", err)
		}
	}

	params := []string{"_foreign_keys=on", "_busy_timeout=5000"}
	if !memory {
		params = append(params, "_journal_mode=WAL")
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&"), nil
}

func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parsing mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}
