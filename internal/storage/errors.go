package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"

	"github.com/aoiro-dev/aoiro/internal/common"
)

// ErrDuplicateSystemEntry is returned when a generated transaction already
// exists for the same user, kind and year.
var ErrDuplicateSystemEntry = fmt.Errorf("%w: system transaction already exists", common.ErrConflict)

const mysqlDuplicateEntry = 1062

// isUniqueViolation reports whether err is a unique or primary key violation
// from either supported driver.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}
	return false
}

// notFound converts sql.ErrNoRows into common.ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, common.ErrNotFound)
	}
	return fmt.Errorf("loading %s: %w", what, err)
}
