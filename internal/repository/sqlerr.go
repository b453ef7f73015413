package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/iliyamo/carbon-tracker/internal/database"
)

// DBTX is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	mysqlDuplicateEntry = 1062
	mysqlNoReferenced   = 1452
	pgUniqueViolation   = "23505"
	pgForeignKey        = "23503"
)

// isUniqueViolation reports whether err is a unique/primary key constraint
// failure on any supported driver.
func isUniqueViolation(err error) bool {
	var my *mysql.MySQLError
	if errors.As(err, &my) {
		return my.Number == mysqlDuplicateEntry
	}
	var pg *pgconn.PgError
	if errors.As(err, &pg) {
		return pg.Code == pgUniqueViolation
	}
	var lite *sqlite.Error
	if errors.As(err, &lite) {
		switch lite.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(lite.Error(), "UNIQUE")
		}
	}
	return false
}

// isForeignKeyViolation reports whether err is a missing-parent failure.
func isForeignKeyViolation(err error) bool {
	var my *mysql.MySQLError
	if errors.As(err, &my) {
		return my.Number == mysqlNoReferenced
	}
	var pg *pgconn.PgError
	if errors.As(err, &pg) {
		return pg.Code == pgForeignKey
	}
	var lite *sqlite.Error
	if errors.As(err, &lite) {
		switch lite.Code() {
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(lite.Error(), "FOREIGN KEY")
		}
	}
	return false
}

// insertID runs an INSERT and returns the generated id.  PostgreSQL and
// SQLite use RETURNING; MySQL reads LastInsertId.
func insertID(ctx context.Context, db DBTX, d database.Dialect, q string, args ...any) (uint64, error) {
	if d.SupportsReturning() {
		var id uint64
		if err := db.QueryRowContext(ctx, d.Rebind(q+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := db.ExecContext(ctx, d.Rebind(q), args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}
