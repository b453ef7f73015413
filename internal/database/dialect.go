package database

import (
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"
)

// Dialect names the SQL flavour behind a *sql.DB.  Repositories write
// queries with '?' placeholders and call Rebind before executing them.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Rebind rewrites '?' placeholders into the dialect's native form.  Only
// PostgreSQL needs a rewrite ($1, $2, ...).  Question marks inside single
// quoted literals are left alone.
func (d Dialect) Rebind(q string) string {
	if d != Postgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(q); i++ {
		ch := q[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
			b.WriteByte(ch)
		case ch == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// SupportsReturning reports whether INSERT ... RETURNING id is available.
func (d Dialect) SupportsReturning() bool {
	return d == Postgres || d == SQLite
}

func (d Dialect) goose() goose.Dialect {
	switch d {
	case Postgres:
		return goose.DialectPostgres
	case SQLite:
		return goose.DialectSQLite3
	default:
		return goose.DialectMySQL
	}
}

// migrationDir is the embedded directory holding this dialect's migrations.
func (d Dialect) migrationDir() string {
	return "migrations/" + string(d)
}
