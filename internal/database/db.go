package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/iliyamo/carbon-tracker/internal/config"
)

// DB pairs a connection pool with the dialect its queries must use.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open connects to the backend selected by cfg.DBDriver and verifies the
// connection.
func Open(cfg config.Config) (*DB, error) {
	switch cfg.Driver() {
	case config.DriverMySQL:
		return OpenMySQL(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	case config.DriverPostgres:
		return OpenPostgres(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	case config.DriverSQLite:
		return OpenSQLite(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.DBDriver)
	}
}

// OpenMySQL connects to MySQL.  parseTime is off because every timestamp
// column is stored as fixed-width ISO-8601 text.
func OpenMySQL(user, pass, host, port, name string) (*DB, error) {
	if port == "" {
		port = "3306"
	}
	mc := mysql.NewConfig()
	mc.User = user
	mc.Passwd = pass
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, port)
	mc.DBName = name
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}

	db, err := sql.Open("mysql", mc.FormatDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)
	return ping(db, MySQL)
}

// OpenPostgres connects through pgx's database/sql adapter.
func OpenPostgres(user, pass, host, port, name string) (*DB, error) {
	if port == "" {
		port = "5432"
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + name,
		RawQuery: "sslmode=disable",
	}
	if pass != "" {
		u.User = url.UserPassword(user, pass)
	} else {
		u.User = url.User(user)
	}
	db, err := sql.Open("pgx", u.String())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)
	return ping(db, Postgres)
}

// OpenSQLite opens a file-backed (or ":memory:") database with foreign keys
// enforced.  SQLite serializes writers, so the pool is capped at one
// connection; that also keeps an in-memory database alive across queries.
func OpenSQLite(path string) (*DB, error) {
	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn += sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return ping(db, SQLite)
}

func ping(db *sql.DB, d Dialect) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d, err)
	}
	return &DB{DB: db, Dialect: d}, nil
}
