package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/carbon-tracker/internal/database"
	"github.com/iliyamo/carbon-tracker/internal/model"
)

// UserRepo persists accounts in the `users` table.
type UserRepo struct {
	db      DBTX
	dialect database.Dialect
}

func NewUserRepo(db *database.DB) *UserRepo {
	return &UserRepo{db: db.DB, dialect: db.Dialect}
}

const userColumns = "id, username, password_hash, role, created_at"

// Create inserts an account and fills in its ID.  The UNIQUE constraint on
// username is the only uniqueness check; a violation returns
// ErrDuplicateUsername and any other failure is returned wrapped.
func (r *UserRepo) Create(ctx context.Context, a *model.Account) error {
	if a.Role == "" {
		a.Role = model.RoleUser
	}
	id, err := insertID(ctx, r.db, r.dialect,
		"INSERT INTO users (username, password_hash, role, created_at) VALUES (?, ?, ?, ?)",
		a.Username, a.PasswordHash, string(a.Role), model.FormatTimestamp(a.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("insert user: %w", err)
	}
	a.ID = id
	return nil
}

// GetByUsername fetches an account by its exact (already trimmed) username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		r.dialect.Rebind("SELECT "+userColumns+" FROM users WHERE username = ?"), username))
}

// GetByID fetches an account by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.Account, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		r.dialect.Rebind("SELECT "+userColumns+" FROM users WHERE id = ?"), id))
}

// Exists reports whether an account with id exists.
func (r *UserRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind("SELECT 1 FROM users WHERE id = ?"), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns every account ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.Account, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SetRole changes the role of the named account.
func (r *UserRepo) SetRole(ctx context.Context, username string, role model.Role) error {
	res, err := r.db.ExecContext(ctx,
		r.dialect.Rebind("UPDATE users SET role = ? WHERE username = ?"), string(role), username)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *UserRepo) scanOne(row *sql.Row) (*model.Account, error) {
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	return a, err
}

func scanAccount(s rowScanner) (*model.Account, error) {
	var (
		a       model.Account
		role    string
		created string
	)
	if err := s.Scan(&a.ID, &a.Username, &a.PasswordHash, &role, &created); err != nil {
		return nil, err
	}
	a.Role = model.Role(role)
	if t, err := model.ParseTimestamp(created); err == nil {
		a.CreatedAt = t
	}
	return &a, nil
}
