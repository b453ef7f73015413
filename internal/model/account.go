package model

import "time"

// Role is the authorization attribute carried by every account.
type Role string

const (
	RoleUser  Role = "user"  // default for self-registered accounts
	RoleAdmin Role = "admin" // may read usage reports and clear the event log
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

// Account represents a row in the `users` table.
//
// Fields:
//
//	ID           – primary key, assigned by the database.
//	Username     – unique, trimmed, case-sensitive login name.
//	PasswordHash – bcrypt digest; the plain password is never stored.
//	Role         – authorization role, see Role.
//	CreatedAt    – UTC creation time.
type Account struct {
	ID           uint64    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
