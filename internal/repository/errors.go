// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as services
// and handlers to distinguish failure scenarios without inspecting driver
// specific error types.
package repository

import "errors"

// ErrDuplicateUsername is returned when an insert hits the unique
// constraint on users.username.
var ErrDuplicateUsername = errors.New("username already exists")

// ErrAccountNotFound is returned when a row references an account that does
// not exist, or a lookup by id/username finds nothing.
var ErrAccountNotFound = errors.New("account not found")

// ErrTokenInvalid is returned for unknown, expired or revoked refresh tokens.
var ErrTokenInvalid = errors.New("refresh token invalid")
