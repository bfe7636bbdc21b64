// Package user owns the respondent account records and their storage contract.
package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrUserNotFound is returned when no record matches the lookup key.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when creating a record whose email is taken.
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// User is an account record. PasswordHash is nil until a password is set at
// provisioning time; a record without a password hash can never authenticate.
// The hash is opaque and must never be returned to a caller.
type User struct {
	ID           uuid.UUID // surrogate key, store-assigned
	UserID       string    // external-facing respondent identifier, stable and unique
	Name         string
	Email        string // globally unique, matched byte-exact
	PasswordHash *string
	CreatedAt    time.Time
}

// Storage is the credential store contract. Lookups are exact matches on the
// stored value; no case folding or whitespace normalization is applied.
type Storage interface {
	// FindByEmail returns the record with the given email or ErrUserNotFound.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByUserID returns the record with the given external identifier or
	// ErrUserNotFound.
	FindByUserID(ctx context.Context, userID string) (*User, error)

	// UpdateName persists a new display name and returns the updated record.
	// Returns ErrUserNotFound when no record matches. Concurrent updates on
	// the same userID are serialized by the store; last writer wins.
	UpdateName(ctx context.Context, userID, name string) (*User, error)

	// Create inserts a new record. Returns ErrEmailAlreadyExists when the
	// email is taken. Used by provisioning fixtures, not by request handling.
	Create(ctx context.Context, u *User) error
}
