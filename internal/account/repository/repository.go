package repository

import (
	"context"
	"errors"

	"storefront-auth/backend/internal/account/domain"
)

var (
	// ErrDuplicateEmail is returned by Insert when the normalized email is already taken.
	ErrDuplicateEmail = errors.New("account email already exists")
	// ErrAccountNotFound is returned by Update when no row has the account's ID.
	ErrAccountNotFound = errors.New("account not found")
)

// Repository defines persistence for accounts. It holds no business rules.
type Repository interface {
	// FindByEmail returns the account for a normalized email, or nil if none exists.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// FindByID returns the account for id, or nil if none exists.
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	// Insert stores a new account atomically, returning ErrDuplicateEmail if the email is taken.
	Insert(ctx context.Context, a *domain.Account) error
	// Update overwrites name, password hash, verification flag and OTP fields in one write.
	Update(ctx context.Context, a *domain.Account) error
}
