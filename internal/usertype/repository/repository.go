package repository

import (
	"context"
	"errors"

	"storefront-auth/backend/internal/usertype/domain"
)

// ErrDuplicateName is returned by Insert when a user type with the same name (ignoring case) exists.
var ErrDuplicateName = errors.New("user type name already exists")

// Repository defines persistence for user types.
type Repository interface {
	// Insert stores a new user type atomically, returning ErrDuplicateName if the name is taken.
	Insert(ctx context.Context, ut *domain.UserType) error
	// List returns every user type, oldest first.
	List(ctx context.Context) ([]*domain.UserType, error)
}
