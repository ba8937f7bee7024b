// internal/membership/store.go
package membership

import (
	"context"
	"errors"
)

// ErrDuplicateEmail is returned by a UserStore when a save or update
// would violate the case-insensitive email uniqueness invariant.
var ErrDuplicateEmail = errors.New("email already registered")

// UserStore is the persistence contract consumed by the membership
// service. Implementations must support concurrent callers and keep the
// read-check-write sequence for a single key atomic; email matching is
// case-insensitive throughout.
type UserStore interface {
	// Save persists a new user. Returns ErrDuplicateEmail on an email
	// collision.
	Save(ctx context.Context, user *User) error

	// FindByID returns the user with the given id, or nil if unknown.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail returns the user with the given email, or nil if
	// unknown.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ListAll returns every user, active and inactive.
	ListAll(ctx context.Context) ([]*User, error)

	// Update overwrites an existing user record. Returns
	// ErrDuplicateEmail if the new email collides with another user.
	Update(ctx context.Context, user *User) error

	// Remove deletes the user with the given id if present.
	Remove(ctx context.Context, id string) error

	// ExistsByEmail reports whether any user, active or inactive, holds
	// the email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
