// Package storage is the contract every account storage backend fulfils.
package storage

import (
	"context"

	"github.com/patric-chuzhbe/arrowflix/internal/user"
)

// Storage persists accounts keyed by id and by normalized email.
//
// CreateUser must fail with models.ErrUserAlreadyExists when the email is
// taken, also when two registrations race. Lookups report a missing account
// with found == false and a nil error.
type Storage interface {
	CreateUser(ctx context.Context, usr *user.User) error

	GetUserByEmail(ctx context.Context, email string) (usr *user.User, found bool, err error)

	GetUserByID(ctx context.Context, userID string) (usr *user.User, found bool, err error)

	Ping(ctx context.Context) error

	Close() error
}
