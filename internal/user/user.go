// Package user defines the account model shared by the storage backends,
// the account service and the session authority.
package user

import (
	"strings"
	"time"
)

// User represents a registered account.
type User struct {
	// ID is the unique identifier of the user, meaning a UUID.
	ID string `json:"id"`

	// Name is an optional display name.
	Name string `json:"name"`

	// Email is the login key, always stored normalized (see NormalizeEmail).
	Email string `json:"email"`

	// PasswordHash is the bcrypt digest of the password. It must never leave the server.
	PasswordHash string `json:"password_hash"`

	CreatedAt time.Time `json:"created_at"`
}

// PublicView is the projection of a User that is safe to send to clients.
type PublicView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Public returns the client-facing projection of the user.
func (u *User) Public() PublicView {
	return PublicView{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address,
// so that lookups and the uniqueness constraint are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
