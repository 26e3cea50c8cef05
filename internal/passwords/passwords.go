// Package passwords hides the password hashing algorithm behind the Hasher
// interface so that call sites do not depend on bcrypt directly.
package passwords

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinCost is the lowest bcrypt work factor the service accepts.
const MinCost = 10

// MaxPasswordBytes is the longest plaintext bcrypt reads in full.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned for passwords bcrypt cannot hash without truncation.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// Hasher turns plaintext passwords into digests and checks them.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// Bcrypt is the bcrypt-backed Hasher.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a bcrypt Hasher. Costs below MinCost are rejected.
func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost < MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be in [%d, %d], got %d", MinCost, bcrypt.MaxCost, cost)
	}

	return &Bcrypt{cost: cost}, nil
}

// Hash returns the salted bcrypt digest of plaintext.
func (b *Bcrypt) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf(
			"in internal/passwords/passwords.go/Hash(): error while `bcrypt.GenerateFromPassword()` calling: %w",
			err,
		)
	}

	return string(digest), nil
}

// Verify reports whether plaintext matches digest. The comparison inside
// bcrypt is constant-time. bcrypt ignores everything past MaxPasswordBytes,
// so longer plaintexts never match; the comparison still runs to keep the
// timing of both rejections alike.
func (b *Bcrypt) Verify(plaintext, digest string) bool {
	matched := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
	return matched && len(plaintext) <= MaxPasswordBytes
}
