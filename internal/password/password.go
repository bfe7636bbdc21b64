// Package password hashes and verifies login passwords.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher performs one-way salted password hashing. bcrypt hashes are
// self-describing: the cost and salt travel inside the hash string, so no
// separate salt storage is needed to verify.
type Hasher struct {
	cost int
}

// Option configures a Hasher during construction.
type Option func(*Hasher)

// WithCost sets the bcrypt cost parameter. Values outside bcrypt's supported
// range are left to bcrypt to reject at hash time.
func WithCost(cost int) Option {
	return func(h *Hasher) {
		h.cost = cost
	}
}

// New creates a Hasher with bcrypt's default cost unless overridden.
func New(opts ...Option) *Hasher {
	h := &Hasher{cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hash returns the salted bcrypt hash of plaintext. Two calls with the same
// input produce different hashes; Verify is the only way to compare.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches the stored hash. A nil hash means
// no password has been set, so authentication is impossible and Verify
// returns false rather than an error. The underlying bcrypt comparison is
// resistant to timing side-channels.
func (h *Hasher) Verify(plaintext string, storedHash *string) bool {
	if storedHash == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*storedHash), []byte(plaintext)) == nil
}
