package cryptox

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
// Cost 10 keeps a single hash in the tens of milliseconds on current
// hardware, slow enough to make offline brute force impractical at scale.
const DefaultCost = 10

// ErrPasswordTooLong reports a plaintext exceeding bcrypt's 72-byte input limit.
var ErrPasswordTooLong = errors.New("cryptox: password exceeds 72 bytes")

// PasswordHasher wraps bcrypt with a configurable cost. The zero value is
// usable and hashes at DefaultCost.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher at the given cost. Costs outside
// bcrypt's supported range fall back to DefaultCost.
func NewPasswordHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return PasswordHasher{cost: cost}
}

// Cost reports the effective work factor.
func (h PasswordHasher) Cost() int {
	if h.cost == 0 {
		return DefaultCost
	}
	return h.cost
}

// Hash generates a salted bcrypt hash of the plaintext. The salt is
// generated per call, so hashing the same input twice yields different
// encoded strings.
func (h PasswordHasher) Hash(password string) (string, error) {
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost())
	if err != nil {
		return "", fmt.Errorf("cryptox: hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches the encoded hash. bcrypt's
// comparison runs in time independent of where a mismatch occurs.
func (h PasswordHasher) Verify(password, encodedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
}
