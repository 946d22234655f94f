// Package hash wraps bcrypt for password storage.
package hash

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidDigest reports a stored digest that is not a bcrypt hash at all.
// A plain mismatch is never an error, only a false match.
var ErrInvalidDigest = errors.New("stored password digest is malformed")

// DefaultCost matches the work factor the account schema has always used.
const DefaultCost = 8

// Hasher hashes and verifies passwords at a fixed cost.
type Hasher struct {
	cost int
}

func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt digest of plain.
func (h *Hasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Match reports whether plain matches digest. Returns ErrInvalidDigest only
// when digest is structurally broken; a wrong password is (false, nil).
func (h *Hasher) Match(plain, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrInvalidDigest, err)
}
