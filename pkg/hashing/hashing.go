// Package hashing provides the one-way hashing capability used for stored
// credentials such as backup codes.
package hashing

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Hasher defines the interface for one-way hashing implementations.
type Hasher interface {
	// Hash hashes a plaintext value
	Hash(plaintext string) (string, error)

	// Verify checks if the provided plaintext matches the stored hash
	Verify(hashed, plaintext string) (bool, error)
}

// BcryptHasher implements Hasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a bcrypt-backed Hasher. A cost of 0 selects
// bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash implements Hasher.Hash
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("plaintext cannot be empty")
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}

	return string(hashedBytes), nil
}

// Verify implements Hasher.Verify
func (h *BcryptHasher) Verify(hashed, plaintext string) (bool, error) {
	if hashed == "" || plaintext == "" {
		return false, errors.New("hashed and plaintext values cannot be empty")
	}

	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil // Value doesn't match, but not an error
		}
		return false, err // Some other error occurred
	}

	return true, nil
}
