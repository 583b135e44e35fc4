// Package auth — password and answer hashing.
//
// bcrypt generates a random salt per call and embeds it in the output, so
// two users with the same password (or the same recovery answer) get
// different digests, and no separate salt column is needed.
//
// Hash format (the full output of bcrypt.GenerateFromPassword):
//
//	$2a$10$<22-char salt><31-char hash>
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor used for passwords and
// security-question answers alike.
const defaultCost = 10

// PasswordService provides bcrypt hashing and verification.
//
// The cost is a field (not a package constant baked into every call) so
// tests can inject bcrypt's minimum cost and skip the deliberate slowness.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost (10).
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with a caller-chosen
// cost. Use bcrypt.MinCost (4) in tests to avoid the ~100ms per hash of the
// production cost. Do NOT use low costs in production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes the given plaintext with bcrypt.
//
// The output string is self-contained (salt and cost included) — store it
// directly; Verify knows how to decode it.
//
// Returns an error for plaintexts over 72 bytes: bcrypt silently truncates
// beyond that, so we reject instead of hashing a prefix.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: secret must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing secret: %w", err)
	}

	return string(hashed), nil
}

// Verify checks whether a plaintext matches a stored bcrypt hash.
//
// Returns nil on match. bcrypt.CompareHashAndPassword compares in constant
// time, so response timing does not reveal how close a guess was.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
