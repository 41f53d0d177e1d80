package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost mirrors the teacher's default for hashing secrets at rest.
const DefaultBcryptCost = 12

// StaticTokenVerifier authenticates against a single bcrypt-hashed admin
// token, for deployments that hand operators one shared reset credential
// instead of minting per-action JWTs. Unlike NonEmptyVerifier, which
// accepts any non-empty string, it accepts only the exact configured
// token (compared against its bcrypt hash) and rejects the empty string.
type StaticTokenVerifier struct {
	hash []byte
}

// NewStaticTokenVerifier hashes plaintext once at construction.
func NewStaticTokenVerifier(plaintext string) (*StaticTokenVerifier, error) {
	if plaintext == "" {
		return nil, fmt.Errorf("auth: static admin token must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), DefaultBcryptCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash admin token: %w", err)
	}
	return &StaticTokenVerifier{hash: hash}, nil
}

// Verify implements Verifier. purpose is ignored: a single shared token
// authorizes any admin action.
func (v *StaticTokenVerifier) Verify(token, _ string) bool {
	if token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(v.hash, []byte(token)) == nil
}
