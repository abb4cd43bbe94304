// Package security provides password hashing utilities
package security

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a stored value.
// The stored value may be a bcrypt hash or, for development setups, the
// plaintext itself.
func VerifyPassword(password, stored string) bool {
	if len(stored) >= 4 && stored[:4] == "$2a$" || len(stored) >= 4 && stored[:4] == "$2b$" {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return password == stored && password != ""
}
