// Package security provides identifier and key generation plus auth
// primitives for the engine
package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateULID creates a new lexicographically sortable unique identifier.
// Submissions are keyed with these.
func GenerateULID() string {
	return ulid.Make().String()
}

// GenerateSigningKey creates a random hex-encoded key of the given character
// length. Startup mints an ephemeral JWT secret with this when none is
// configured.
func GenerateSigningKey(length int) (string, error) {
	bytes := make([]byte, length/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate signing key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
