// Package vault holds the credential primitives: salt generation, password
// hashing and verification. It exposes pure functions only; there is
// nothing to construct.
package vault

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/infoyupay/gang-comisiones-backend/internal/apperr"
)

const (
	saltBytes  = 16
	iterations = 120_000
	keyLen     = 32

	// MinPasswordLen is the shortest password accepted by ValidatePassword.
	MinPasswordLen = 8
)

// GenerateSalt returns a fresh random 16-byte salt, base64 encoded.
func GenerateSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// HashPassword derives a deterministic digest from (plain, salt) using
// PBKDF2-SHA256. The same pair always yields the same digest; different
// salts yield different digests.
func HashPassword(plain, salt string) string {
	key := pbkdf2.Key([]byte(plain), []byte(salt), iterations, keyLen, sha256.New)
	return base64.StdEncoding.EncodeToString(key)
}

// VerifyPassword reports whether plain hashes to expected under salt.
// The comparison is constant time.
func VerifyPassword(plain, salt, expected string) bool {
	got := HashPassword(plain, salt)
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}

// ValidatePassword rejects blank passwords and passwords shorter than
// MinPasswordLen. It must be called before any hashing.
func ValidatePassword(plain string) error {
	if strings.TrimSpace(plain) == "" {
		return apperr.Validationf("password", "password must not be blank")
	}
	if len(plain) < MinPasswordLen {
		return apperr.Validationf("password", "password must be at least %d characters", MinPasswordLen)
	}
	return nil
}
