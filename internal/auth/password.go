package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// HashPassword hashes a password with a random salt, stored as
// "salt:sha256(password+salt)".
func HashPassword(password string) (string, error) {
	saltBytes := make([]byte, 16)
	if _, err := rand.Read(saltBytes); err != nil {
		return "", fmt.Errorf("auth: generate salt: %w", err)
	}
	salt := hex.EncodeToString(saltBytes)
	sum := sha256.Sum256([]byte(password + salt))
	return salt + ":" + hex.EncodeToString(sum[:]), nil
}

// VerifyPassword checks a password against a stored "salt:hash" value.
func VerifyPassword(password, stored string) bool {
	salt, want, ok := strings.Cut(stored, ":")
	if !ok {
		return false
	}
	sum := sha256.Sum256([]byte(password + salt))
	got := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// GenerateToken returns a cryptographically random, URL-safe session token.
func GenerateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
