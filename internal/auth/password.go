// Package auth derives and verifies room password hashes. The stored
// format is "salt:hash" with both halves hex encoded.
package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes  = 16
	iterations = 10000
	keyBytes   = 64
)

// HashPassword derives a salted PBKDF2-SHA512 hash for the password.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)
	hash := pbkdf2.Key([]byte(password), []byte(saltHex), iterations, keyBytes, sha512.New)
	return saltHex + ":" + hex.EncodeToString(hash), nil
}

// VerifyPassword recomputes the hash with the stored salt and compares in
// constant time. Malformed stored values never verify.
func VerifyPassword(password, stored string) bool {
	parts := strings.Split(stored, ":")
	if len(parts) != 2 {
		return false
	}
	salt, expected := parts[0], parts[1]
	hash := pbkdf2.Key([]byte(password), []byte(salt), iterations, keyBytes, sha512.New)
	return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(hash)), []byte(expected)) == 1
}
