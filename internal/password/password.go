package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the default bcrypt cost
	DefaultCost = 12
)

// Hash hashes a password using bcrypt. A cost outside bcrypt's range falls
// back to DefaultCost.
func Hash(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a password with a stored hash. Hashes written by older
// data files (unsalted SHA-256, base64) are still accepted.
func Verify(password, hash string) bool {
	if IsLegacy(hash) {
		return subtle.ConstantTimeCompare([]byte(legacyHash(password)), []byte(hash)) == 1
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// IsLegacy reports whether hash predates bcrypt and should be rehashed.
func IsLegacy(hash string) bool {
	return hash != "" && !strings.HasPrefix(hash, "$2")
}

func legacyHash(password string) string {
	sum := sha256.Sum256([]byte(password))
	return base64.StdEncoding.EncodeToString(sum[:])
}
