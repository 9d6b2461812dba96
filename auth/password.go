package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/tgportal/tgportal/model"
	"golang.org/x/crypto/bcrypt"
)

// ValidationError marks a rejected input (for now only weak passwords) so
// transport code can answer 400 instead of 500.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

const minPasswordLength = 12

// passwordSymbols is the punctuation set a new password must draw at least
// one character from.
const passwordSymbols = "!@#$%^&*()-_=+[]{};:,.?"

// HashPassword hashes a password with the preferred scheme (bcrypt).
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

// checkHash compares a supplied password against a stored hash under the
// given scheme. The legacy scheme is an unsalted sha256 hex digest, kept only
// so pre-migration accounts can still log in; comparison is constant-time.
func checkHash(scheme model.HashScheme, stored, password string) bool {
	switch scheme {
	case model.HashSchemeBcrypt:
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	case model.HashSchemeSHA256:
		sum := sha256.Sum256([]byte(password))
		digest := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(digest), []byte(strings.ToLower(stored))) == 1
	default:
		return false
	}
}

// LegacyHash produces the deprecated sha256 digest. Only used by migration
// scripts and tests; new hashes always go through HashPassword.
func LegacyHash(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// ValidateNewPassword enforces the password policy for changePassword:
// at least 12 characters with lowercase, uppercase, a digit and a symbol
// from passwordSymbols. Each violation gets its own message so the UI can
// show the user what to fix.
func ValidateNewPassword(password string) error {
	if len(password) < minPasswordLength {
		return &ValidationError{Message: fmt.Sprintf("password must be at least %d characters long", minPasswordLength)}
	}
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	switch {
	case !lower:
		return &ValidationError{Message: "password must contain a lowercase letter"}
	case !upper:
		return &ValidationError{Message: "password must contain an uppercase letter"}
	case !digit:
		return &ValidationError{Message: "password must contain a digit"}
	case !symbol:
		return &ValidationError{Message: fmt.Sprintf("password must contain a symbol from %q", passwordSymbols)}
	}
	return nil
}
