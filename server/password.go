package main

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// PolicyError carries a user-safe validation message.
type PolicyError string

func (e PolicyError) Error() string { return string(e) }

const errWeakPassword = PolicyError("Password must be at least 8 characters and include uppercase, lowercase, and a number.")

// bcryptCost is overridable via BCRYPT_COST (and lowered in tests).
var bcryptCost = bcrypt.DefaultCost

// validatePassword enforces the strength policy: length >= 8 with at least
// one uppercase letter, one lowercase letter and one digit.
func validatePassword(pw string) error {
	if len(pw) < 8 {
		return errWeakPassword
	}
	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return errWeakPassword
	}
	return nil
}

// hashPassword produces a salted bcrypt digest; every call salts anew, so
// two hashes of the same input differ.
func hashPassword(pw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// verifyPassword reports whether pw matches hash. A malformed hash simply
// fails verification.
func verifyPassword(pw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
