package main

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
)

// randomToken returns 32 random bytes, base64 URL encoded. Used for both
// session tokens and CSRF tokens.
func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func newCSRFToken() (string, error) { return randomToken() }

// validCSRF reports whether the submitted form token matches the session's
// live CSRF token. Constant-time compare; empty input always fails.
func validCSRF(s Session, submitted string) bool {
	if submitted == "" || s.CSRFToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.CSRFToken), []byte(submitted)) == 1
}
