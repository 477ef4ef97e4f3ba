// Package hashcheck classifies stored bcrypt hash strings without touching
// the crypto primitive: format validation and corruption detection are pure
// string inspection, cheap enough to run inline on every login.
package hashcheck

import (
	"fmt"
	"strings"
)

// EncodedLength is the fixed length of a bcrypt modular-crypt string:
// "$2y$" + 2-digit cost + "$" + 22-char salt + 31-char digest.
const EncodedLength = 60

// acceptedPrefixes are the bcrypt algorithm tags this system stores.
// $2y$ is what the PHP-era rows carry; $2a$/$2b$ appear in rows written by
// other bcrypt implementations.
var acceptedPrefixes = []string{"$2y$", "$2a$", "$2b$"}

const bcryptAlphabet = "./0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues,omitempty"`
}

// Validate reports whether hash is a syntactically well-formed bcrypt
// string. All violations are collected, not short-circuited, except for the
// empty string, which carries no further structure to inspect. It never
// panics regardless of input.
func Validate(hash string) ValidationResult {
	if hash == "" {
		return ValidationResult{Valid: false, Issues: []string{"empty/null"}}
	}

	var issues []string

	trimmed := strings.TrimSpace(hash)
	if trimmed != hash {
		issues = append(issues, "whitespace")
	}
	if len(trimmed) != EncodedLength {
		issues = append(issues, fmt.Sprintf("invalid length: %d (expected %d)", len(trimmed), EncodedLength))
	}
	if !HasAcceptedPrefix(trimmed) {
		issues = append(issues, "wrong algorithm prefix")
	} else if !bodyWellFormed(trimmed) {
		issues = append(issues, "invalid characters")
	}

	return ValidationResult{Valid: len(issues) == 0, Issues: issues}
}

// HasAcceptedPrefix reports whether s starts with one of the bcrypt
// algorithm tags this system accepts.
func HasAcceptedPrefix(s string) bool {
	for _, p := range acceptedPrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// bodyWellFormed checks everything after the algorithm tag: a two-digit
// cost, a '$' separator, and a salt+digest drawn from the bcrypt base-64
// alphabet. Length is checked separately so a truncated-but-clean hash
// yields a length issue only.
func bodyWellFormed(s string) bool {
	rest := s[len("$2y$"):]
	if len(rest) < 3 {
		return false
	}
	if !isDigit(rest[0]) || !isDigit(rest[1]) || rest[2] != '$' {
		return false
	}
	if cost := int(rest[0]-'0')*10 + int(rest[1]-'0'); cost < 4 || cost > 31 {
		return false
	}
	for i := 3; i < len(rest); i++ {
		if !strings.ContainsRune(bcryptAlphabet, rune(rest[i])) {
			return false
		}
	}
	return true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
