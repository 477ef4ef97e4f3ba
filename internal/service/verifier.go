package service

import (
	"time"

	"shopauth/internal/domain"
	"shopauth/internal/hashcheck"
)

type FailureReason string

const (
	FailureNone             FailureReason = ""
	FailureEmptyInput       FailureReason = "empty_input"
	FailureHashInvalid      FailureReason = "hash_invalid"
	FailureHashCorrupted    FailureReason = "hash_corrupted"
	FailurePasswordMismatch FailureReason = "password_mismatch"
)

// HashAnalysis bundles the two pure classifications of a stored hash.
type HashAnalysis struct {
	Validation hashcheck.ValidationResult `json:"validation"`
	Corruption hashcheck.CorruptionReport `json:"corruption"`
}

// EnvironmentCheck reports whether the bcrypt primitive works in this
// process. A broken runtime is a diagnosis finding, not an error.
type EnvironmentCheck struct {
	BcryptOperational bool   `json:"bcrypt_operational"`
	CostParseable     bool   `json:"cost_parseable"`
	DefaultCost       int    `json:"default_cost"`
	Detail            string `json:"detail,omitempty"`
}

// Diagnosis is produced fresh on every failed verification. It is never
// cached: the environment check must reflect the current process.
type Diagnosis struct {
	Timestamp       time.Time        `json:"timestamp"`
	PasswordLength  int              `json:"password_length"`
	HashAnalysis    HashAnalysis     `json:"hash_analysis"`
	Environment     EnvironmentCheck `json:"environment_check"`
	Recommendations []string         `json:"recommendations"`
	FailureReason   FailureReason    `json:"failure_reason"`
}

// VerificationResult is the verifier's complete decision for one attempt.
// Success requires both a well-formed hash and a matching comparison.
type VerificationResult struct {
	Success     bool
	HashValid   bool
	RawMatch    bool // outcome of the defensive raw comparison
	Diagnostics *Diagnosis
}

// RecoveryResult reports the outcome of the ordered fallback strategies.
// Diagnostics carries one line per attempted strategy, win or lose.
type RecoveryResult struct {
	Success     bool
	Method      string
	Diagnostics []string
}

// Verifier decides a single password/hash pair. It never mutates stored
// state and never logs: only the caller knows the business context.
type Verifier interface {
	Verify(password, hash string, userID *domain.UserID) VerificationResult
}

// Diagnostician explains a failed verification. Read-only and fast enough
// to run inline during a login request.
type Diagnostician interface {
	Diagnose(password, hash string, reason FailureReason) *Diagnosis
}
