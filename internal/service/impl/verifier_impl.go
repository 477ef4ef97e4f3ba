package impl

import (
	"shopauth/internal/domain"
	"shopauth/internal/hashcheck"
	"shopauth/internal/service"

	"golang.org/x/crypto/bcrypt"
)

// SecureVerifier decides a single password/hash pair: format validation,
// a defensive raw comparison, and a full diagnosis on failure. It holds no
// mutable state and is safe for concurrent use.
type SecureVerifier struct {
	Diag service.Diagnostician
}

func NewSecureVerifier() *SecureVerifier {
	return &SecureVerifier{Diag: NewDiagnostician()}
}

func (v *SecureVerifier) Verify(password, hash string, userID *domain.UserID) service.VerificationResult {
	_ = userID // carried for symmetry with callers; the decision depends only on the pair

	validation := hashcheck.Validate(hash)
	res := service.VerificationResult{HashValid: validation.Valid}

	// Empty password fails before any cryptographic work.
	if password == "" {
		res.Diagnostics = v.Diag.Diagnose(password, hash, service.FailureEmptyInput)
		return res
	}

	// The raw comparison runs even when validation failed: some
	// invalid-looking hashes are still comparable, and knowing whether the
	// secret matched changes the remediation.
	if hash != "" {
		res.RawMatch = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}

	if res.HashValid && res.RawMatch {
		res.Success = true
		return res
	}

	res.Diagnostics = v.Diag.Diagnose(password, hash, classifyFailure(hash, validation))
	return res
}

// classifyFailure picks the failure reason for a non-successful attempt.
// Priority: missing input, then structural damage, then plain mismatch.
func classifyFailure(hash string, validation hashcheck.ValidationResult) service.FailureReason {
	if hash == "" {
		return service.FailureEmptyInput
	}
	if !validation.Valid {
		if hashcheck.DetectCorruption(hash).Corrupted {
			return service.FailureHashCorrupted
		}
		return service.FailureHashInvalid
	}
	return service.FailurePasswordMismatch
}
