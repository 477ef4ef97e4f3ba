package impl

import (
	"fmt"
	"strings"
	"time"

	"shopauth/internal/hashcheck"
	"shopauth/internal/service"

	"golang.org/x/crypto/bcrypt"
)

// DiagnosticianImpl explains failed verifications. It is read-only: the
// only work it does besides string inspection is a minimum-cost bcrypt
// round trip to prove the primitive functions in this process.
type DiagnosticianImpl struct {
	now func() time.Time
}

func NewDiagnostician() *DiagnosticianImpl {
	return &DiagnosticianImpl{now: time.Now}
}

func (d *DiagnosticianImpl) Diagnose(password, hash string, reason service.FailureReason) *service.Diagnosis {
	analysis := service.HashAnalysis{
		Validation: hashcheck.Validate(hash),
		Corruption: hashcheck.DetectCorruption(hash),
	}
	env := probeEnvironment(hash)

	diag := &service.Diagnosis{
		Timestamp:      d.now().UTC(),
		PasswordLength: len(password),
		HashAnalysis:   analysis,
		Environment:    env,
		FailureReason:  reason,
	}
	diag.Recommendations = recommend(reason, analysis, env)
	return diag
}

// probeEnvironment exercises the bcrypt primitive at minimum cost. Probing
// fresh on every diagnosis is deliberate: a cached answer could mask a
// runtime that degraded after startup.
func probeEnvironment(hash string) service.EnvironmentCheck {
	env := service.EnvironmentCheck{DefaultCost: bcrypt.DefaultCost}

	probe, err := bcrypt.GenerateFromPassword([]byte("environment-probe"), bcrypt.MinCost)
	if err != nil {
		env.Detail = fmt.Sprintf("bcrypt generate failed: %v", err)
		return env
	}
	if err := bcrypt.CompareHashAndPassword(probe, []byte("environment-probe")); err != nil {
		env.Detail = fmt.Sprintf("bcrypt round trip failed: %v", err)
		return env
	}
	env.BcryptOperational = true

	if trimmed := strings.TrimSpace(hash); hashcheck.HasAcceptedPrefix(trimmed) {
		if _, err := bcrypt.Cost([]byte(trimmed)); err == nil {
			env.CostParseable = true
		}
	}
	return env
}

// recommend orders remediation steps from most to least likely to resolve
// the failure.
func recommend(reason service.FailureReason, analysis service.HashAnalysis, env service.EnvironmentCheck) []string {
	var recs []string
	corr := analysis.Corruption

	if !env.BcryptOperational {
		recs = append(recs, "bcrypt primitive is not operational in this runtime; no verification can succeed until it is restored")
	}
	if reason == service.FailureEmptyInput {
		recs = append(recs, "empty password or missing credential submitted; re-prompt the user before diagnosing the stored hash")
	}
	if corr.Has(hashcheck.CorruptionWhitespace) {
		recs = append(recs, "hash appears whitespace-contaminated; retry the comparison against the trimmed value")
	}
	if corr.Has(hashcheck.CorruptionCharacterSet) {
		recs = append(recs, "hash contains bytes outside the bcrypt alphabet; run an encoding cleanup retry and schedule an integrity scan")
	}
	if corr.Has(hashcheck.CorruptionTruncated) || corr.Has(hashcheck.CorruptionOverlong) {
		recs = append(recs, "stored hash length is wrong; the column value was cut or padded in storage, restore it from a hash backup")
	}
	if corr.Has(hashcheck.CorruptionAlgorithmTag) {
		recs = append(recs, "algorithm tag is not a bcrypt prefix; the credential was written by a different hasher, require a password reset")
	}
	if hasIssue(analysis.Validation.Issues, "empty/null") {
		recs = append(recs, "no credential is stored for this account; the user must set a password")
	}
	if reason == service.FailurePasswordMismatch {
		recs = append(recs, "hash is well-formed and comparable; the supplied password does not match")
	}
	recs = append(recs, "if the account stays locked out, issue a password reset rather than editing the stored hash")
	return recs
}

func hasIssue(issues []string, want string) bool {
	for _, i := range issues {
		if i == want {
			return true
		}
	}
	return false
}
