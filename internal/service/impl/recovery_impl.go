package impl

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"shopauth/internal/domain"
	"shopauth/internal/hashcheck"
	"shopauth/internal/observability/metrics"
	"shopauth/internal/service"

	"golang.org/x/crypto/bcrypt"
)

// KnownBadOverride pins the one historical (hash, password) pair the
// override strategy may match. Both values are configured as SHA-256
// digests so neither secret appears in source or config in the clear.
// Zero value means the strategy is inert.
type KnownBadOverride struct {
	HashDigest     string
	PasswordDigest string
}

func (k KnownBadOverride) configured() bool {
	return k.HashDigest != "" && k.PasswordDigest != ""
}

// EmergencyPolicy fixes the single administrative account and the digest
// allow-list of recovery passwords for the emergency-access strategy.
// Zero value means the strategy is inert.
type EmergencyPolicy struct {
	AdminEmail      string
	PasswordDigests []string
}

func (e EmergencyPolicy) configured() bool {
	return e.AdminEmail != "" && len(e.PasswordDigests) > 0
}

// RecoveryEngine runs the bounded fallback sequence after a failed
// verification. Strategies run in fixed order, at most once each, and the
// engine stops at the first success. No strategy costs more than one
// additional bcrypt comparison.
type RecoveryEngine struct {
	Repair    service.RepairService // nil disables trim auto-repair
	Events    service.EventLogger
	KnownBad  KnownBadOverride
	Emergency EmergencyPolicy
}

func NewRecoveryEngine(repair service.RepairService, events service.EventLogger, knownBad KnownBadOverride, emergency EmergencyPolicy) *RecoveryEngine {
	return &RecoveryEngine{Repair: repair, Events: events, KnownBad: knownBad, Emergency: emergency}
}

func (e *RecoveryEngine) AttemptRecovery(ctx context.Context, user *domain.User, password string, vr service.VerificationResult, grant *service.BreakGlassGrant) service.RecoveryResult {
	res := service.RecoveryResult{}

	if e.trimRetry(ctx, user, password, vr, grant, &res) {
		return res
	}
	if e.knownBadOverride(ctx, user, password, grant, &res) {
		return res
	}
	if e.encodingCleanup(ctx, user, password, &res) {
		return res
	}
	e.emergencyAccess(ctx, user, password, grant, &res)
	return res
}

// trimRetry re-compares against the trimmed hash when the diagnosis
// flagged whitespace contamination. Writing the trimmed hash back is a
// repair and therefore gated behind an explicit operator scope.
func (e *RecoveryEngine) trimRetry(ctx context.Context, user *domain.User, password string, vr service.VerificationResult, grant *service.BreakGlassGrant, res *service.RecoveryResult) bool {
	if vr.Diagnostics == nil || !vr.Diagnostics.HashAnalysis.Corruption.Has(hashcheck.CorruptionWhitespace) {
		e.note(res, service.StrategyTrimRetry, "skipped: no whitespace issue flagged")
		return false
	}

	trimmed := strings.TrimSpace(user.Password)
	if bcrypt.CompareHashAndPassword([]byte(trimmed), []byte(password)) != nil {
		e.note(res, service.StrategyTrimRetry, "failed: trimmed hash does not match")
		metrics.RecoveryAttemptsTotal.WithLabelValues(service.StrategyTrimRetry, "failure").Inc()
		return false
	}

	res.Success = true
	res.Method = service.StrategyTrimRetry
	e.note(res, service.StrategyTrimRetry, "succeeded")
	metrics.RecoveryAttemptsTotal.WithLabelValues(service.StrategyTrimRetry, "success").Inc()

	if grant.Allows(service.ScopeTrimRepair) && e.Repair != nil {
		e.scheduleTrimRepair(ctx, user, trimmed, vr, res)
	} else {
		e.note(res, service.StrategyTrimRetry, "repair not scheduled: operator scope absent")
	}
	return true
}

func (e *RecoveryEngine) scheduleTrimRepair(ctx context.Context, user *domain.User, trimmed string, vr service.VerificationResult, res *service.RecoveryResult) {
	report := vr.Diagnostics.HashAnalysis.Corruption
	backupID, err := e.Repair.Backup(ctx, user, user.Password, report)
	if err != nil {
		e.note(res, service.StrategyTrimRetry, fmt.Sprintf("repair aborted: backup failed: %v", err))
		return
	}
	if _, err := e.Repair.Repair(ctx, user, trimmed, backupID, report, service.StrategyTrimRetry); err != nil {
		e.note(res, service.StrategyTrimRetry, fmt.Sprintf("repair failed after backup %s: %v", backupID, err))
		return
	}
	e.note(res, service.StrategyTrimRetry, "trimmed hash written back under backup "+backupID.String())
}

// knownBadOverride matches exactly one documented incident pair. It emits
// a security event on every evaluation, open gate or not.
func (e *RecoveryEngine) knownBadOverride(ctx context.Context, user *domain.User, password string, grant *service.BreakGlassGrant, res *service.RecoveryResult) bool {
	gateOpen := grant.Allows(service.ScopeKnownBad)

	outcome := "denied"
	defer func() {
		e.Events.Log(ctx, domain.EventKnownBadUsed, &user.ID, map[string]any{
			"gate_open": gateOpen,
			"outcome":   outcome,
			"operator":  operatorName(grant),
		}, domain.SeverityWarning)
	}()

	if !gateOpen {
		e.note(res, service.StrategyKnownBad, "skipped: break-glass gate closed")
		return false
	}
	if !e.KnownBad.configured() {
		e.note(res, service.StrategyKnownBad, "skipped: no incident pair configured")
		return false
	}
	if !digestMatches(e.KnownBad.HashDigest, user.Password) || !digestMatches(e.KnownBad.PasswordDigest, password) {
		e.note(res, service.StrategyKnownBad, "failed: pair does not match the documented incident")
		metrics.RecoveryAttemptsTotal.WithLabelValues(service.StrategyKnownBad, "failure").Inc()
		return false
	}

	outcome = "granted"
	res.Success = true
	res.Method = service.StrategyKnownBad
	e.note(res, service.StrategyKnownBad, "succeeded: documented incident pair matched")
	metrics.RecoveryAttemptsTotal.WithLabelValues(service.StrategyKnownBad, "success").Inc()
	return true
}

// encodingCleanup strips NUL and other control bytes picked up in transit
// or storage and retries when the cleaned value round-trips to the
// expected length.
func (e *RecoveryEngine) encodingCleanup(ctx context.Context, user *domain.User, password string, res *service.RecoveryResult) bool {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, user.Password)
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == user.Password {
		e.note(res, service.StrategyEncodingCleanup, "skipped: nothing to strip")
		return false
	}
	if len(cleaned) != hashcheck.EncodedLength {
		e.note(res, service.StrategyEncodingCleanup, fmt.Sprintf("skipped: cleaned value is %d chars, not %d", len(cleaned), hashcheck.EncodedLength))
		return false
	}
	if bcrypt.CompareHashAndPassword([]byte(cleaned), []byte(password)) != nil {
		e.note(res, service.StrategyEncodingCleanup, "failed: cleaned hash does not match")
		metrics.RecoveryAttemptsTotal.WithLabelValues(service.StrategyEncodingCleanup, "failure").Inc()
		return false
	}

	res.Success = true
	res.Method = service.StrategyEncodingCleanup
	e.note(res, service.StrategyEncodingCleanup, "succeeded after stripping control bytes")
	metrics.RecoveryAttemptsTotal.WithLabelValues(service.StrategyEncodingCleanup, "success").Inc()
	return true
}

// emergencyAccess is the break-glass path for the fixed administrative
// account. Every evaluation emits a security event; a grant is CRITICAL.
func (e *RecoveryEngine) emergencyAccess(ctx context.Context, user *domain.User, password string, grant *service.BreakGlassGrant, res *service.RecoveryResult) {
	gateOpen := grant.Allows(service.ScopeEmergency)

	if !gateOpen {
		e.note(res, service.StrategyEmergency, "skipped: break-glass gate closed")
		e.Events.Log(ctx, domain.EventEmergencyUsed, &user.ID, map[string]any{
			"gate_open": false,
			"outcome":   "denied",
		}, domain.SeverityWarning)
		return
	}

	granted := e.Emergency.configured() &&
		strings.EqualFold(user.Email, e.Emergency.AdminEmail) &&
		digestInList(e.Emergency.PasswordDigests, password)

	if !granted {
		e.note(res, service.StrategyEmergency, "failed: account or password outside the emergency policy")
		metrics.RecoveryAttemptsTotal.WithLabelValues(service.StrategyEmergency, "failure").Inc()
		e.Events.Log(ctx, domain.EventEmergencyUsed, &user.ID, map[string]any{
			"gate_open": true,
			"outcome":   "denied",
			"operator":  operatorName(grant),
		}, domain.SeverityError)
		return
	}

	res.Success = true
	res.Method = service.StrategyEmergency
	e.note(res, service.StrategyEmergency, "succeeded: emergency access granted")
	metrics.RecoveryAttemptsTotal.WithLabelValues(service.StrategyEmergency, "success").Inc()
	e.Events.Log(ctx, domain.EventEmergencyUsed, &user.ID, map[string]any{
		"gate_open": true,
		"outcome":   "granted",
		"operator":  operatorName(grant),
	}, domain.SeverityCritical)
}

func (e *RecoveryEngine) note(res *service.RecoveryResult, strategy, msg string) {
	res.Diagnostics = append(res.Diagnostics, strategy+": "+msg)
}

func operatorName(grant *service.BreakGlassGrant) string {
	if grant == nil {
		return ""
	}
	return grant.Operator
}

func digestMatches(wantHex, value string) bool {
	want, err := hex.DecodeString(wantHex)
	if err != nil || len(want) != sha256.Size {
		return false
	}
	got := sha256.Sum256([]byte(value))
	return subtle.ConstantTimeCompare(want, got[:]) == 1
}

func digestInList(digests []string, value string) bool {
	for _, d := range digests {
		if digestMatches(d, value) {
			return true
		}
	}
	return false
}
