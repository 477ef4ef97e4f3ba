package service

import (
	"context"

	"shopauth/internal/domain"
)

// Recovery strategy names, in the fixed order they are tried.
const (
	StrategyTrimRetry       = "whitespace_trim_retry"
	StrategyKnownBad        = "known_bad_hash_override"
	StrategyEncodingCleanup = "encoding_cleanup_retry"
	StrategyEmergency       = "emergency_access"
)

// BreakGlassGrant is the parsed, verified operator token that opens the
// gated recovery paths. A nil grant is the hardened default: the known-bad
// override and emergency access are unreachable without one.
type BreakGlassGrant struct {
	Operator string
	Scopes   []string
}

// Break-glass scopes.
const (
	ScopeTrimRepair = "trim-repair"
	ScopeKnownBad   = "known-bad-override"
	ScopeEmergency  = "emergency-access"
)

func (g *BreakGlassGrant) Allows(scope string) bool {
	if g == nil {
		return false
	}
	for _, s := range g.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// RecoveryService tries the bounded fallback strategies after a failed
// verification. Strategies run at most once each and in fixed order.
type RecoveryService interface {
	AttemptRecovery(ctx context.Context, user *domain.User, password string, vr VerificationResult, grant *BreakGlassGrant) RecoveryResult
}
