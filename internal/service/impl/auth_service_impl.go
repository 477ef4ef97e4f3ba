package impl

import (
	"context"
	"strings"
	"time"

	"shopauth/internal/domain"
	"shopauth/internal/dto"
	"shopauth/internal/eventlog"
	"shopauth/internal/netutil"
	"shopauth/internal/observability/metrics"
	"shopauth/internal/service"
	"shopauth/internal/store"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthServiceImpl is the login entry point. It owns the business context
// (attempt id, client ip, user agent) and is therefore the component that
// logs: the verifier and the diagnostician stay pure.
type AuthServiceImpl struct {
	Store      authDataStore
	Verifier   service.Verifier
	Recovery   service.RecoveryService // nil: no fallback, plain deny
	BreakGlass *BreakGlassVerifier     // nil: gated strategies unreachable
	Events     service.EventLogger
	HashCost   int
}

func NewAuthServiceImpl(st *store.Store, verifier service.Verifier, recovery service.RecoveryService, breakGlass *BreakGlassVerifier, events service.EventLogger, hashCost int) *AuthServiceImpl {
	if hashCost < bcrypt.MinCost || hashCost > bcrypt.MaxCost {
		hashCost = bcrypt.DefaultCost
	}
	return &AuthServiceImpl{
		Store:      gormAuthAdapter{store: st},
		Verifier:   verifier,
		Recovery:   recovery,
		BreakGlass: breakGlass,
		Events:     events,
		HashCost:   hashCost,
	}
}

type authDataStore interface {
	Users() authUserStore
}

type authUserStore interface {
	Create(ctx context.Context, usr *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type gormAuthAdapter struct{ store *store.Store }

func (g gormAuthAdapter) Users() authUserStore { return g.store.Users() }

func (a *AuthServiceImpl) Register(ctx context.Context, r dto.RegisterRequest, ip, ua string) (*dto.RegisterResponse, error) {
	if r.Email == "" {
		return nil, ErrEmptyCredential
	}
	if r.Password == "" {
		return nil, ErrEmptyPassword
	}
	if len(r.Password) < 8 {
		return nil, ErrPasswordLength
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), a.HashCost)
	if err != nil {
		return nil, err
	}

	role := r.Role
	if role == "" {
		role = "customer"
	}
	now := time.Now().UTC()
	u := &domain.User{
		ID:        uuid.New(),
		Email:     r.Email,
		Password:  string(hash),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.Store.Users().Create(ctx, u); err != nil {
		return nil, err
	}
	return &dto.RegisterResponse{UserID: u.ID.String()}, nil
}

// Login runs the whole pipeline: verify, then the recovery engine when one
// is wired, then the uniform deny. Whatever internal branch failed, an
// unauthenticated caller sees only domain.ErrInvalidCredentials.
func (a *AuthServiceImpl) Login(ctx context.Context, r dto.LoginRequest, ip, ua string) (*dto.LoginResponse, error) {
	attemptID := uuid.New()
	ctx = eventlog.ContextWithAttemptID(ctx, attemptID)
	ua = netutil.TruncateUserAgent(ua)

	baseAttrs := func() map[string]any {
		return map[string]any{"ip": ip, "user_agent": ua}
	}
	a.Events.Log(ctx, domain.EventLoginAttempt, nil, baseAttrs(), domain.SeverityInfo)

	if r.Email == "" || r.Password == "" {
		metrics.VerificationsTotal.WithLabelValues("failure", string(service.FailureEmptyInput)).Inc()
		attrs := baseAttrs()
		attrs["reason"] = string(service.FailureEmptyInput)
		a.Events.Log(ctx, domain.EventLoginFailed, nil, attrs, domain.SeverityInfo)
		return nil, domain.ErrInvalidCredentials
	}

	user, err := a.Store.Users().GetByEmail(ctx, strings.TrimSpace(r.Email))
	if err != nil {
		// Unknown account: don't reveal which field failed.
		attrs := baseAttrs()
		attrs["reason"] = "unknown_account"
		a.Events.Log(ctx, domain.EventLoginFailed, nil, attrs, domain.SeverityInfo)
		return nil, domain.ErrInvalidCredentials
	}
	if user.IsDisabled {
		attrs := baseAttrs()
		attrs["reason"] = "disabled"
		a.Events.Log(ctx, domain.EventLoginFailed, &user.ID, attrs, domain.SeverityWarning)
		return nil, domain.ErrUserDisabled
	}

	vr := a.Verifier.Verify(r.Password, user.Password, &user.ID)
	if vr.Success {
		metrics.VerificationsTotal.WithLabelValues("success", "").Inc()
		a.Events.Log(ctx, domain.EventLoginSuccess, &user.ID, baseAttrs(), domain.SeverityInfo)
		return &dto.LoginResponse{UserID: user.ID.String(), Authenticated: true}, nil
	}

	reason := service.FailureNone
	if vr.Diagnostics != nil {
		reason = vr.Diagnostics.FailureReason
	}
	metrics.VerificationsTotal.WithLabelValues("failure", string(reason)).Inc()
	a.logHashFindings(ctx, user, vr)

	if a.Recovery != nil {
		grant := a.resolveGrant(ctx, user, r.BreakGlassToken)
		rr := a.Recovery.AttemptRecovery(ctx, user, r.Password, vr, grant)
		if rr.Success {
			attrs := baseAttrs()
			attrs["method"] = rr.Method
			attrs["strategy_log"] = rr.Diagnostics
			a.Events.Log(ctx, domain.EventRecoveryWorked, &user.ID, attrs, domain.SeverityWarning)
			a.Events.Log(ctx, domain.EventLoginSuccess, &user.ID, attrs, domain.SeverityWarning)
			return &dto.LoginResponse{UserID: user.ID.String(), Authenticated: true, RecoveryMethod: rr.Method}, nil
		}
		attrs := baseAttrs()
		attrs["strategy_log"] = rr.Diagnostics
		a.Events.Log(ctx, domain.EventRecoveryTried, &user.ID, attrs, domain.SeverityInfo)
	}

	attrs := baseAttrs()
	attrs["reason"] = string(reason)
	a.Events.Log(ctx, domain.EventLoginFailed, &user.ID, attrs, domain.SeverityInfo)
	return nil, domain.ErrInvalidCredentials
}

// logHashFindings records hash-quality problems discovered during a failed
// verification, so corrupted rows show up in the trail even before anyone
// runs an integrity scan.
func (a *AuthServiceImpl) logHashFindings(ctx context.Context, user *domain.User, vr service.VerificationResult) {
	if vr.HashValid || vr.Diagnostics == nil {
		return
	}
	corr := vr.Diagnostics.HashAnalysis.Corruption
	if corr.Corrupted {
		a.Events.Log(ctx, domain.EventHashCorrupted, &user.ID, map[string]any{
			"corruption_types": corr.Types,
			"severity":         string(corr.Severity),
		}, domain.SeverityError)
		return
	}
	a.Events.Log(ctx, domain.EventHashInvalid, &user.ID, map[string]any{
		"issues": vr.Diagnostics.HashAnalysis.Validation.Issues,
	}, domain.SeverityWarning)
}

// resolveGrant verifies a presented break-glass token. Presenting one is
// itself a security event, valid or not.
func (a *AuthServiceImpl) resolveGrant(ctx context.Context, user *domain.User, token string) *service.BreakGlassGrant {
	if token == "" || a.BreakGlass == nil {
		return nil
	}
	grant, err := a.BreakGlass.Verify(token)
	if err != nil {
		a.Events.Log(ctx, domain.EventBreakGlass, &user.ID, map[string]any{
			"valid": false,
			"error": err.Error(),
		}, domain.SeverityError)
		return nil
	}
	a.Events.Log(ctx, domain.EventBreakGlass, &user.ID, map[string]any{
		"valid":    true,
		"operator": grant.Operator,
		"scopes":   grant.Scopes,
	}, domain.SeverityWarning)
	return grant
}
