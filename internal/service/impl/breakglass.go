package impl

import (
	"fmt"
	"time"

	"shopauth/internal/service"

	"github.com/golang-jwt/jwt/v5"
)

// BreakGlassVerifier validates signed, short-lived operator tokens that
// open the gated recovery strategies. There is no boolean "dev mode": with
// no verifier configured the gated paths cannot be reached at all, and a
// token is checked per request, scope by scope.
type BreakGlassVerifier struct {
	key      []byte
	issuer   string
	audience string
	maxTTL   time.Duration
}

const minBreakGlassKeyLen = 32

func NewBreakGlassVerifier(key []byte, issuer, audience string, maxTTL time.Duration) (*BreakGlassVerifier, error) {
	if len(key) < minBreakGlassKeyLen {
		return nil, fmt.Errorf("%w: need at least %d bytes", ErrWeakBreakGlassKey, minBreakGlassKeyLen)
	}
	if maxTTL <= 0 {
		maxTTL = 15 * time.Minute
	}
	return &BreakGlassVerifier{key: key, issuer: issuer, audience: audience, maxTTL: maxTTL}, nil
}

type breakGlassClaims struct {
	Scopes []string `json:"scopes"`
	jwt.RegisteredClaims
}

// Verify parses and checks an operator token. HS256 only, issuer and
// audience pinned, expiry required, and the token's own lifetime must not
// exceed the configured ceiling: a long-lived break-glass token is a
// standing bypass, which is exactly what this design forbids.
func (b *BreakGlassVerifier) Verify(tokenString string) (*service.BreakGlassGrant, error) {
	var claims breakGlassClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (any, error) { return b.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(b.issuer),
		jwt.WithAudience(b.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBreakGlassToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing operator subject", ErrBreakGlassToken)
	}
	if claims.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing iat", ErrBreakGlassToken)
	}
	if claims.ExpiresAt.Sub(claims.IssuedAt.Time) > b.maxTTL {
		return nil, fmt.Errorf("%w: lifetime exceeds %s", ErrBreakGlassToken, b.maxTTL)
	}
	if len(claims.Scopes) == 0 {
		return nil, fmt.Errorf("%w: no scopes granted", ErrBreakGlassToken)
	}
	return &service.BreakGlassGrant{Operator: claims.Subject, Scopes: claims.Scopes}, nil
}

// IssueToken mints a break-glass token. Exposed for the operator tooling
// and the test suite; the service itself only ever verifies.
func (b *BreakGlassVerifier) IssueToken(operator string, scopes []string, ttl time.Duration) (string, error) {
	if ttl <= 0 || ttl > b.maxTTL {
		ttl = b.maxTTL
	}
	now := time.Now()
	claims := breakGlassClaims{
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operator,
			Issuer:    b.issuer,
			Audience:  jwt.ClaimStrings{b.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.key)
}
