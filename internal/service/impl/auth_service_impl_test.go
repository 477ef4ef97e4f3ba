package impl

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"shopauth/internal/domain"
	"shopauth/internal/dto"
	"shopauth/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memAuthStore struct {
	mu    sync.Mutex
	users map[string]*domain.User // keyed by lowercased email
}

func newMemAuthStore() *memAuthStore {
	return &memAuthStore{users: map[string]*domain.User{}}
}

func (m *memAuthStore) Users() authUserStore { return m }

func (m *memAuthStore) Create(ctx context.Context, usr *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(usr.Email)
	if _, exists := m.users[key]; exists {
		return errors.New("duplicate email")
	}
	cp := *usr
	m.users[key] = &cp
	return nil
}

func (m *memAuthStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, errors.New("record not found")
	}
	cp := *u
	return &cp, nil
}

func (m *memAuthStore) put(u *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[strings.ToLower(u.Email)] = &cp
}

type authFixture struct {
	svc    *AuthServiceImpl
	store  *memAuthStore
	events *stubEventLogger
}

func newAuthFixture(recovery service.RecoveryService, breakGlass *BreakGlassVerifier) authFixture {
	st := newMemAuthStore()
	events := &stubEventLogger{}
	return authFixture{
		svc: &AuthServiceImpl{
			Store:      st,
			Verifier:   NewSecureVerifier(),
			Recovery:   recovery,
			BreakGlass: breakGlass,
			Events:     events,
			HashCost:   bcrypt.MinCost,
		},
		store:  st,
		events: events,
	}
}

func TestRegisterThenLogin(t *testing.T) {
	f := newAuthFixture(nil, nil)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, dto.RegisterRequest{Email: "carol@shop.example", Password: "hunter22x"}, "203.0.113.9", "test-agent")
	require.NoError(t, err)
	require.NotEmpty(t, reg.UserID)

	stored := f.store.users["carol@shop.example"]
	require.NotNil(t, stored)
	assert.Equal(t, "customer", stored.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("hunter22x")))

	res, err := f.svc.Login(ctx, dto.LoginRequest{Email: "carol@shop.example", Password: "hunter22x"}, "203.0.113.9", "test-agent")
	require.NoError(t, err)
	assert.True(t, res.Authenticated)
	assert.Equal(t, reg.UserID, res.UserID)
	assert.Empty(t, res.RecoveryMethod)

	assert.Equal(t, 1, f.events.count(domain.EventLoginAttempt))
	assert.Equal(t, 1, f.events.count(domain.EventLoginSuccess))
}

func TestRegisterValidation(t *testing.T) {
	f := newAuthFixture(nil, nil)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, dto.RegisterRequest{Email: "", Password: "hunter22x"}, "", "")
	assert.True(t, errors.Is(err, ErrEmptyCredential))

	_, err = f.svc.Register(ctx, dto.RegisterRequest{Email: "a@b.example", Password: ""}, "", "")
	assert.True(t, errors.Is(err, ErrEmptyPassword))

	_, err = f.svc.Register(ctx, dto.RegisterRequest{Email: "a@b.example", Password: "short"}, "", "")
	assert.True(t, errors.Is(err, ErrPasswordLength))
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(nil, nil)
	ctx := context.Background()

	f.store.put(&domain.User{ID: uuid.New(), Email: "carol@shop.example", Password: mustHash(t, "right"), Role: "customer"})

	_, err := f.svc.Login(ctx, dto.LoginRequest{Email: "carol@shop.example", Password: "wrong"}, "", "")
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))

	ev, ok := f.events.last(domain.EventLoginFailed)
	require.True(t, ok)
	assert.Equal(t, string(service.FailurePasswordMismatch), ev.attrs["reason"])
}

func TestLoginUnknownAccount(t *testing.T) {
	f := newAuthFixture(nil, nil)

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{Email: "nobody@shop.example", Password: "whatever"}, "", "")
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))

	ev, ok := f.events.last(domain.EventLoginFailed)
	require.True(t, ok)
	assert.Equal(t, "unknown_account", ev.attrs["reason"])
	assert.Nil(t, ev.userID)
}

func TestLoginEmptyCredentials(t *testing.T) {
	f := newAuthFixture(nil, nil)

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{Email: "carol@shop.example", Password: ""}, "", "")
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))

	ev, ok := f.events.last(domain.EventLoginFailed)
	require.True(t, ok)
	assert.Equal(t, string(service.FailureEmptyInput), ev.attrs["reason"])
}

func TestLoginDisabledUser(t *testing.T) {
	f := newAuthFixture(nil, nil)

	f.store.put(&domain.User{ID: uuid.New(), Email: "carol@shop.example", Password: mustHash(t, "hunter22"), IsDisabled: true})

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{Email: "carol@shop.example", Password: "hunter22"}, "", "")
	assert.True(t, errors.Is(err, domain.ErrUserDisabled))
}

func TestLoginRecoversWhitespaceContaminatedHash(t *testing.T) {
	events := &stubEventLogger{}
	engine := NewRecoveryEngine(nil, events, KnownBadOverride{}, EmergencyPolicy{})
	f := newAuthFixture(engine, nil)
	ctx := context.Background()

	hash := mustHash(t, "hunter22")
	f.store.put(&domain.User{ID: uuid.New(), Email: "carol@shop.example", Password: "  " + hash + "\n"})

	res, err := f.svc.Login(ctx, dto.LoginRequest{Email: "carol@shop.example", Password: "hunter22"}, "203.0.113.9", "test-agent")
	require.NoError(t, err)
	assert.True(t, res.Authenticated)
	assert.Equal(t, service.StrategyTrimRetry, res.RecoveryMethod)

	// The corrupted row and the recovery both made the trail.
	assert.Equal(t, 1, f.events.count(domain.EventHashCorrupted))
	assert.Equal(t, 1, f.events.count(domain.EventRecoveryWorked))
	assert.Equal(t, 1, f.events.count(domain.EventLoginSuccess))
	assert.Zero(t, f.events.count(domain.EventLoginFailed))
}

func TestLoginRecoveryExhausted(t *testing.T) {
	events := &stubEventLogger{}
	engine := NewRecoveryEngine(nil, events, KnownBadOverride{}, EmergencyPolicy{})
	f := newAuthFixture(engine, nil)

	f.store.put(&domain.User{ID: uuid.New(), Email: "carol@shop.example", Password: mustHash(t, "right")})

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{Email: "carol@shop.example", Password: "wrong"}, "", "")
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))

	assert.Equal(t, 1, f.events.count(domain.EventRecoveryTried))
	assert.Equal(t, 1, f.events.count(domain.EventLoginFailed))
	assert.Zero(t, f.events.count(domain.EventLoginSuccess))
}

func TestLoginBreakGlassTokenIsAudited(t *testing.T) {
	bg := newTestVerifier(t)
	engine := NewRecoveryEngine(nil, &stubEventLogger{}, KnownBadOverride{}, EmergencyPolicy{})
	f := newAuthFixture(engine, bg)
	ctx := context.Background()

	f.store.put(&domain.User{ID: uuid.New(), Email: "admin@shop.example", Password: mustHash(t, "right")})

	token, err := bg.IssueToken("alice@ops", []string{service.ScopeEmergency}, 5*time.Minute)
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, dto.LoginRequest{Email: "admin@shop.example", Password: "wrong", BreakGlassToken: token}, "", "")
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))

	ev, ok := f.events.last(domain.EventBreakGlass)
	require.True(t, ok)
	assert.Equal(t, true, ev.attrs["valid"])
	assert.Equal(t, "alice@ops", ev.attrs["operator"])

	_, err = f.svc.Login(ctx, dto.LoginRequest{Email: "admin@shop.example", Password: "wrong", BreakGlassToken: "garbage"}, "", "")
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))

	ev, ok = f.events.last(domain.EventBreakGlass)
	require.True(t, ok)
	assert.Equal(t, false, ev.attrs["valid"])
}
