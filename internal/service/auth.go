package service

import (
	"context"

	"shopauth/internal/dto"
)

// AuthService is the login entry point: it owns the business context (who
// is attempting, from where) and is the only component that drives the
// verifier, the recovery engine, and the event logger together.
type AuthService interface {
	Register(ctx context.Context, r dto.RegisterRequest, ip, ua string) (*dto.RegisterResponse, error)
	Login(ctx context.Context, r dto.LoginRequest, ip, ua string) (*dto.LoginResponse, error)
}
