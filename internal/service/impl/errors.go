package impl

import "errors"

var (
	ErrEmptyCredential   = errors.New("empty credential(s)")
	ErrEmptyPassword     = errors.New("empty password")
	ErrPasswordLength    = errors.New("password too short")
	ErrWeakBreakGlassKey = errors.New("break-glass key too short")
	ErrBreakGlassToken   = errors.New("invalid break-glass token")
)
