package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user disabled")
	ErrUserNotFound       = errors.New("user not found")

	// ErrPersistence wraps any failed durable write in the repair pipeline.
	ErrPersistence = errors.New("persistence failure")

	// ErrRepairWithoutBackup is a programming error: Repair was called with
	// a backup id that does not exist or belongs to another user.
	ErrRepairWithoutBackup = errors.New("repair requires a prior backup for the same user")

	// ErrAuditWriteFailed is the one fatal condition: the backup exists but
	// the repair transaction could not complete, leaving the audit trail
	// inconsistent. Callers must surface this loudly, not fold it into a
	// routine auth failure.
	ErrAuditWriteFailed = errors.New("repair failed after backup was written")
)
