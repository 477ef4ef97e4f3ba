package domain

import "time"

type AuthEvent struct {
	ID         EventID   `gorm:"type:uuid;primaryKey" db:"id"`
	EventType  string    `gorm:"type:text;not null;index:ix_auth_events_type" db:"event_type"`
	UserID     *UserID   `gorm:"type:uuid" db:"user_id"`
	AttemptID  AttemptID `gorm:"type:uuid;index:ix_auth_events_attempt" db:"attempt_id"`
	Attributes []byte    `gorm:"type:jsonb" db:"attributes"`
	Severity   Severity  `gorm:"type:text;not null" db:"severity"`
	CreatedAt  time.Time `gorm:"not null" db:"created_at"`
}

func (AuthEvent) TableName() string { return "auth_events" }

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Event type constants. One entry per decision point in the verification
// and recovery pipeline.
const (
	EventLoginAttempt   = "auth.login_attempt"
	EventLoginSuccess   = "auth.login_success"
	EventLoginFailed    = "auth.login_failed"
	EventHashInvalid    = "auth.hash_invalid"
	EventHashCorrupted  = "auth.hash_corrupted"
	EventRecoveryTried  = "recovery.strategy_attempted"
	EventRecoveryWorked = "recovery.strategy_succeeded"
	EventKnownBadUsed   = "security.known_bad_override"
	EventEmergencyUsed  = "security.emergency_access"
	EventBreakGlass     = "security.break_glass_presented"
	EventBackupCreated  = "repair.backup_created"
	EventHashRepaired   = "repair.hash_repaired"
	EventRepairFailed   = "repair.failed_after_backup"
	EventIntegrityScan  = "integrity.scan_completed"
)
