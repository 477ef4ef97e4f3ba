package domain

import "time"

// HashBackup preserves a user's stored hash immediately before any repair
// touches it. Rows are immutable once written; there is no delete path.
type HashBackup struct {
	ID           BackupID  `gorm:"type:uuid;primaryKey" db:"id"`
	UserID       UserID    `gorm:"type:uuid;index:ix_hash_backups_user" db:"user_id"`
	OriginalHash string    `gorm:"type:text;not null" db:"original_hash"`
	Analysis     []byte    `gorm:"type:jsonb" db:"analysis"` // corruption report snapshot
	CreatedAt    time.Time `gorm:"not null" db:"created_at"`
}

func (HashBackup) TableName() string { return "password_hash_backups" }

// HashAudit records one repair action. Exactly one audit row per backup;
// a backup with no matching audit row means the process died between the
// two writes and the integrity scan will surface it.
type HashAudit struct {
	ID           AuditID   `gorm:"type:uuid;primaryKey" db:"id"`
	UserID       UserID    `gorm:"type:uuid;index:ix_hash_audit_user" db:"user_id"`
	BackupID     BackupID  `gorm:"type:uuid;uniqueIndex:ux_hash_audit_backup" db:"backup_id"`
	NewHash      string    `gorm:"type:text;not null" db:"new_hash"`
	Analysis     []byte    `gorm:"type:jsonb" db:"analysis"`
	RepairMethod string    `gorm:"type:text;not null" db:"repair_method"`
	CreatedAt    time.Time `gorm:"not null" db:"created_at"`
}

func (HashAudit) TableName() string { return "password_hash_audit" }
