package service

import (
	"context"

	"shopauth/internal/domain"
	"shopauth/internal/hashcheck"
)

// UserHashStatus is one row of an integrity report.
type UserHashStatus struct {
	UserID     domain.UserID              `json:"userId"`
	Email      string                     `json:"email"`
	Empty      bool                       `json:"empty"`
	Corruption hashcheck.CorruptionReport `json:"corruption"`
}

type IntegrityReport struct {
	OverallStatus   string           `json:"overallStatus"` // "healthy" or "degraded"
	TotalUsers      int              `json:"totalUsers"`
	CorruptedHashes int              `json:"corruptedHashes"`
	EmptyHashes     int              `json:"emptyHashes"`
	OrphanedBackups int              `json:"orphanedBackups"` // backups with no audit row
	Details         []UserHashStatus `json:"details,omitempty"`
}

// RepairService owns every mutation of a stored hash outside registration.
// Backup must succeed before Repair may run; the pair is two ordered
// durable writes so a crash in between is detectable.
type RepairService interface {
	Backup(ctx context.Context, user *domain.User, hash string, report hashcheck.CorruptionReport) (domain.BackupID, error)
	Repair(ctx context.Context, user *domain.User, newHash string, backupID domain.BackupID, report hashcheck.CorruptionReport, method string) (domain.AuditID, error)
	IntegrityScan(ctx context.Context) (*IntegrityReport, error)
}

// EventLogger is append-only and must never fail its caller: logging
// problems are swallowed and reported out of band. The attempt id is read
// from the context so every component of one login writes under the same
// correlation key.
type EventLogger interface {
	Log(ctx context.Context, eventType string, userID *domain.UserID, attrs map[string]any, severity domain.Severity)
}
