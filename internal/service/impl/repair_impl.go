package impl

import (
	"context"
	"encoding/json"
	"fmt"

	"shopauth/internal/domain"
	"shopauth/internal/hashcheck"
	"shopauth/internal/observability/metrics"
	"shopauth/internal/service"
	"shopauth/internal/store"

	"github.com/google/uuid"
)

// Narrow store interfaces, satisfied by the gorm store and by the
// in-memory store in tests.

type repairTx interface {
	Users() repairUserStore
	Audits() repairAuditStore
}

type repairDataStore interface {
	WithTx(ctx context.Context, fn func(tx repairTx) error) error
	Users() repairUserStore
	Backups() repairBackupStore
	Audits() repairAuditStore
}

type repairUserStore interface {
	UpdatePassword(ctx context.Context, userID domain.UserID, hash string) error
	ListPage(ctx context.Context, afterID domain.UserID, limit int) ([]domain.User, error)
}

type repairBackupStore interface {
	Create(ctx context.Context, backup *domain.HashBackup) error
	GetByID(ctx context.Context, id domain.BackupID) (*domain.HashBackup, error)
	CountOrphaned(ctx context.Context) (int64, error)
}

type repairAuditStore interface {
	Create(ctx context.Context, entry *domain.HashAudit) error
}

type gormRepairAdapter struct{ store *store.Store }

func (g gormRepairAdapter) WithTx(ctx context.Context, fn func(tx repairTx) error) error {
	return g.store.WithTx(ctx, func(tx *store.Store) error {
		return fn(gormRepairTx{tx: tx})
	})
}

func (g gormRepairAdapter) Users() repairUserStore     { return g.store.Users() }
func (g gormRepairAdapter) Backups() repairBackupStore { return g.store.Backups() }
func (g gormRepairAdapter) Audits() repairAuditStore   { return g.store.Audits() }

type gormRepairTx struct{ tx *store.Store }

func (g gormRepairTx) Users() repairUserStore   { return g.tx.Users() }
func (g gormRepairTx) Audits() repairAuditStore { return g.tx.Audits() }

const scanPageSize = 500

// RepairServiceImpl owns every hash mutation outside registration. The
// contract is backup first, repair second, as two ordered durable writes:
// a crash in between leaves a backup with no audit row, which the
// integrity scan reports as an orphan.
type RepairServiceImpl struct {
	Store  repairDataStore
	Events service.EventLogger
}

func NewRepairService(st *store.Store, events service.EventLogger) *RepairServiceImpl {
	return &RepairServiceImpl{Store: gormRepairAdapter{store: st}, Events: events}
}

func (s *RepairServiceImpl) Backup(ctx context.Context, user *domain.User, hash string, report hashcheck.CorruptionReport) (domain.BackupID, error) {
	analysis, _ := json.Marshal(report)
	backup := &domain.HashBackup{
		ID:           uuid.New(),
		UserID:       user.ID,
		OriginalHash: hash,
		Analysis:     analysis,
	}
	if err := s.Store.Backups().Create(ctx, backup); err != nil {
		return uuid.Nil, fmt.Errorf("%w: backup write: %v", domain.ErrPersistence, err)
	}

	s.Events.Log(ctx, domain.EventBackupCreated, &user.ID, map[string]any{
		"backup_id": backup.ID.String(),
		"severity":  string(report.Severity),
	}, domain.SeverityInfo)
	return backup.ID, nil
}

func (s *RepairServiceImpl) Repair(ctx context.Context, user *domain.User, newHash string, backupID domain.BackupID, report hashcheck.CorruptionReport, method string) (domain.AuditID, error) {
	backup, err := s.Store.Backups().GetByID(ctx, backupID)
	if err != nil || backup.UserID != user.ID {
		return uuid.Nil, domain.ErrRepairWithoutBackup
	}

	analysis, _ := json.Marshal(report)
	audit := &domain.HashAudit{
		ID:           uuid.New(),
		UserID:       user.ID,
		BackupID:     backupID,
		NewHash:      newHash,
		Analysis:     analysis,
		RepairMethod: method,
	}

	err = s.Store.WithTx(ctx, func(tx repairTx) error {
		if err := tx.Users().UpdatePassword(ctx, user.ID, newHash); err != nil {
			return err
		}
		return tx.Audits().Create(ctx, audit)
	})
	if err != nil {
		// The backup row already exists; failing here leaves the audit
		// trail inconsistent and must not look like a routine auth error.
		metrics.HashRepairsTotal.WithLabelValues("failure").Inc()
		s.Events.Log(ctx, domain.EventRepairFailed, &user.ID, map[string]any{
			"backup_id": backupID.String(),
			"method":    method,
			"error":     err.Error(),
		}, domain.SeverityCritical)
		return uuid.Nil, fmt.Errorf("%w: backup %s: %v", domain.ErrAuditWriteFailed, backupID, err)
	}

	user.Password = newHash
	metrics.HashRepairsTotal.WithLabelValues("success").Inc()
	s.Events.Log(ctx, domain.EventHashRepaired, &user.ID, map[string]any{
		"backup_id": backupID.String(),
		"audit_id":  audit.ID.String(),
		"method":    method,
	}, domain.SeverityWarning)
	return audit.ID, nil
}

// IntegrityScan walks every stored credential and classifies it. It runs
// under no transaction: logins may race it, and a best-effort snapshot is
// the point.
func (s *RepairServiceImpl) IntegrityScan(ctx context.Context) (*service.IntegrityReport, error) {
	report := &service.IntegrityReport{OverallStatus: "healthy"}

	var after domain.UserID
	for {
		users, err := s.Store.Users().ListPage(ctx, after, scanPageSize)
		if err != nil {
			return nil, fmt.Errorf("%w: user scan: %v", domain.ErrPersistence, err)
		}
		for i := range users {
			u := &users[i]
			report.TotalUsers++
			if u.Password == "" {
				report.EmptyHashes++
				report.Details = append(report.Details, service.UserHashStatus{
					UserID: u.ID, Email: u.Email, Empty: true,
					Corruption: hashcheck.DetectCorruption(""),
				})
				continue
			}
			if rep := hashcheck.DetectCorruption(u.Password); rep.Corrupted {
				report.CorruptedHashes++
				report.Details = append(report.Details, service.UserHashStatus{
					UserID: u.ID, Email: u.Email, Corruption: rep,
				})
			}
		}
		if len(users) < scanPageSize {
			break
		}
		after = users[len(users)-1].ID
	}

	orphans, err := s.Store.Backups().CountOrphaned(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: orphan count: %v", domain.ErrPersistence, err)
	}
	report.OrphanedBackups = int(orphans)

	if report.CorruptedHashes > 0 || report.OrphanedBackups > 0 {
		report.OverallStatus = "degraded"
	}
	metrics.IntegrityScansTotal.WithLabelValues(report.OverallStatus).Inc()
	s.Events.Log(ctx, domain.EventIntegrityScan, nil, map[string]any{
		"total_users":      report.TotalUsers,
		"corrupted_hashes": report.CorruptedHashes,
		"empty_hashes":     report.EmptyHashes,
		"orphaned_backups": report.OrphanedBackups,
		"status":           report.OverallStatus,
	}, domain.SeverityInfo)
	return report, nil
}
