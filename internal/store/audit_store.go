package store

import (
	"context"
	"time"

	"shopauth/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditStore struct{ db *gorm.DB }

func (s *Store) Audits() *AuditStore { return &AuditStore{db: s.DB} }

func (a *AuditStore) Create(ctx context.Context, entry *domain.HashAudit) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return a.db.WithContext(ctx).Create(entry).Error
}

func (a *AuditStore) GetByBackupID(ctx context.Context, backupID domain.BackupID) (*domain.HashAudit, error) {
	var out domain.HashAudit
	if err := a.db.WithContext(ctx).First(&out, "backup_id = ?", backupID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (a *AuditStore) ListByUser(ctx context.Context, userID domain.UserID) ([]domain.HashAudit, error) {
	var out []domain.HashAudit
	if err := a.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
