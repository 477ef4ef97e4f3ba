package store

import (
	"context"
	"time"

	"shopauth/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BackupStore struct{ db *gorm.DB }

func (s *Store) Backups() *BackupStore { return &BackupStore{db: s.DB} }

func (b *BackupStore) Create(ctx context.Context, backup *domain.HashBackup) error {
	if backup.ID == uuid.Nil {
		backup.ID = uuid.New()
	}
	if backup.CreatedAt.IsZero() {
		backup.CreatedAt = time.Now().UTC()
	}
	return b.db.WithContext(ctx).Create(backup).Error
}

func (b *BackupStore) GetByID(ctx context.Context, id domain.BackupID) (*domain.HashBackup, error) {
	var out domain.HashBackup
	if err := b.db.WithContext(ctx).First(&out, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &out, nil
}

// CountOrphaned counts backups that have no matching audit row: evidence of
// a crash between the backup write and the repair write.
func (b *BackupStore) CountOrphaned(ctx context.Context) (int64, error) {
	var n int64
	err := b.db.WithContext(ctx).
		Model(&domain.HashBackup{}).
		Where("NOT EXISTS (SELECT 1 FROM password_hash_audit a WHERE a.backup_id = password_hash_backups.id)").
		Count(&n).Error
	return n, err
}
