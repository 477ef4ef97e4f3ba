package store

import (
	"context"
	"time"

	"shopauth/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventStore struct{ db *gorm.DB }

func (s *Store) Events() *EventStore { return &EventStore{db: s.DB} }

// Append inserts one event row. There is no update or delete path.
func (e *EventStore) Append(ctx context.Context, ev *domain.AuthEvent) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	return e.db.WithContext(ctx).Create(ev).Error
}

func (e *EventStore) ListByAttempt(ctx context.Context, attemptID domain.AttemptID) ([]domain.AuthEvent, error) {
	var out []domain.AuthEvent
	if err := e.db.WithContext(ctx).Where("attempt_id = ?", attemptID).Order("created_at").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
