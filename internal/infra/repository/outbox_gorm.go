package repository

import (
	"context"
	"time"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
	repo "github.com/putrairawan992/tradoora-b2b/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OutboxGormRepository struct {
	db *gorm.DB
}

func NewOutboxGormRepository(db *gorm.DB) *OutboxGormRepository {
	return &OutboxGormRepository{db: db}
}

var _ repo.OutboxRepository = (*OutboxGormRepository)(nil)

func (r *OutboxGormRepository) Insert(ctx context.Context, event model.OutboxEvent) error {
	return r.db.WithContext(ctx).Create(&event).Error
}

// 複数relayが動いても同じ行を取り合わない
func (r *OutboxGormRepository) FetchPending(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var events []model.OutboxEvent
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("sent_at IS NULL").
		Order("id asc").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *OutboxGormRepository) MarkSent(ctx context.Context, id int64, sentAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.OutboxEvent{}).
		Where("id = ? AND sent_at IS NULL", id).
		Update("sent_at", sentAt)
	return affectedOne(res)
}
