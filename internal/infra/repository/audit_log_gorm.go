package repository

import (
	"context"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
	repo "github.com/putrairawan992/tradoora-b2b/internal/repository"

	"gorm.io/gorm"
)

type AuditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) *AuditLogGormRepository {
	return &AuditLogGormRepository{db: db}
}

var _ repo.AuditLogRepository = (*AuditLogGormRepository)(nil)

func (r *AuditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	return r.db.WithContext(ctx).Create(&log).Error
}

func (r *AuditLogGormRepository) Find(ctx context.Context, q repo.AuditLogQuery) ([]model.AuditLog, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.AuditLog{}).Scopes(auditLogWhere(q))

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []model.AuditLog
	err := base.
		Order("created_at DESC").
		Order("id DESC").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func auditLogWhere(q repo.AuditLogQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.ResourceType != "" {
			db = db.Where("resource_type = ?", q.ResourceType)
		}
		if q.ResourceID != "" {
			db = db.Where("resource_id = ?", q.ResourceID)
		}
		if q.ActorID != "" {
			db = db.Where("actor_id = ?", q.ActorID)
		}
		if q.Action != "" {
			db = db.Where("action = ?", q.Action)
		}
		return db
	}
}
