package repository

import (
	"context"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
	repo "github.com/putrairawan992/tradoora-b2b/internal/repository"

	"gorm.io/gorm"
)

type ReviewGormRepository struct {
	db *gorm.DB
}

func NewReviewGormRepository(db *gorm.DB) *ReviewGormRepository {
	return &ReviewGormRepository{db: db}
}

var _ repo.ReviewRepository = (*ReviewGormRepository)(nil)

func (r *ReviewGormRepository) Create(ctx context.Context, review model.Review) (model.Review, error) {
	if err := r.db.WithContext(ctx).Create(&review).Error; err != nil {
		return model.Review{}, err
	}
	return review, nil
}

// userはid/nameだけ
func (r *ReviewGormRepository) ListByProductID(ctx context.Context, productID string) ([]model.Review, error) {
	var list []model.Review
	err := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Where("product_id = ?", productID).
		Order("created_at desc").
		Find(&list).Error
	if err != nil {
		return []model.Review{}, err
	}
	return list, nil
}

func (r *ReviewGormRepository) ListAll(ctx context.Context) ([]model.Review, error) {
	var list []model.Review
	err := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Order("created_at desc").
		Find(&list).Error
	if err != nil {
		return []model.Review{}, err
	}
	return list, nil
}
