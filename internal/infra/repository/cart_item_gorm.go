package repository

import (
	"context"
	"errors"
	"time"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
	repo "github.com/putrairawan992/tradoora-b2b/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartItemGormRepository struct {
	db *gorm.DB
}

func NewCartItemGormRepository(db *gorm.DB) *CartItemGormRepository {
	return &CartItemGormRepository{db: db}
}

var _ repo.CartItemRepository = (*CartItemGormRepository)(nil)

func (r *CartItemGormRepository) ListByUserID(ctx context.Context, userID string) ([]model.CartItem, error) {
	items := []model.CartItem{}
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return []model.CartItem{}, err
	}
	return items, nil
}

func (r *CartItemGormRepository) FindByUserAndProduct(ctx context.Context, userID, productID string) (model.CartItem, bool, error) {
	item, err := r.take(r.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID))
	if errors.Is(err, repo.ErrNotFound) {
		return model.CartItem{}, false, nil
	}
	return item, err == nil, err
}

func (r *CartItemGormRepository) FindByID(ctx context.Context, cartItemID string) (model.CartItem, error) {
	return r.take(r.db.WithContext(ctx).Preload("Product").Where("id = ?", cartItemID))
}

func (r *CartItemGormRepository) take(q *gorm.DB) (model.CartItem, error) {
	var item model.CartItem
	switch err := q.Take(&item).Error; {
	case isNotFound(err):
		return model.CartItem{}, repo.ErrNotFound
	case err != nil:
		return model.CartItem{}, err
	}
	return item, nil
}

// INSERT ... ON CONFLICT (user_id, product_id) DO UPDATE SET qty = qty + EXCLUDED.qty
func (r *CartItemGormRepository) UpsertByUserAndProduct(ctx context.Context, userID, productID string, addQty int64) (model.CartItem, error) {
	if addQty <= 0 {
		return model.CartItem{}, errors.New("invalid quantity")
	}

	item := model.CartItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: productID,
		Qty:       addQty,
	}
	err := r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"qty":        gorm.Expr("cart_items.qty + EXCLUDED.qty"),
					"updated_at": time.Now(),
				}),
			},
			clause.Returning{},
		).
		Create(&item).Error
	if err != nil {
		return model.CartItem{}, err
	}
	return item, nil
}

func (r *CartItemGormRepository) UpdateQuantity(ctx context.Context, cartItemID string, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ?", cartItemID).
		Update("qty", qty)
	return affectedOne(res)
}

func (r *CartItemGormRepository) DeleteByID(ctx context.Context, cartItemID string) error {
	return affectedOne(r.db.WithContext(ctx).Delete(&model.CartItem{}, "id = ?", cartItemID))
}

func (r *CartItemGormRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.CartItem{}, "user_id = ?", userID)
	return res.RowsAffected, res.Error
}

func (r *CartItemGormRepository) DeleteByUserAndProduct(ctx context.Context, userID, productID string) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.CartItem{}, "user_id = ? AND product_id = ?", userID, productID)
	return res.RowsAffected, res.Error
}

func (r *CartItemGormRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.CartItem{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *CartItemGormRepository) IsOwnedByUser(ctx context.Context, cartItemID, userID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ? AND user_id = ?", cartItemID, userID).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}

// 0件更新は ErrNotFound
func affectedOne(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
