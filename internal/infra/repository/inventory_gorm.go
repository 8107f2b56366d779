package repository

import (
	"context"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
	repo "github.com/putrairawan992/tradoora-b2b/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

var _ repo.InventoryRepository = (*InventoryGormRepository)(nil)

var returningStock = clause.Returning{Columns: []clause.Column{{Name: "stock_quantity"}}}

func (r *InventoryGormRepository) SetStock(ctx context.Context, productID string, newStock int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock_quantity", newStock)
	return affectedOne(res)
}

// stock_quantity >= qty の行だけ減らす。減らせなければ現在庫と ErrInsufficientStock
func (r *InventoryGormRepository) DecrementStock(ctx context.Context, productID string, qty int64) (int64, error) {
	var after model.Product
	res := r.db.WithContext(ctx).
		Model(&after).
		Clauses(returningStock).
		Where("id = ? AND stock_quantity >= ?", productID, qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 1 {
		return after.StockQuantity, nil
	}

	// 更新0件: 商品が無いのか在庫不足か
	var cur model.Product
	err := r.db.WithContext(ctx).Select("stock_quantity").Where("id = ?", productID).Take(&cur).Error
	if isNotFound(err) {
		return 0, repo.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return cur.StockQuantity, repo.ErrInsufficientStock
}

func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	return r.db.WithContext(ctx).Create(&adj).Error
}
