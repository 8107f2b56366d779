package repository

import (
	"context"
	"time"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
	repo "github.com/putrairawan992/tradoora-b2b/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

var _ repo.OrderRepository = (*OrderGormRepository)(nil)

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (model.Order, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		if isUniqueViolation(err) {
			return model.Order{}, repo.ErrDuplicate
		}
		return model.Order{}, err
	}
	return order, nil
}

func (r *OrderGormRepository) FindByOrderRef(ctx context.Context, orderRef string) (model.Order, error) {
	return takeOrder(r.db.WithContext(ctx).Preload("User").Preload("Product"), orderRef)
}

// 同じ注文への通知が並行しても、Tx終了までここで待たせる
func (r *OrderGormRepository) FindByOrderRefForUpdate(ctx context.Context, orderRef string) (model.Order, error) {
	return takeOrder(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), orderRef)
}

func takeOrder(q *gorm.DB, orderRef string) (model.Order, error) {
	var o model.Order
	switch err := q.Where("order_ref = ?", orderRef).Take(&o).Error; {
	case isNotFound(err):
		return model.Order{}, repo.ErrNotFound
	case err != nil:
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) UpdateStatusByOrderRef(ctx context.Context, orderRef string, from []model.OrderStatus, to model.OrderStatus) (int64, error) {
	if len(from) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_ref = ? AND status IN ?", orderRef, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID string) ([]model.Order, error) {
	var items []model.Order
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	page, limit := f.Page, f.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Order{}).Scopes(adminOrderWhere(f))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	items := []model.Order{}
	err := q.Preload("User").Preload("Product").
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&items).Error
	if err != nil {
		return []model.Order{}, 0, err
	}
	return items, total, nil
}

func adminOrderWhere(f repo.AdminOrderListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.UserID != nil {
			db = db.Where("user_id = ?", *f.UserID)
		}
		return db
	}
}
