package repository

import (
	"context"
	"strings"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
	repo "github.com/putrairawan992/tradoora-b2b/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

var _ repo.ProductRepository = (*ProductGormRepository)(nil)

// 同値のときは id で順序を固定する
var productOrderings = map[string][]clause.OrderByColumn{
	"price_asc":  {{Column: clause.Column{Name: "price"}}, {Column: clause.Column{Name: "id"}}},
	"price_desc": {{Column: clause.Column{Name: "price"}, Desc: true}, {Column: clause.Column{Name: "id"}, Desc: true}},
	"":           {{Column: clause.Column{Name: "created_at"}, Desc: true}, {Column: clause.Column{Name: "id"}, Desc: true}},
}

// 論理削除済みは gorm が自動で除外する
func (r *ProductGormRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.Product{})
	if kw := strings.TrimSpace(q.Q); kw != "" {
		base = base.Where("name ILIKE ?", "%"+kw+"%")
	}
	if q.CategoryID != "" {
		base = base.Where("category_id = ?", q.CategoryID)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	order, ok := productOrderings[q.Sort]
	if !ok {
		order = productOrderings[""]
	}
	products := []model.Product{}
	err := base.Preload("Category").
		Clauses(clause.OrderBy{Columns: order}).
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&products).Error
	if err != nil {
		return []model.Product{}, 0, err
	}
	return products, total, nil
}

func (r *ProductGormRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	switch err := r.db.WithContext(ctx).Preload("Category").Where("id = ?", id).Take(&p).Error; {
	case isNotFound(err):
		return model.Product{}, repo.ErrNotFound
	case err != nil:
		return model.Product{}, err
	}
	return p, nil
}

// slug / sku の重複は ErrDuplicate
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	err := r.db.WithContext(ctx).Create(&p).Error
	if isUniqueViolation(err) {
		return model.Product{}, repo.ErrDuplicate
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

var productWritableColumns = []string{
	"name", "slug", "sku", "description", "image_url", "category_id",
	"price", "stock_quantity", "minimum_order_quantity", "updated_at",
}

// ゼロ値も含めて上書きする
func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{ID: p.ID}).
		Select(productWritableColumns).
		Updates(&p)
	switch {
	case isUniqueViolation(res.Error):
		return repo.ErrDuplicate
	case res.Error != nil:
		return res.Error
	case res.RowsAffected == 0:
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductGormRepository) SoftDelete(ctx context.Context, id string) error {
	return affectedOne(r.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", id))
}
