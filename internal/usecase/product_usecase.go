package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
	repo "github.com/putrairawan992/tradoora-b2b/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// カタログの公開参照と、ADMINによる商品・在庫の管理。
// 在庫を動かす操作は「在庫更新 + 調整履歴 + 監査ログ」を1Txで書く。
type ProductUsecase struct {
	tx         repo.TransactionManager
	products   repo.ProductRepository
	categories repo.CategoryRepository
	now        func() time.Time
}

func NewProductUsecase(tx repo.TransactionManager, products repo.ProductRepository, categories repo.CategoryRepository) *ProductUsecase {
	return &ProductUsecase{tx: tx, products: products, categories: categories, now: time.Now}
}

type ListProductsInput struct {
	Page       int
	Limit      int
	Q          string
	CategoryID string
	Sort       string // "" | new | price_asc | price_desc
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (in ListProductsInput) query() (repo.ProductListQuery, error) {
	q := repo.ProductListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		Q:          strings.TrimSpace(in.Q),
		CategoryID: strings.TrimSpace(in.CategoryID),
		Sort:       in.Sort,
	}
	switch {
	case q.Page < 1:
		return q, validationError("invalid page")
	case q.Limit < 1 || q.Limit > 100:
		return q, validationError("invalid limit")
	case len(q.Q) > 100:
		return q, validationError("q too long")
	}
	switch q.Sort {
	case "", "new":
		q.Sort = ""
	case "price_asc", "price_desc":
	default:
		return q, validationError("invalid sort")
	}
	return q, nil
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	q, err := in.query()
	if err != nil {
		return ProductListOutput{}, err
	}
	items, total, err := u.products.ListPublic(ctx, q)
	if err != nil {
		return ProductListOutput{}, dependencyError("failed to list products", err)
	}
	return ProductListOutput{Items: items, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID string) (model.Product, error) {
	return u.loadProduct(ctx, u.products, productID)
}

func (u *ProductUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	list, err := u.categories.List(ctx)
	if err != nil {
		return []model.Category{}, dependencyError("failed to list categories", err)
	}
	return list, nil
}

func (u *ProductUsecase) loadProduct(ctx context.Context, products repo.ProductRepository, id string) (model.Product, error) {
	if strings.TrimSpace(id) == "" {
		return model.Product{}, validationError("invalid product id")
	}
	p, err := products.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, notFoundError("product not found")
	}
	if err != nil {
		return model.Product{}, dependencyError("failed to load product", err)
	}
	return p, nil
}

type AdminProductInput struct {
	Name                 string
	Slug                 string
	SKU                  string
	Description          string
	ImageURL             string
	CategoryID           *string
	Price                decimal.Decimal
	StockQuantity        int64
	MinimumOrderQuantity int64
}

// 正規化（trim, slug補完, MOQ既定1）してから検査する
func (u *ProductUsecase) prepare(ctx context.Context, in AdminProductInput) (AdminProductInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Slug == "" {
		in.Slug = slugify(in.Name)
	}
	if in.MinimumOrderQuantity == 0 {
		in.MinimumOrderQuantity = 1
	}
	if in.CategoryID != nil && strings.TrimSpace(*in.CategoryID) == "" {
		in.CategoryID = nil
	}

	switch {
	case in.Name == "":
		return in, validationError("name required")
	case !in.Price.IsPositive():
		return in, validationError("price must be > 0")
	case !in.Price.Equal(in.Price.Round(2)):
		return in, validationError("price must have at most 2 decimal places")
	case in.StockQuantity < 0:
		return in, validationError("stock must be >= 0")
	case in.MinimumOrderQuantity < 1:
		return in, validationError("minimum_order_quantity must be >= 1")
	}

	if in.CategoryID != nil {
		_, err := u.categories.FindByID(ctx, *in.CategoryID)
		if errors.Is(err, repo.ErrNotFound) {
			return in, validationError("category not found")
		}
		if err != nil {
			return in, dependencyError("failed to load category", err)
		}
	}
	return in, nil
}

func (in AdminProductInput) product(id string) model.Product {
	return model.Product{
		ID:                   id,
		Name:                 in.Name,
		Slug:                 in.Slug,
		SKU:                  in.SKU,
		Description:          in.Description,
		ImageURL:             in.ImageURL,
		CategoryID:           in.CategoryID,
		Price:                in.Price,
		StockQuantity:        in.StockQuantity,
		MinimumOrderQuantity: in.MinimumOrderQuantity,
	}
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminID string, raw AdminProductInput) (model.Product, error) {
	if adminID == "" {
		return model.Product{}, authenticationError("unauthorized")
	}
	in, err := u.prepare(ctx, raw)
	if err != nil {
		return model.Product{}, err
	}

	p, err := u.products.Create(ctx, in.product(uuid.NewString()))
	if errors.Is(err, repo.ErrDuplicate) {
		return model.Product{}, conflictError("slug already exists")
	}
	if err != nil {
		return model.Product{}, dependencyError("failed to create product", err)
	}
	return p, nil
}

// 全項目を上書き。在庫が変わったら履歴と監査ログも同じTxで残す
func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminID, productID string, raw AdminProductInput) (model.Product, error) {
	if adminID == "" {
		return model.Product{}, authenticationError("unauthorized")
	}
	in, err := u.prepare(ctx, raw)
	if err != nil {
		return model.Product{}, err
	}

	var saved model.Product
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := u.loadProduct(ctx, r.Products(), productID)
		if err != nil {
			return err
		}

		saved = in.product(productID)
		saved.CreatedAt = before.CreatedAt
		switch err := r.Products().Update(ctx, saved); {
		case errors.Is(err, repo.ErrNotFound):
			return notFoundError("product not found")
		case errors.Is(err, repo.ErrDuplicate):
			return conflictError("slug already exists")
		case err != nil:
			return dependencyError("failed to update product", err)
		}

		if before.StockQuantity == in.StockQuantity {
			return nil
		}
		return u.recordStockChange(ctx, r, stockChange{
			actorID: adminID, productID: productID,
			before: before.StockQuantity, after: in.StockQuantity,
			reason: "admin product update",
		})
	})
	if err != nil {
		return model.Product{}, err
	}
	return saved, nil
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminID, productID string) error {
	if adminID == "" {
		return authenticationError("unauthorized")
	}
	if strings.TrimSpace(productID) == "" {
		return validationError("invalid product id")
	}

	err := u.products.SoftDelete(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return notFoundError("product not found")
	}
	if err != nil {
		return dependencyError("failed to delete product", err)
	}
	return nil
}

// 在庫を絶対値で設定する（棚卸し）
func (u *ProductUsecase) AdminUpdateInventory(ctx context.Context, adminID, productID string, newStock int64, reason string) error {
	reason = strings.TrimSpace(reason)
	switch {
	case adminID == "":
		return authenticationError("unauthorized")
	case newStock < 0:
		return validationError("stock must be >= 0")
	case reason == "":
		return validationError("reason required")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := u.loadProduct(ctx, r.Products(), productID)
		if err != nil {
			return err
		}
		switch err := r.Inventory().SetStock(ctx, productID, newStock); {
		case errors.Is(err, repo.ErrNotFound):
			return notFoundError("product not found")
		case err != nil:
			return dependencyError("failed to set stock", err)
		}
		return u.recordStockChange(ctx, r, stockChange{
			actorID: adminID, productID: productID,
			before: p.StockQuantity, after: newStock,
			reason: reason,
		})
	})
}

type stockChange struct {
	actorID   string
	productID string
	before    int64
	after     int64
	reason    string
}

func (u *ProductUsecase) recordStockChange(ctx context.Context, r repo.TxRepos, c stockChange) error {
	now := u.now()
	if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
		ProductID: c.productID,
		ActorID:   c.actorID,
		Delta:     c.after - c.before,
		Reason:    c.reason,
		CreatedAt: now,
	}); err != nil {
		return dependencyError("failed to record inventory adjustment", err)
	}

	before, _ := json.Marshal(map[string]int64{"stock_quantity": c.before})
	after, _ := json.Marshal(map[string]any{"stock_quantity": c.after, "reason": c.reason})
	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorID:      c.actorID,
		Action:       model.AuditActionUpdateStock,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   c.productID,
		BeforeJSON:   string(before),
		AfterJSON:    string(after),
		CreatedAt:    now,
	}); err != nil {
		return dependencyError("failed to write audit log", err)
	}
	return nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
}
