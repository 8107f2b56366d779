package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
	repo "github.com/putrairawan992/tradoora-b2b/internal/repository"

	"github.com/shopspring/decimal"
)

// カートは買い物メモで、在庫の引当はしない。
// 数量は追加・変更のたびに MOQ と現在庫で検査する。
type CartUsecase struct {
	items    repo.CartItemRepository
	products repo.ProductRepository
}

func NewCartUsecase(items repo.CartItemRepository, products repo.ProductRepository) *CartUsecase {
	return &CartUsecase{items: items, products: products}
}

// 金額は小数2桁の文字列
type CartItemResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url"`
	Price     string `json:"price"`
	Qty       int64  `json:"qty"`
	Subtotal  string `json:"subtotal"`
}

type CartSummary struct {
	TotalItems int64  `json:"total_items"`
	TotalPrice string `json:"total_price"`
	ItemCount  int    `json:"item_count"`
}

type CartResponse struct {
	Items   []CartItemResponse `json:"items"`
	Summary CartSummary        `json:"summary"`
}

type AddCartInput struct {
	ProductID string
	Qty       int64
}

type UpdateCartItemInput struct {
	Qty int64
}

func requireUser(userID string) error {
	if userID == "" {
		return authenticationError("unauthorized")
	}
	return nil
}

func (u *CartUsecase) GetCart(ctx context.Context, userID string) (CartResponse, error) {
	if err := requireUser(userID); err != nil {
		return CartResponse{}, err
	}
	return u.snapshot(ctx, userID)
}

// 同じ商品なら数量を足す
func (u *CartUsecase) AddToCart(ctx context.Context, userID string, in AddCartInput) (CartResponse, error) {
	if err := requireUser(userID); err != nil {
		return CartResponse{}, err
	}
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return CartResponse{}, validationError("invalid product_id")
	}
	if in.Qty < 1 {
		return CartResponse{}, validationError("invalid quantity")
	}

	p, err := u.product(ctx, productID)
	if err != nil {
		return CartResponse{}, err
	}
	if err := checkCartQty(p, in.Qty); err != nil {
		return CartResponse{}, err
	}

	current, found, err := u.items.FindByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return CartResponse{}, dependencyError("failed to load cart", err)
	}
	if found {
		if err := checkCartQty(p, current.Qty+in.Qty); err != nil {
			return CartResponse{}, err
		}
	}

	if _, err := u.items.UpsertByUserAndProduct(ctx, userID, productID, in.Qty); err != nil {
		return CartResponse{}, dependencyError("failed to save cart item", err)
	}
	return u.snapshot(ctx, userID)
}

func (u *CartUsecase) UpdateCartItem(ctx context.Context, userID, cartItemID string, in UpdateCartItemInput) (CartResponse, error) {
	if err := requireUser(userID); err != nil {
		return CartResponse{}, err
	}
	if in.Qty < 1 {
		return CartResponse{}, validationError("invalid quantity")
	}

	item, err := u.ownedItem(ctx, userID, cartItemID)
	if err != nil {
		return CartResponse{}, err
	}
	p, err := u.product(ctx, item.ProductID)
	if err != nil {
		return CartResponse{}, err
	}
	if err := checkCartQty(p, in.Qty); err != nil {
		return CartResponse{}, err
	}

	if err := u.items.UpdateQuantity(ctx, item.ID, in.Qty); err != nil {
		return CartResponse{}, cartWriteError(err)
	}
	return u.snapshot(ctx, userID)
}

func (u *CartUsecase) DeleteCartItem(ctx context.Context, userID, cartItemID string) (CartResponse, error) {
	if err := requireUser(userID); err != nil {
		return CartResponse{}, err
	}
	item, err := u.ownedItem(ctx, userID, cartItemID)
	if err != nil {
		return CartResponse{}, err
	}
	if err := u.items.DeleteByID(ctx, item.ID); err != nil {
		return CartResponse{}, cartWriteError(err)
	}
	return u.snapshot(ctx, userID)
}

// 削除件数を返す
func (u *CartUsecase) ClearCart(ctx context.Context, userID string) (int64, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	n, err := u.items.DeleteByUserID(ctx, userID)
	if err != nil {
		return 0, dependencyError("failed to clear cart", err)
	}
	return n, nil
}

// 明細行数（数量の合計ではない）
func (u *CartUsecase) CountItems(ctx context.Context, userID string) (int64, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	n, err := u.items.CountByUserID(ctx, userID)
	if err != nil {
		return 0, dependencyError("failed to count cart items", err)
	}
	return n, nil
}

func (u *CartUsecase) Exists(ctx context.Context, userID, productID string) (bool, error) {
	if err := requireUser(userID); err != nil {
		return false, err
	}
	_, found, err := u.items.FindByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return false, dependencyError("failed to load cart", err)
	}
	return found, nil
}

// 他人の明細は存在しないものとして404
func (u *CartUsecase) ownedItem(ctx context.Context, userID, cartItemID string) (model.CartItem, error) {
	if strings.TrimSpace(cartItemID) == "" {
		return model.CartItem{}, validationError("invalid id")
	}
	owned, err := u.items.IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return model.CartItem{}, dependencyError("failed to load cart item", err)
	}
	if !owned {
		return model.CartItem{}, notFoundError("not found")
	}
	item, err := u.items.FindByID(ctx, cartItemID)
	if err != nil {
		return model.CartItem{}, cartWriteError(err)
	}
	return item, nil
}

func (u *CartUsecase) product(ctx context.Context, id string) (model.Product, error) {
	p, err := u.products.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, notFoundError("product not found")
	}
	if err != nil {
		return model.Product{}, dependencyError("failed to load product", err)
	}
	return p, nil
}

func checkCartQty(p model.Product, qty int64) error {
	if qty < p.MinimumOrderQuantity {
		return validationError(fmt.Sprintf("minimum order quantity is %d", p.MinimumOrderQuantity))
	}
	if qty > p.StockQuantity {
		return validationError(fmt.Sprintf("insufficient stock, available: %d", p.StockQuantity))
	}
	return nil
}

// 所有確認の後に消えた行は404
func cartWriteError(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return notFoundError("not found")
	}
	return dependencyError("failed to update cart", err)
}

// 削除済み商品の行は表示しない
func (u *CartUsecase) snapshot(ctx context.Context, userID string) (CartResponse, error) {
	items, err := u.items.ListByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, dependencyError("failed to load cart", err)
	}

	out := CartResponse{Items: make([]CartItemResponse, 0, len(items))}
	total := decimal.Zero
	for _, it := range items {
		if it.Product == nil {
			continue
		}
		sub := it.Product.Price.Mul(decimal.NewFromInt(it.Qty))
		out.Items = append(out.Items, CartItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      it.Product.Name,
			ImageURL:  it.Product.ImageURL,
			Price:     it.Product.Price.StringFixed(2),
			Qty:       it.Qty,
			Subtotal:  sub.StringFixed(2),
		})
		total = total.Add(sub)
		out.Summary.TotalItems += it.Qty
	}
	out.Summary.TotalPrice = total.StringFixed(2)
	out.Summary.ItemCount = len(out.Items)
	return out, nil
}
