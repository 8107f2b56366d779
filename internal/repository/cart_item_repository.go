package repository

import (
	"context"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
)

type CartItemRepository interface {
	// 新しい順。Productをpreloadする
	ListByUserID(ctx context.Context, userID string) ([]model.CartItem, error)
	FindByUserAndProduct(ctx context.Context, userID, productID string) (model.CartItem, bool, error)
	// 同一商品はプラス
	UpsertByUserAndProduct(ctx context.Context, userID, productID string, addQty int64) (model.CartItem, error)
	UpdateQuantity(ctx context.Context, cartItemID string, qty int64) error
	FindByID(ctx context.Context, cartItemID string) (model.CartItem, error)
	DeleteByID(ctx context.Context, cartItemID string) error
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
	// 決済確定時に該当商品をカートから消す
	DeleteByUserAndProduct(ctx context.Context, userID, productID string) (int64, error)
	CountByUserID(ctx context.Context, userID string) (int64, error)
	IsOwnedByUser(ctx context.Context, cartItemID, userID string) (bool, error)
}
