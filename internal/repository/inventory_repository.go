package repository

import (
	"context"
	"errors"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
)

var ErrInsufficientStock = errors.New("insufficient stock")

type InventoryRepository interface {
	// 在庫の現在値を設定
	SetStock(ctx context.Context, productID string, newStock int64) error

	// 在庫が足りるときだけ減算し、減算後の在庫を返す。
	// 足りなければ ErrInsufficientStock、商品がなければ ErrNotFound。
	DecrementStock(ctx context.Context, productID string, qty int64) (int64, error)

	// 調整履歴作成
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
