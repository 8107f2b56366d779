package repository

import (
	"context"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *string
}

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (model.Order, error)

	// User / Product を preload して返す
	FindByOrderRef(ctx context.Context, orderRef string) (model.Order, error)

	// 行ロック(SELECT ... FOR UPDATE)。Tx内でのみ使う
	FindByOrderRefForUpdate(ctx context.Context, orderRef string) (model.Order, error)

	// 現在のステータスが from のいずれかであるものだけ to に更新し、更新件数を返す。
	UpdateStatusByOrderRef(ctx context.Context, orderRef string, from []model.OrderStatus, to model.OrderStatus) (int64, error)

	ListByUserID(ctx context.Context, userID string) ([]model.Order, error)

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
