package repository

import (
	"context"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
)

type ReviewRepository interface {
	Create(ctx context.Context, review model.Review) (model.Review, error)
	// 新しい順。User を preload する
	ListByProductID(ctx context.Context, productID string) ([]model.Review, error)
	ListAll(ctx context.Context) ([]model.Review, error)
}
