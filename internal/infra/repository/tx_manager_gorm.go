package repository

import (
	"context"

	repo "github.com/putrairawan992/tradoora-b2b/internal/repository"

	"gorm.io/gorm"
)

// txScope は同じ *gorm.DB（Tx）を共有するリポジトリを都度作る
type txScope struct {
	tx *gorm.DB
}

func (s txScope) Orders() repo.OrderRepository        { return NewOrderGormRepository(s.tx) }
func (s txScope) Products() repo.ProductRepository    { return NewProductGormRepository(s.tx) }
func (s txScope) Inventory() repo.InventoryRepository { return NewInventoryGormRepository(s.tx) }
func (s txScope) CartItems() repo.CartItemRepository  { return NewCartItemGormRepository(s.tx) }
func (s txScope) AuditLogs() repo.AuditLogRepository  { return NewAuditLogGormRepository(s.tx) }
func (s txScope) Outbox() repo.OutboxRepository       { return NewOutboxGormRepository(s.tx) }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

var _ repo.TransactionManager = (*TxManagerGorm)(nil)

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(txScope{tx: tx})
	})
}
