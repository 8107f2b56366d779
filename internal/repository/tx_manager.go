package repository

import "context"

// TxRepos は同じDBトランザクションに束ねたリポジトリ群。
// fn の外へ持ち出してはいけない。
type TxRepos interface {
	Orders() OrderRepository
	Products() ProductRepository
	Inventory() InventoryRepository
	CartItems() CartItemRepository
	AuditLogs() AuditLogRepository
	Outbox() OutboxRepository
}

// fn が nil を返せば commit、エラーか panic なら rollback。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
