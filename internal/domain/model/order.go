package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusChallenged OrderStatus = "CHALLENGED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// PAID / CANCELLED からは動かない
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusPaid || s == OrderStatusCancelled
}

// AllowedFrom は s へ遷移してよい元ステータスを返す。
// PENDING へ戻す遷移は存在しないので空。
func (s OrderStatus) AllowedFrom() []OrderStatus {
	switch s {
	case OrderStatusChallenged:
		return []OrderStatus{OrderStatusPending}
	case OrderStatusPaid, OrderStatusCancelled:
		return []OrderStatus{OrderStatusPending, OrderStatusChallenged}
	default:
		return nil
	}
}

// CanTransitionTo は from -> to が許可されているか
func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	for _, from := range to.AllowedFrom() {
		if from == s {
			return true
		}
	}
	return false
}

// 1注文 = 1商品。OrderRefは決済ゲートウェイに渡す外部参照。
type Order struct {
	ID        string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderRef  string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_ref"`
	UserID    string          `gorm:"type:varchar(36);not null;index" json:"user_id"`
	ProductID string          `gorm:"type:varchar(36);not null;index" json:"product_id"`
	Qty       int64           `gorm:"not null" json:"qty"`
	Price     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	Status    OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`

	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// 単価 x 数量
func (o Order) GrossAmount() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(o.Qty))
}
