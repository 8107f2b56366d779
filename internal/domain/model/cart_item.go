package model

import "time"

// カートの明細。(user_id, product_id) は一意。
type CartItem struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_items_user_product" json:"user_id"`
	ProductID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_items_user_product" json:"product_id"`
	Qty       int64     `gorm:"not null" json:"qty"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
