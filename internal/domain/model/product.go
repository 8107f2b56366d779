package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID                   string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name                 string          `gorm:"type:varchar(255);not null" json:"name"`
	Slug                 string          `gorm:"type:varchar(255);not null;uniqueIndex" json:"slug"`
	SKU                  string          `gorm:"column:sku;type:varchar(100)" json:"sku"`
	Description          string          `gorm:"type:text" json:"description"`
	ImageURL             string          `gorm:"type:varchar(500)" json:"image_url"`
	CategoryID           *string         `gorm:"type:varchar(36);index" json:"category_id"`
	Price                decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	StockQuantity        int64           `gorm:"not null;default:0" json:"stock_quantity"`
	MinimumOrderQuantity int64           `gorm:"not null;default:1" json:"minimum_order_quantity"`
	CreatedAt            time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt            gorm.DeletedAt  `gorm:"index" json:"-"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
