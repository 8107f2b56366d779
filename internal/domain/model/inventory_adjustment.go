package model

import "time"

//在庫調整の履歴。決済確定による減算は OrderRef が入る。

type InventoryAdjustment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID string    `gorm:"type:varchar(36);not null;index" json:"product_id"`
	OrderRef  *string   `gorm:"type:varchar(64);index" json:"order_ref,omitempty"`
	ActorID   string    `gorm:"type:varchar(64);not null;index" json:"actor_id"`
	Delta     int64     `gorm:"not null" json:"delta"`
	Reason    string    `gorm:"type:varchar(255);not null" json:"reason"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
